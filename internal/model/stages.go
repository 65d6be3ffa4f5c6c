package model

// Diagnosis is the land-use diagnosis sub-document.
type Diagnosis struct {
	ZoneType             ZoneType     `json:"zone_type"`
	ZoneCategory         ZoneCategory `json:"zone_category"`
	OfficialPrice        float64      `json:"official_price"`
	Region               string       `json:"region,omitempty"`
	LegalFAR             float64      `json:"legal_far"` // %
	LegalBCR             float64      `json:"legal_bcr"` // %
	BenchmarkPricePerSqm float64      `json:"benchmark_price_per_sqm,omitempty"`
	Restrictions         []string     `json:"restrictions,omitempty"`
}

// IsEmpty reports whether the diagnosis carries nothing.
func (d *Diagnosis) IsEmpty() bool {
	return d == nil || (d.ZoneType == "" && d.LegalFAR == 0)
}

// Clone returns a deep copy.
func (d *Diagnosis) Clone() *Diagnosis {
	if d == nil {
		return nil
	}
	out := *d
	if d.Restrictions != nil {
		out.Restrictions = append([]string(nil), d.Restrictions...)
	}
	return &out
}

// Capacity is the development-capacity sub-document.
type Capacity struct {
	ZoneType       ZoneType    `json:"zone_type"`
	OfficialPrice  float64     `json:"official_price"`
	FAR            float64     `json:"far"` // %
	BCR            float64     `json:"bcr"` // %
	GrossFloorArea float64     `json:"gross_floor_area"`
	HousingType    HousingType `json:"housing_type"`
	UnitSize       float64     `json:"unit_size"`
	EstimatedUnits int         `json:"estimated_units"`
}

// IsEmpty reports whether the capacity carries nothing.
func (c *Capacity) IsEmpty() bool {
	return c == nil || (c.GrossFloorArea == 0 && c.EstimatedUnits == 0)
}

// Clone returns a copy.
func (c *Capacity) Clone() *Capacity {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

// ScenarioVariant is one development alternative.
type ScenarioVariant struct {
	Name              string  `json:"name"`
	Ordinal           int     `json:"ordinal"`
	FAR               float64 `json:"far"`
	Units             int     `json:"units"`
	TotalCost         float64 `json:"total_cost"`
	ExpectedReturnPct float64 `json:"expected_return_pct"`
}

// ScenarioSet is the scenario sub-document.
type ScenarioSet struct {
	ZoneType ZoneType          `json:"zone_type"`
	Variants []ScenarioVariant `json:"variants"`
}

// IsEmpty reports whether there are no variants.
func (s *ScenarioSet) IsEmpty() bool {
	return s == nil || len(s.Variants) == 0
}

// Clone returns a deep copy.
func (s *ScenarioSet) Clone() *ScenarioSet {
	if s == nil {
		return nil
	}
	out := *s
	if s.Variants != nil {
		out.Variants = append([]ScenarioVariant(nil), s.Variants...)
	}
	return &out
}

// RiskAssessment is the risk sub-document.
type RiskAssessment struct {
	Level        RiskLevel `json:"level"`
	Restrictions []string  `json:"restrictions,omitempty"`
	Flags        []string  `json:"flags,omitempty"`
}

// IsEmpty reports whether the assessment was never made.
func (r *RiskAssessment) IsEmpty() bool {
	return r == nil || r.Level == ""
}

// Clone returns a deep copy.
func (r *RiskAssessment) Clone() *RiskAssessment {
	if r == nil {
		return nil
	}
	out := *r
	if r.Restrictions != nil {
		out.Restrictions = append([]string(nil), r.Restrictions...)
	}
	if r.Flags != nil {
		out.Flags = append([]string(nil), r.Flags...)
	}
	return &out
}
