package model

import (
	"fmt"
	"math"
	"strings"
)

// ZoneType is the free-form land-use zone name reported by the zoning lookup
// (e.g. "general commercial", "제2종일반주거지역").
type ZoneType string

// ZoneCategory is the coarse zone class that drives appraisal constants.
type ZoneCategory string

const (
	ZoneCommercial  ZoneCategory = "commercial"
	ZoneResidential ZoneCategory = "residential"
	ZoneIndustrial  ZoneCategory = "industrial"
	ZoneGreen       ZoneCategory = "green"
	ZoneOther       ZoneCategory = "other"
)

// zoneKeywords is checked in order; the first category with a matching
// keyword wins.
var zoneKeywords = []struct {
	category ZoneCategory
	keywords []string
}{
	{ZoneCommercial, []string{"commercial", "상업"}},
	{ZoneResidential, []string{"residential", "주거"}},
	{ZoneIndustrial, []string{"industrial", "공업"}},
	{ZoneGreen, []string{"green", "management", "conservation", "녹지", "관리", "보전", "농림"}},
}

// Category classifies the zone name.
func (z ZoneType) Category() ZoneCategory {
	name := strings.ToLower(strings.TrimSpace(string(z)))
	if name == "" {
		return ZoneOther
	}
	for _, zk := range zoneKeywords {
		for _, kw := range zk.keywords {
			if strings.Contains(name, kw) {
				return zk.category
			}
		}
	}
	return ZoneOther
}

// Subject describes the parcel being appraised, as delivered by the
// geocoding, zoning and land-price collaborators.
type Subject struct {
	ParcelID      string   `json:"parcel_id,omitempty" yaml:"parcel_id"`
	Address       string   `json:"address,omitempty" yaml:"address"`
	Region        string   `json:"region,omitempty" yaml:"region"`
	Area          float64  `json:"area" yaml:"area"`                     // m²
	OfficialPrice float64  `json:"official_price" yaml:"official_price"` // assessed price per m²
	PriceYear     int      `json:"price_year,omitempty" yaml:"price_year"`
	ZoneType      ZoneType `json:"zone_type" yaml:"zone_type"`
	Lat           float64  `json:"lat,omitempty" yaml:"lat"`
	Lng           float64  `json:"lng,omitempty" yaml:"lng"`
}

// HasLocation reports whether the subject carries usable coordinates.
func (s Subject) HasLocation() bool {
	return s.Lat != 0 || s.Lng != 0
}

// Validate rejects descriptors the reconciler cannot value.
func (s Subject) Validate() error {
	if math.IsNaN(s.Area) || s.Area <= 0 {
		return &InvalidInputError{Field: "area", Reason: "must be > 0"}
	}
	if math.IsNaN(s.OfficialPrice) || math.IsInf(s.OfficialPrice, 0) || s.OfficialPrice < 0 {
		return &InvalidInputError{Field: "official_price", Reason: "must be a finite value >= 0"}
	}
	return nil
}

// Premium is the location premium computed by the premium collaborator.
type Premium struct {
	Percentage float64  `json:"percentage" yaml:"percentage"`
	Factors    []string `json:"factors,omitempty" yaml:"factors"`
}

// Clone returns a copy that shares no memory with p.
func (p Premium) Clone() Premium {
	out := Premium{Percentage: p.Percentage}
	if p.Factors != nil {
		out.Factors = append([]string(nil), p.Factors...)
	}
	return out
}

// HousingType is the public-housing program category a parcel is scored for.
type HousingType string

const (
	HousingYouth    HousingType = "youth"
	HousingNewlywed HousingType = "newlywed"
	HousingElderly  HousingType = "elderly"
	HousingGeneral  HousingType = "general"
)

var housingAliases = map[string]HousingType{
	"youth":    HousingYouth,
	"청년":       HousingYouth,
	"newlywed": HousingNewlywed,
	"신혼":       HousingNewlywed,
	"신혼부부":     HousingNewlywed,
	"elderly":  HousingElderly,
	"고령자":      HousingElderly,
	"general":  HousingGeneral,
	"일반":       HousingGeneral,
}

// ParseHousingType accepts English names and their Korean program aliases.
func ParseHousingType(s string) (HousingType, error) {
	if ht, ok := housingAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return ht, nil
	}
	return "", &InvalidInputError{Field: "housing_type", Reason: fmt.Sprintf("unknown housing type %q", s)}
}
