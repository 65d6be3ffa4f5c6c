package model

// ComparableTransaction is a historical sale used as market evidence.
// RelevanceScore is derived by the ranker and ignored on input.
type ComparableTransaction struct {
	Address        string  `json:"address" yaml:"address" csv:"address"`
	Area           float64 `json:"area" yaml:"area" csv:"area,omitempty"`
	PricePerArea   float64 `json:"price_per_area" yaml:"price_per_area" csv:"price_per_area,omitempty"`
	TotalPrice     float64 `json:"total_price" yaml:"total_price" csv:"total_price,omitempty"`
	DistanceKM     float64 `json:"distance_km" yaml:"distance_km" csv:"distance_km,omitempty"`
	AgeDays        int     `json:"age_days" yaml:"age_days" csv:"age_days,omitempty"`
	Lat            float64 `json:"lat,omitempty" yaml:"lat" csv:"lat,omitempty"`
	Lng            float64 `json:"lng,omitempty" yaml:"lng" csv:"lng,omitempty"`
	RelevanceScore float64 `json:"relevance_score" yaml:"-" csv:"-"`
}

// HasLocation reports whether the comparable carries usable coordinates.
func (t ComparableTransaction) HasLocation() bool {
	return t.Lat != 0 || t.Lng != 0
}

// UnitPrice returns the per-area price, deriving it from the total when the
// per-area figure is missing. Zero means the comparable carries no usable price.
func (t ComparableTransaction) UnitPrice() float64 {
	if t.PricePerArea > 0 {
		return t.PricePerArea
	}
	if t.TotalPrice > 0 && t.Area > 0 {
		return t.TotalPrice / t.Area
	}
	return 0
}

// CloneTransactions copies a transaction slice.
func CloneTransactions(txs []ComparableTransaction) []ComparableTransaction {
	if txs == nil {
		return nil
	}
	return append([]ComparableTransaction(nil), txs...)
}
