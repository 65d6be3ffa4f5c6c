package model

import "time"

// ConfidenceLevel grades an appraisal by how much market evidence backed it.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// ApproachResult is the common output of one valuation approach.
type ApproachResult struct {
	Value       float64 `json:"value"`
	ValuePerSqm float64 `json:"value_per_sqm"`
	Weight      float64 `json:"weight"`
}

// CostApproach values land from the assessed price.
type CostApproach struct {
	ApproachResult
	OfficialPrice float64 `json:"official_price"`
	MarketMarkup  float64 `json:"market_markup"`
	ZoneFactor    float64 `json:"zone_factor"`
}

// SalesApproach values land from adjusted comparable prices.
type SalesApproach struct {
	ApproachResult
	ComparablesUsed     int     `json:"comparables_used"`
	AvgAdjustedPerSqm   float64 `json:"avg_adjusted_per_sqm"`
	FellBackToCostValue bool    `json:"fell_back_to_cost_value"`
}

// IncomeApproach values land by capitalizing net operating income.
type IncomeApproach struct {
	ApproachResult
	MonthlyRentPerSqm float64 `json:"monthly_rent_per_sqm"`
	AnnualIncome      float64 `json:"annual_income"`
	ExpenseRatio      float64 `json:"expense_ratio"`
	NOI               float64 `json:"noi"`
	CapRate           float64 `json:"cap_rate"`
}

// AppraisalResult is the reconciled land value for one subject.
type AppraisalResult struct {
	Subject           Subject                 `json:"subject"`
	FinalValue        float64                 `json:"final_value"`
	ValuePerSqm       float64                 `json:"value_per_sqm"`
	Cost              CostApproach            `json:"cost_approach"`
	Sales             SalesApproach           `json:"sales_comparison_approach"`
	Income            IncomeApproach          `json:"income_approach"`
	Premium           Premium                 `json:"premium"`
	AppliedPremiumPct float64                 `json:"applied_premium_pct"`
	Confidence        ConfidenceLevel         `json:"confidence_level"`
	Transactions      []ComparableTransaction `json:"transactions"`
}

// Clone returns a deep copy.
func (r AppraisalResult) Clone() AppraisalResult {
	out := r
	out.Premium = r.Premium.Clone()
	out.Transactions = CloneTransactions(r.Transactions)
	return out
}

// AppraisalEntry is the appraisal stage sub-document of an AnalysisContext.
type AppraisalEntry struct {
	Result        AppraisalResult `json:"result"`
	Protected     bool            `json:"protected"`
	LockTimestamp time.Time       `json:"lock_timestamp,omitempty"`
}

// IsEmpty reports whether the entry carries no valuation.
func (e *AppraisalEntry) IsEmpty() bool {
	return e == nil || e.Result.FinalValue == 0
}

// Clone returns a deep copy.
func (e *AppraisalEntry) Clone() *AppraisalEntry {
	if e == nil {
		return nil
	}
	return &AppraisalEntry{
		Result:        e.Result.Clone(),
		Protected:     e.Protected,
		LockTimestamp: e.LockTimestamp,
	}
}

// AppraisalView is a read-only window onto an appraisal. It holds a private
// copy, and every accessor hands out copies, so holders of a view cannot
// change the appraisal it was taken from.
type AppraisalView struct {
	r         AppraisalResult
	protected bool
	lockedAt  time.Time
}

// NewAppraisalView snapshots an entry.
func NewAppraisalView(e *AppraisalEntry) AppraisalView {
	return AppraisalView{r: e.Result.Clone(), protected: e.Protected, lockedAt: e.LockTimestamp}
}

func (v AppraisalView) Subject() Subject            { return v.r.Subject }
func (v AppraisalView) FinalValue() float64         { return v.r.FinalValue }
func (v AppraisalView) ValuePerSqm() float64        { return v.r.ValuePerSqm }
func (v AppraisalView) Cost() CostApproach          { return v.r.Cost }
func (v AppraisalView) Sales() SalesApproach        { return v.r.Sales }
func (v AppraisalView) Income() IncomeApproach      { return v.r.Income }
func (v AppraisalView) Premium() Premium            { return v.r.Premium.Clone() }
func (v AppraisalView) Confidence() ConfidenceLevel { return v.r.Confidence }
func (v AppraisalView) TransactionCount() int       { return len(v.r.Transactions) }
func (v AppraisalView) Protected() bool             { return v.protected }
func (v AppraisalView) LockTimestamp() time.Time    { return v.lockedAt }
func (v AppraisalView) Result() AppraisalResult     { return v.r.Clone() }
func (v AppraisalView) ZoneType() ZoneType          { return v.r.Subject.ZoneType }
func (v AppraisalView) OfficialPrice() float64      { return v.r.Subject.OfficialPrice }
func (v AppraisalView) Transactions() []ComparableTransaction {
	return CloneTransactions(v.r.Transactions)
}
