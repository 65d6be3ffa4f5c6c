package stages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/parcel-cli/internal/model"
)

func viewFor(zone model.ZoneType, area float64, nTx int, conf model.ConfidenceLevel) model.AppraisalView {
	return model.NewAppraisalView(&model.AppraisalEntry{
		Protected: true,
		Result: model.AppraisalResult{
			Subject:      model.Subject{Area: area, OfficialPrice: 5_000_000, ZoneType: zone, Region: "Mapo-gu"},
			FinalValue:   area * 9_000_000,
			ValuePerSqm:  9_000_000,
			Confidence:   conf,
			Transactions: make([]model.ComparableTransaction, nTx),
		},
	})
}

func TestLimitsFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cat  model.ZoneCategory
		want LegalLimits
	}{
		{model.ZoneResidential, LegalLimits{250, 60}},
		{model.ZoneCommercial, LegalLimits{600, 70}},
		{model.ZoneIndustrial, LegalLimits{300, 70}},
		{model.ZoneGreen, LegalLimits{80, 20}},
		{model.ZoneOther, LegalLimits{200, 60}},
		{"bogus", LegalLimits{200, 60}},
	}

	for _, tt := range tests {
		t.Run(string(tt.cat), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, LimitsFor(tt.cat))
		})
	}
}

func TestDiagnose(t *testing.T) {
	t.Parallel()

	view := viewFor("제2종일반주거지역", 500, 8, model.ConfidenceMedium)
	in := DiagnosisInput{BenchmarkPricePerSqm: 8_000_000, Restrictions: []string{"height limit"}}
	d := Diagnose(view, in)

	assert.Equal(t, model.ZoneType("제2종일반주거지역"), d.ZoneType)
	assert.Equal(t, model.ZoneResidential, d.ZoneCategory)
	assert.Equal(t, 5_000_000.0, d.OfficialPrice)
	assert.Equal(t, "Mapo-gu", d.Region, "falls back to subject region")
	assert.Equal(t, 250.0, d.LegalFAR)
	assert.Equal(t, 60.0, d.LegalBCR)
	assert.Equal(t, 8_000_000.0, d.BenchmarkPricePerSqm)
	assert.Equal(t, []string{"height limit"}, d.Restrictions)

	d.Restrictions[0] = "changed"
	assert.Equal(t, "height limit", in.Restrictions[0])
}

func TestDiagnoseGreenZoneAddsRestriction(t *testing.T) {
	t.Parallel()

	d := Diagnose(viewFor("자연녹지지역", 500, 8, model.ConfidenceMedium), DiagnosisInput{Region: "Seocho-gu"})
	assert.Equal(t, "Seocho-gu", d.Region)
	assert.Equal(t, []string{greenZoneRestriction}, d.Restrictions)

	again := Diagnose(viewFor("green", 500, 8, model.ConfidenceMedium), DiagnosisInput{Restrictions: d.Restrictions})
	assert.Len(t, again.Restrictions, 1)
}

func TestEstimateCapacity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		zone      model.ZoneType
		ht        model.HousingType
		wantGFA   float64
		wantUnits int
	}{
		// 400 m² × 600% = 2400; 2400 × 0.75 / 36 = 50.
		{"commercial youth", "commercial", model.HousingYouth, 2400, 50},
		// 400 × 250% = 1000; 750 / 59 = 12.7.
		{"residential newlywed", "residential", model.HousingNewlywed, 1000, 12},
		// 400 × 80% = 320; 240 / 45 = 5.3.
		{"green elderly", "green", model.HousingElderly, 320, 5},
		// 400 × 200% = 800; 600 / 74 = 8.1.
		{"other general", "", model.HousingGeneral, 800, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := EstimateCapacity(viewFor(tt.zone, 400, 10, model.ConfidenceHigh), tt.ht)
			assert.InDelta(t, tt.wantGFA, c.GrossFloorArea, 1e-9)
			assert.Equal(t, tt.wantUnits, c.EstimatedUnits)
			assert.Equal(t, tt.ht, c.HousingType)
			assert.Equal(t, 5_000_000.0, c.OfficialPrice)
		})
	}
}

func TestUnitSizeUnknownFallsBackToGeneral(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 74.0, UnitSize("student"))
}

func TestBuildScenarios(t *testing.T) {
	t.Parallel()

	view := viewFor("commercial", 400, 12, model.ConfidenceHigh)
	diag := Diagnose(view, DiagnosisInput{})
	capacity := EstimateCapacity(view, model.HousingYouth)
	cfg := DefaultScenarioConfig()

	set, err := BuildScenarios(view, diag, capacity, cfg)
	require.NoError(t, err)
	require.Len(t, set.Variants, 3)
	assert.Equal(t, model.ZoneType("commercial"), set.ZoneType)

	base, dense, mixed := set.Variants[0], set.Variants[1], set.Variants[2]
	assert.Equal(t, ScenarioBase, base.Name)
	assert.Equal(t, 0, base.Ordinal)
	assert.Equal(t, 600.0, base.FAR)
	assert.Equal(t, capacity.EstimatedUnits, base.Units)
	assert.InDelta(t, 15.0, base.ExpectedReturnPct, 0.01)

	assert.Equal(t, ScenarioDensityUp, dense.Name)
	assert.InDelta(t, 720.0, dense.FAR, 1e-9)
	assert.Greater(t, dense.Units, base.Units)
	assert.Greater(t, dense.ExpectedReturnPct, base.ExpectedReturnPct)
	assert.Greater(t, dense.TotalCost, base.TotalCost)

	assert.Equal(t, ScenarioMixedUse, mixed.Name)
	assert.Equal(t, 600.0, mixed.FAR)
	assert.Less(t, mixed.Units, base.Units)
	assert.Greater(t, mixed.ExpectedReturnPct, base.ExpectedReturnPct)
}

func TestBuildScenariosPrerequisites(t *testing.T) {
	t.Parallel()

	view := viewFor("commercial", 400, 12, model.ConfidenceHigh)
	diag := Diagnose(view, DiagnosisInput{})

	_, err := BuildScenarios(view, nil, EstimateCapacity(view, model.HousingYouth), DefaultScenarioConfig())
	var pre *model.MissingPrerequisiteError
	require.True(t, errors.As(err, &pre))
	assert.Equal(t, model.StageDiagnosis, pre.Prerequisite)

	_, err = BuildScenarios(view, diag, &model.Capacity{}, DefaultScenarioConfig())
	require.True(t, errors.As(err, &pre))
	assert.Equal(t, model.StageCapacity, pre.Prerequisite)
}

func TestRiskScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		restrictions int
		comps        int
		conf         model.ConfidenceLevel
		want         float64
	}{
		{"clean", 0, 12, model.ConfidenceHigh, 100},
		{"one restriction", 1, 12, model.ConfidenceHigh, 85},
		{"some comps medium", 0, 7, model.ConfidenceMedium, 90},
		{"few comps low", 0, 3, model.ConfidenceLow, 70},
		{"floor at zero", 8, 0, model.ConfidenceLow, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, RiskScore(tt.restrictions, tt.comps, tt.conf))
		})
	}
}

func TestRiskLevelFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.RiskLow, RiskLevelFor(75))
	assert.Equal(t, model.RiskMedium, RiskLevelFor(74.9))
	assert.Equal(t, model.RiskMedium, RiskLevelFor(55))
	assert.Equal(t, model.RiskHigh, RiskLevelFor(54.9))
}

func TestAssessRisk(t *testing.T) {
	t.Parallel()

	view := viewFor("residential", 400, 3, model.ConfidenceLow)
	diag := &model.Diagnosis{ZoneType: "residential", LegalFAR: 250, Restrictions: []string{"school zone", "height limit"}}

	r, err := AssessRisk(view, diag)
	require.NoError(t, err)
	// 100 - 30 - 15 - 15.
	assert.Equal(t, model.RiskHigh, r.Level)
	assert.Equal(t, []string{"school zone", "height limit"}, r.Restrictions)
	assert.Equal(t, []string{FlagFewComparables, FlagLowConfidence}, r.Flags)

	_, err = AssessRisk(view, nil)
	assert.Equal(t, model.KindMissingPrerequisite, model.KindOf(err))
}
