package readiness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/parcel-cli/internal/model"
)

func TestPriceBucketScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ratio float64
		want  float64
	}{
		{0.50, 100},
		{0.75, 100},
		{0.80, 100},
		{0.85, 90},
		{0.95, 80},
		{1.00, 80},
		{1.05, 65},
		{1.20, 50},
		{1.40, 30},
		{1.50, 30},
		{1.60, 10},
		{3.00, 10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PriceBucketScore(tt.ratio), "ratio %.2f", tt.ratio)
	}
}

func TestScorePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value float64
		bench float64
		comps int
		want  float64
	}{
		{"best bucket", 75, 100, 3, 100},
		{"worst bucket", 160, 100, 3, 10},
		{"five comps bonus", 95, 100, 5, 81},
		{"ten comps bonus", 95, 100, 10, 83},
		{"fifteen comps bonus", 95, 100, 15, 85},
		{"bonus capped", 75, 100, 20, 100},
		{"no benchmark", 95, 0, 12, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, why := scorePrice(tt.value, tt.bench, tt.comps)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, why)
		})
	}
}

func TestScoreLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		zone    model.ZoneType
		factors []string
		want    float64
	}{
		{"residential base", "residential", nil, 80},
		{"commercial base", "commercial", nil, 70},
		{"industrial base", "industrial", nil, 45},
		{"other base", "", nil, 60},
		{"transit", "residential", []string{"Subway station 200m"}, 88},
		{"transit counted once", "residential", []string{"subway", "bus terminal"}, 88},
		{"all bonuses", "residential", []string{"지하철역", "학군 우수", "한강 조망"}, 99},
		{"nuisance", "commercial", []string{"incinerator nearby"}, 60},
		{"mixed", "green", []string{"park", "landfill"}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, why := scoreLocation(tt.zone, tt.factors)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, why)
		})
	}
}

func TestScoreScale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ht    model.HousingType
		units int
		want  float64
	}{
		{"youth in range", model.HousingYouth, 80, 100},
		{"youth at min", model.HousingYouth, 30, 100},
		{"youth half of min", model.HousingYouth, 15, 60},
		{"youth double max", model.HousingYouth, 300, 40},
		{"general far above floors", model.HousingGeneral, 5000, 20},
		{"elderly in range", model.HousingElderly, 50, 100},
		{"newlywed below", model.HousingNewlywed, 40, 84},
		{"no units", model.HousingYouth, 0, 20},
		{"unknown type uses general", "student", 200, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, _ := scoreScale(tt.ht, tt.units)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScoreStructural(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		far  float64
		bcr  float64
		want float64
	}{
		{"healthy", 250, 60, 100},
		{"commercial limits", 600, 70, 0.6*50 + 0.4*100},
		{"moderate", 350, 45, 0.6*75 + 0.4*75},
		{"green", 80, 20, 0.6*50 + 0.4*50},
		{"extreme", 1000, 90, 0.6*30 + 0.4*50},
		{"missing", 0, 0, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, _ := scoreStructural(tt.far, tt.bcr)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScorePolicy(t *testing.T) {
	t.Parallel()

	youth, _ := scorePolicy(model.HousingYouth)
	newlywed, _ := scorePolicy(model.HousingNewlywed)
	elderly, _ := scorePolicy(model.HousingElderly)
	general, _ := scorePolicy(model.HousingGeneral)

	assert.Greater(t, youth, general)
	assert.Equal(t, youth, newlywed)
	assert.Greater(t, elderly, general)
	assert.Equal(t, 65.0, general)
}

func TestScoreRisk(t *testing.T) {
	t.Parallel()

	score, why := scoreRisk([]string{"school zone"}, 12, model.ConfidenceHigh)
	assert.Equal(t, 85.0, score)
	assert.Contains(t, why, "school zone")

	score, _ = scoreRisk(nil, 2, model.ConfidenceLow)
	assert.Equal(t, 70.0, score)
}
