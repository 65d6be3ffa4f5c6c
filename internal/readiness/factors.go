package readiness

import (
	"fmt"
	"strings"

	"github.com/sells-group/parcel-cli/internal/model"
	"github.com/sells-group/parcel-cli/internal/stages"
)

// neutralScore is used when a factor's inputs are unavailable.
const neutralScore = 50.0

var zonePreference = map[model.ZoneCategory]float64{
	model.ZoneResidential: 80,
	model.ZoneCommercial:  70,
	model.ZoneGreen:       55,
	model.ZoneIndustrial:  45,
	model.ZoneOther:       60,
}

type keywordBonus struct {
	label    string
	points   float64
	keywords []string
}

// locationBonuses are matched against premium factors; each applies once.
var locationBonuses = []keywordBonus{
	{"transit access", 8, []string{"subway", "station", "transit", "bus", "metro", "역", "지하철", "버스"}},
	{"school district", 6, []string{"school", "학교", "학군"}},
	{"green or river view", 5, []string{"park", "river", "green", "forest", "공원", "한강", "하천", "숲"}},
	{"nuisance facility", -10, []string{"nuisance", "landfill", "incinerator", "sewage", "factory", "혐오", "소각", "매립", "공장"}},
}

func scoreLocation(zone model.ZoneType, factors []string) (float64, string) {
	cat := zone.Category()
	score := zonePreference[cat]
	notes := []string{fmt.Sprintf("%s zone base %.0f", cat, score)}

	lowered := make([]string, len(factors))
	for i, f := range factors {
		lowered[i] = strings.ToLower(f)
	}
	for _, b := range locationBonuses {
		if anyContains(lowered, b.keywords) {
			score += b.points
			notes = append(notes, fmt.Sprintf("%s %+.0f", b.label, b.points))
		}
	}
	return clamp(score, 0, 100), strings.Join(notes, ", ")
}

func anyContains(haystack, needles []string) bool {
	for _, h := range haystack {
		for _, n := range needles {
			if strings.Contains(h, n) {
				return true
			}
		}
	}
	return false
}

var priceBuckets = []struct {
	maxRatio float64
	score    float64
}{
	{0.80, 100},
	{0.90, 90},
	{1.00, 80},
	{1.10, 65},
	{1.25, 50},
	{1.50, 30},
}

// PriceBucketScore maps a value-to-benchmark ratio onto the 7-step scale.
func PriceBucketScore(ratio float64) float64 {
	for _, b := range priceBuckets {
		if ratio <= b.maxRatio {
			return b.score
		}
	}
	return 10
}

// comparableBonus rewards a well-supported appraisal.
func comparableBonus(n int) float64 {
	switch {
	case n >= 15:
		return 5
	case n >= 10:
		return 3
	case n >= 5:
		return 1
	default:
		return 0
	}
}

func scorePrice(valuePerSqm, benchmark float64, comparables int) (float64, string) {
	if benchmark <= 0 || valuePerSqm <= 0 {
		return neutralScore, "no regional benchmark available"
	}
	ratio := valuePerSqm / benchmark
	base := PriceBucketScore(ratio)
	bonus := comparableBonus(comparables)
	score := clamp(base+bonus, 0, 100)
	return score, fmt.Sprintf("value/benchmark ratio %.2f scores %.0f, %d comparables add %.0f", ratio, base, comparables, bonus)
}

type unitRange struct {
	min, max int
}

var idealUnits = map[model.HousingType]unitRange{
	model.HousingYouth:    {30, 150},
	model.HousingNewlywed: {50, 200},
	model.HousingGeneral:  {100, 500},
	model.HousingElderly:  {20, 100},
}

// Scale penalties per unit of relative distance outside the ideal range.
const (
	scaleDeficitPenalty = 80
	scaleExcessPenalty  = 60
	scaleFloor          = 20
)

func scoreScale(ht model.HousingType, units int) (float64, string) {
	r, ok := idealUnits[ht]
	if !ok {
		r = idealUnits[model.HousingGeneral]
	}
	switch {
	case units <= 0:
		return scaleFloor, "no buildable units"
	case units < r.min:
		deficit := float64(r.min-units) / float64(r.min)
		return clamp(100-deficit*scaleDeficitPenalty, scaleFloor, 100),
			fmt.Sprintf("%d units below ideal %d-%d", units, r.min, r.max)
	case units > r.max:
		excess := float64(units-r.max) / float64(r.max)
		return clamp(100-excess*scaleExcessPenalty, scaleFloor, 100),
			fmt.Sprintf("%d units above ideal %d-%d", units, r.min, r.max)
	default:
		return 100, fmt.Sprintf("%d units within ideal %d-%d", units, r.min, r.max)
	}
}

func farScore(far float64) float64 {
	switch {
	case far >= 150 && far <= 300:
		return 100
	case far >= 100 && far <= 400:
		return 75
	case far >= 50 && far <= 600:
		return 50
	default:
		return 30
	}
}

func bcrScore(bcr float64) float64 {
	switch {
	case bcr >= 50 && bcr <= 70:
		return 100
	case bcr >= 40 && bcr <= 80:
		return 75
	default:
		return 50
	}
}

func scoreStructural(far, bcr float64) (float64, string) {
	if far <= 0 || bcr <= 0 {
		return neutralScore, "FAR/BCR unavailable"
	}
	score := 0.6*farScore(far) + 0.4*bcrScore(bcr)
	return score, fmt.Sprintf("FAR %.0f%% scores %.0f, BCR %.0f%% scores %.0f", far, farScore(far), bcr, bcrScore(bcr))
}

var policyPriority = map[model.HousingType]float64{
	model.HousingYouth:    90,
	model.HousingNewlywed: 90,
	model.HousingElderly:  80,
	model.HousingGeneral:  65,
}

func scorePolicy(ht model.HousingType) (float64, string) {
	score, ok := policyPriority[ht]
	if !ok {
		score = policyPriority[model.HousingGeneral]
	}
	return score, fmt.Sprintf("%s housing program priority", ht)
}

func scoreRisk(restrictions []string, comparables int, conf model.ConfidenceLevel) (float64, string) {
	score := stages.RiskScore(len(restrictions), comparables, conf)
	note := fmt.Sprintf("%d restrictions, %d comparables, %s confidence", len(restrictions), comparables, conf)
	if len(restrictions) > 0 {
		note += ": " + strings.Join(restrictions, ", ")
	}
	return score, note
}
