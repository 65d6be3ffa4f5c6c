// Package stages builds the derived analysis stages (diagnosis, capacity,
// scenario and risk) from a protected appraisal. Stages read the appraisal
// only through model.AppraisalView.
package stages

import (
	"slices"

	"github.com/sells-group/parcel-cli/internal/model"
)

// LegalLimits is the statutory floor-area and building-coverage ceiling of a
// zone category, both in percent.
type LegalLimits struct {
	FAR float64
	BCR float64
}

var legalLimits = map[model.ZoneCategory]LegalLimits{
	model.ZoneResidential: {FAR: 250, BCR: 60},
	model.ZoneCommercial:  {FAR: 600, BCR: 70},
	model.ZoneIndustrial:  {FAR: 300, BCR: 70},
	model.ZoneGreen:       {FAR: 80, BCR: 20},
	model.ZoneOther:       {FAR: 200, BCR: 60},
}

// LimitsFor returns the legal limits of a zone category.
func LimitsFor(cat model.ZoneCategory) LegalLimits {
	if l, ok := legalLimits[cat]; ok {
		return l
	}
	return legalLimits[model.ZoneOther]
}

// greenZoneRestriction is added to every green or management zone diagnosis.
const greenZoneRestriction = "green/management zone development limits"

// DiagnosisInput carries the collaborator data the diagnosis records.
type DiagnosisInput struct {
	Region               string
	BenchmarkPricePerSqm float64
	Restrictions         []string
}

// Diagnose records the zone, its legal limits and the known restrictions.
func Diagnose(view model.AppraisalView, in DiagnosisInput) *model.Diagnosis {
	zone := view.ZoneType()
	cat := zone.Category()
	limits := LimitsFor(cat)

	region := in.Region
	if region == "" {
		region = view.Subject().Region
	}

	restrictions := slices.Clone(in.Restrictions)
	if cat == model.ZoneGreen && !slices.Contains(restrictions, greenZoneRestriction) {
		restrictions = append(restrictions, greenZoneRestriction)
	}

	return &model.Diagnosis{
		ZoneType:             zone,
		ZoneCategory:         cat,
		OfficialPrice:        view.OfficialPrice(),
		Region:               region,
		LegalFAR:             limits.FAR,
		LegalBCR:             limits.BCR,
		BenchmarkPricePerSqm: in.BenchmarkPricePerSqm,
		Restrictions:         restrictions,
	}
}
