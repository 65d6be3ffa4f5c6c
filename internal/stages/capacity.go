package stages

import (
	"math"

	"github.com/sells-group/parcel-cli/internal/model"
)

// SaleableRatio is the share of gross floor area that ends up inside units.
const SaleableRatio = 0.75

var unitSizes = map[model.HousingType]float64{
	model.HousingYouth:    36,
	model.HousingNewlywed: 59,
	model.HousingElderly:  45,
	model.HousingGeneral:  74,
}

// UnitSize returns the typical unit size in m² for a housing type.
func UnitSize(ht model.HousingType) float64 {
	if s, ok := unitSizes[ht]; ok {
		return s
	}
	return unitSizes[model.HousingGeneral]
}

// EstimateCapacity builds the parcel out to the legal FAR of its zone and
// counts the units of the given housing type that fit. It needs only the
// appraisal.
func EstimateCapacity(view model.AppraisalView, ht model.HousingType) *model.Capacity {
	limits := LimitsFor(view.ZoneType().Category())
	gfa := view.Subject().Area * limits.FAR / 100
	size := UnitSize(ht)
	return &model.Capacity{
		ZoneType:       view.ZoneType(),
		OfficialPrice:  view.OfficialPrice(),
		FAR:            limits.FAR,
		BCR:            limits.BCR,
		GrossFloorArea: gfa,
		HousingType:    ht,
		UnitSize:       size,
		EstimatedUnits: unitsFor(gfa, size),
	}
}

func unitsFor(gfa, unitSize float64) int {
	if unitSize <= 0 {
		return 0
	}
	return int(math.Floor(gfa * SaleableRatio / unitSize))
}
