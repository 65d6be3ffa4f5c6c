package comparable

import (
	"math"

	"github.com/twpayne/go-geom"

	"github.com/sells-group/parcel-cli/internal/model"
)

const earthRadiusKM = 6371.0

// DistanceKM returns the great-circle distance between two WGS84 points.
func DistanceKM(a, b *geom.Point) float64 {
	lat1 := a.Y() * math.Pi / 180
	lat2 := b.Y() * math.Pi / 180
	dLat := (b.Y() - a.Y()) * math.Pi / 180
	dLng := (b.X() - a.X()) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// FillDistances returns a copy of txs where comparables that carry
// coordinates but no distance get their distance to the subject. Reported
// distances are kept as delivered.
func FillDistances(subject model.Subject, txs []model.ComparableTransaction) []model.ComparableTransaction {
	out := model.CloneTransactions(txs)
	origin := subject.Point()
	if origin == nil {
		return out
	}

	for i := range out {
		if out[i].DistanceKM > 0 {
			continue
		}
		if p := out[i].Point(); p != nil {
			out[i].DistanceKM = DistanceKM(origin, p)
		}
	}
	return out
}
