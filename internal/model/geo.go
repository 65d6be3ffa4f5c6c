package model

import "github.com/twpayne/go-geom"

// SRIDWGS84 is the spatial reference of every location point.
const SRIDWGS84 = 4326

// GeoPoint builds a WGS84 point from latitude and longitude. The point uses
// the XY layout, so X is the longitude.
func GeoPoint(lat, lng float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{lng, lat}).SetSRID(SRIDWGS84)
}

// Point returns the subject location, or nil when it has none.
func (s Subject) Point() *geom.Point {
	if !s.HasLocation() {
		return nil
	}
	return GeoPoint(s.Lat, s.Lng)
}

// Point returns the comparable location, or nil when it has none.
func (t ComparableTransaction) Point() *geom.Point {
	if !t.HasLocation() {
		return nil
	}
	return GeoPoint(t.Lat, t.Lng)
}
