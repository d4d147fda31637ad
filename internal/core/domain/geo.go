package domain

import "github.com/samirrijal/airportdist/internal/pkg/geospatial"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Point converts to the geospatial value type.
func (p GeoPoint) Point() geospatial.GeoPoint {
	return geospatial.GeoPoint{Lon: p.Lon, Lat: p.Lat}
}

// DistanceKm returns the great-circle distance to other.
func (p GeoPoint) DistanceKm(other GeoPoint) (float64, error) {
	return geospatial.Distance(p.Point(), other.Point())
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// BoundsAround returns the box enclosing radiusKm around center.
func BoundsAround(center GeoPoint, radiusKm float64) Bounds {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(center.Lat, center.Lon, radiusKm)
	return Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}
