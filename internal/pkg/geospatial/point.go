package geospatial

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate is wrapped by every coordinate validation failure.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// CoordinateError describes which value was rejected.
type CoordinateError struct {
	Field string
	Value float64
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("%s: %s=%v", ErrInvalidCoordinate, e.Field, e.Value)
}

func (e *CoordinateError) Unwrap() error { return ErrInvalidCoordinate }

// GeoPoint is a coordinate in decimal degrees.
type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Validate reports whether p can be used in a distance computation.
func (p GeoPoint) Validate() error {
	return validate(p.Lon, p.Lat)
}

// Normalized returns p with its longitude wrapped into [-180, 180).
func (p GeoPoint) Normalized() GeoPoint {
	return GeoPoint{Lon: NormalizeLongitude(p.Lon), Lat: p.Lat}
}

// String formats p as "lat,lon" with 4 decimals.
func (p GeoPoint) String() string {
	return fmt.Sprintf("%.4f,%.4f", p.Lat, p.Lon)
}

// NormalizeLongitude wraps lon into [-180, 180). Non-finite input is
// returned unchanged.
func NormalizeLongitude(lon float64) float64 {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return lon
	}
	if lon >= -180 && lon < 180 {
		return lon
	}
	l := math.Mod(lon+180, 360)
	if l < 0 {
		l += 360
	}
	return l - 180
}

// Antipode returns the point diametrically opposite p.
func Antipode(p GeoPoint) GeoPoint {
	return GeoPoint{Lon: NormalizeLongitude(p.Lon + 180), Lat: -p.Lat}
}

func validate(lon, lat float64) error {
	if !isFinite(lon) {
		return &CoordinateError{Field: "longitude", Value: lon}
	}
	if !isFinite(lat) || lat < -90 || lat > 90 {
		return &CoordinateError{Field: "latitude", Value: lat}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
