package geospatial

import "math"

const (
	// EarthRadiusKm is the mean Earth radius used for the spherical model.
	EarthRadiusKm = 6371.0

	// MaxDistanceKm is half the circumference of the sphere, the largest
	// great-circle distance DistanceKm can return.
	MaxDistanceKm = math.Pi * EarthRadiusKm
)

// DistanceKm returns the great-circle distance in kilometers between
// (lon1, lat1) and (lon2, lat2), all in decimal degrees, using the haversine
// formula on a sphere of radius EarthRadiusKm.
//
// Non-finite values and latitudes outside [-90, 90] fail with an error
// wrapping ErrInvalidCoordinate. Longitudes may be any finite value.
func DistanceKm(lon1, lat1, lon2, lat2 float64) (float64, error) {
	if err := validate(lon1, lat1); err != nil {
		return 0, err
	}
	if err := validate(lon2, lat2); err != nil {
		return 0, err
	}
	return haversine(lon1, lat1, lon2, lat2), nil
}

// Distance is the point form of DistanceKm.
func Distance(a, b GeoPoint) (float64, error) {
	return DistanceKm(a.Lon, a.Lat, b.Lon, b.Lat)
}

// haversine assumes validated input.
func haversine(lon1, lat1, lon2, lat2 float64) float64 {
	phi1 := toRad(lat1)
	phi2 := toRad(lat2)
	dLat := phi2 - phi1
	dLon := toRad(lon2) - toRad(lon1)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat + math.Cos(phi1)*math.Cos(phi2)*sinLon*sinLon

	// Rounding can push a just past 1 near antipodes.
	a = math.Max(0, math.Min(1, a))

	c := 2 * math.Asin(math.Sqrt(a))
	return EarthRadiusKm * c
}

// BoundingBox returns a box that contains every point within radiusKm of
// (lat, lon). Near the poles or the ±180° seam the box widens to the full
// longitude range rather than wrapping.
func BoundingBox(lat, lon, radiusKm float64) (minLat, minLon, maxLat, maxLon float64) {
	angular := radiusKm / EarthRadiusKm
	latDelta := angular * 180 / math.Pi
	minLat = math.Max(-90, lat-latDelta)
	maxLat = math.Min(90, lat+latDelta)
	if minLat == -90 || maxLat == 90 {
		return minLat, -180, maxLat, 180
	}

	// Widest longitude offset reached by the circle, not the one on lat's parallel.
	s := math.Sin(angular) / math.Cos(toRad(lat))
	if angular >= math.Pi/2 || s >= 1 {
		return minLat, -180, maxLat, 180
	}
	lonDelta := math.Asin(s) * 180 / math.Pi
	minLon, maxLon = lon-lonDelta, lon+lonDelta
	if minLon < -180 || maxLon > 180 {
		return minLat, -180, maxLat, 180
	}
	return minLat, minLon, maxLat, maxLon
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
