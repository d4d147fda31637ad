package geospatial

import (
	"math"
	"testing"
)

func TestNormalizeLongitude(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		179:  179,
		180:  -180,
		-180: -180,
		190:  -170,
		-190: 170,
		540:  -180,
		725:  5,
	}
	for in, want := range cases {
		if got := NormalizeLongitude(in); math.Abs(got-want) > 1e-9 {
			t.Errorf("NormalizeLongitude(%v) = %v, want %v", in, got, want)
		}
	}
	if !math.IsNaN(NormalizeLongitude(math.NaN())) {
		t.Error("NaN should pass through")
	}
}

func TestAntipode(t *testing.T) {
	got := Antipode(GeoPoint{Lon: 10, Lat: 20})
	if got.Lon != -170 || got.Lat != -20 {
		t.Fatalf("Antipode = %+v", got)
	}
	got = Antipode(GeoPoint{Lon: -10, Lat: -45})
	if got.Lon != 170 || got.Lat != 45 {
		t.Fatalf("Antipode = %+v", got)
	}
}

func TestHaversine_ClampsRoundingAboveOne(t *testing.T) {
	// Near-antipodal inputs must never produce NaN from asin.
	d := haversine(0, 0.0000001, 180, -0.0000001)
	if math.IsNaN(d) || d > MaxDistanceKm {
		t.Fatalf("unexpected distance %v", d)
	}
}

func TestGeoPoint_Validate(t *testing.T) {
	if err := (GeoPoint{Lon: 200, Lat: 10}).Validate(); err != nil {
		t.Fatalf("finite longitude rejected: %v", err)
	}
	if err := (GeoPoint{Lon: 0, Lat: 95}).Validate(); err == nil {
		t.Fatal("latitude 95 accepted")
	}
	if got := (GeoPoint{Lon: 200, Lat: 10}).Normalized(); got.Lon != -160 {
		t.Fatalf("Normalized lon = %v", got.Lon)
	}
}
