package config

import (
	"os"
	"strings"
	"testing"

	"github.com/samirrijal/airportdist/internal/core/domain"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("airportdist-test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telemetry.ServiceName != "airportdist-test" {
		t.Errorf("service name = %q", cfg.Telemetry.ServiceName)
	}
	ref := cfg.Airports.Reference.Point()
	if ref.Location.Lat != 45 || ref.Location.Lon != 45 {
		t.Errorf("default reference = %+v, want 45,45", ref.Location)
	}
	types, err := cfg.Airports.Types()
	if err != nil || len(types) != 1 || types[0] != domain.AirportTypeLarge {
		t.Errorf("default types = %v (%v)", types, err)
	}
	if cfg.Airports.PageSize != 50 {
		t.Errorf("page size = %d", cfg.Airports.PageSize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AIRPORTDIST_AIRPORTS_REFERENCE_LAT", "-33.9")
	t.Setenv("AIRPORTDIST_AIRPORTS_REFERENCE_LON", "151.2")
	t.Setenv("AIRPORTDIST_DATABASE_PORT", "6543")

	cfg, err := Load("airportdist-test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Airports.Reference.Lat != -33.9 || cfg.Airports.Reference.Lon != 151.2 {
		t.Errorf("reference = %+v", cfg.Airports.Reference)
	}
	if !strings.Contains(cfg.Database.DSN(), ":6543/") {
		t.Errorf("dsn = %s", cfg.Database.DSN())
	}
}

func TestLoad_InvalidReference(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AIRPORTDIST_AIRPORTS_REFERENCE_LAT", "120")

	_, err := Load("airportdist-test")
	if err == nil || !strings.Contains(err.Error(), "airports.reference") {
		t.Fatalf("expected reference validation error, got %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Log:      LogConfig{Format: "xml"},
		Airports: AirportsConfig{DefaultTypes: []string{"spaceport"}},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"log.format", "airports.csv_path", "airports.default_types", "airports.page_size", "database.host", "nats.url"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q:\n%s", want, err)
		}
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore dir: %v", err)
		}
	})
}
