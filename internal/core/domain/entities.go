package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a lookup matches nothing.
	ErrNotFound = errors.New("not found")
	// ErrInvalidFilter is returned for filters that cannot be served.
	ErrInvalidFilter = errors.New("invalid filter")
)

// AirportType is the category column of the airports dataset.
type AirportType string

const (
	AirportTypeBalloonport  AirportType = "balloonport"
	AirportTypeClosed       AirportType = "closed"
	AirportTypeHeliport     AirportType = "heliport"
	AirportTypeLarge        AirportType = "large_airport"
	AirportTypeMedium       AirportType = "medium_airport"
	AirportTypeSeaplaneBase AirportType = "seaplane_base"
	AirportTypeSmall        AirportType = "small_airport"
)

var knownAirportTypes = []AirportType{
	AirportTypeBalloonport,
	AirportTypeClosed,
	AirportTypeHeliport,
	AirportTypeLarge,
	AirportTypeMedium,
	AirportTypeSeaplaneBase,
	AirportTypeSmall,
}

// KnownAirportTypes returns every category in sorted order.
func KnownAirportTypes() []AirportType {
	out := make([]AirportType, len(knownAirportTypes))
	copy(out, knownAirportTypes)
	return out
}

// ParseAirportType accepts a category name case-insensitively.
func ParseAirportType(s string) (AirportType, error) {
	t := AirportType(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range knownAirportTypes {
		if k == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown airport type %q", s)
}

// ParseAirportTypes parses a comma separated list, skipping blanks.
func ParseAirportTypes(csv string) ([]AirportType, error) {
	var out []AirportType
	for _, part := range strings.Split(csv, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := ParseAirportType(part)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Airport is one row of the airports dataset.
type Airport struct {
	ID         string      `json:"id"`
	Ident      string      `json:"ident"`
	Type       AirportType `json:"type"`
	Name       string      `json:"airport_name"`
	Location   GeoPoint    `json:"location"`
	ISOCountry string      `json:"iso_country"`
	DistanceKm *float64    `json:"gc_distance,omitempty"` // computed field, nil when the row has no valid coordinate
	CreatedAt  time.Time   `json:"created_at"`
}

// ReferencePoint is the origin distances are measured from.
type ReferencePoint struct {
	Name     string   `json:"name,omitempty"`
	Location GeoPoint `json:"location"`
}

// AirportFilter selects a page of airports.
type AirportFilter struct {
	Types     []AirportType
	Reference ReferencePoint
	Offset    int
	Limit     int
}

// AirportPage is one page of filtered, distance-annotated airports.
type AirportPage struct {
	Airports []Airport `json:"airports"`
	Offset   int       `json:"offset"`
	Limit    int       `json:"limit"`
	Total    int       `json:"total"`
}

// IngestReport summarises one dataset load.
type IngestReport struct {
	BatchID    string    `json:"batch_id"`
	Source     string    `json:"source"`
	Rows       int       `json:"rows"`
	Skipped    int       `json:"skipped"`
	Stored     int       `json:"stored"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// FilterByTypes keeps airports whose type is in types. An empty types
// slice keeps everything.
func FilterByTypes(airports []Airport, types []AirportType) []Airport {
	if len(types) == 0 {
		return airports
	}
	want := make(map[AirportType]struct{}, len(types))
	for _, t := range types {
		want[t] = struct{}{}
	}
	out := make([]Airport, 0, len(airports))
	for _, a := range airports {
		if _, ok := want[a.Type]; ok {
			out = append(out, a)
		}
	}
	return out
}
