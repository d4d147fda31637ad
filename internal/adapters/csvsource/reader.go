package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/samirrijal/airportdist/internal/core/domain"
)

// Column names of the airports dataset.
const (
	ColIdent      = "ident"
	ColType       = "type"
	ColName       = "airport_name"
	ColLatitude   = "latitude_deg"
	ColLongitude  = "longitude_deg"
	ColISOCountry = "iso_country"
	ColDistance   = "gc_distance"
)

// altNames maps alternative headers onto the canonical column names.
var altNames = map[string]string{
	"name": ColName,
}

var requiredCols = []string{ColType, ColName, ColLatitude, ColLongitude}

// Source implements ports.AirportSource over CSV data.
type Source struct {
	name string
	open func() (io.ReadCloser, error)
}

// NewFileSource reads the CSV file at path on every Load.
func NewFileSource(path string) *Source {
	return &Source{
		name: path,
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// NewReaderSource reads r once; later Loads see an exhausted reader.
func NewReaderSource(name string, r io.Reader) *Source {
	return &Source{
		name: name,
		open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

func (s *Source) Name() string { return s.name }

// Load parses all rows.
func (s *Source) Load(ctx context.Context) ([]domain.Airport, error) {
	f, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.name, err)
	}
	defer f.Close()
	return Parse(ctx, f)
}

// Parse reads airports from CSV. Coordinates that fail to parse become NaN
// so the row survives and is reported downstream rather than landing on
// (0, 0). Rows without an ident column get "row-<n>" (1-based data row).
func Parse(ctx context.Context, r io.Reader) ([]domain.Airport, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv: missing header")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)
	for _, c := range requiredCols {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var airports []domain.Airport
	for n := 1; ; n++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n, err)
		}
		if n%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		ident := getField(record, cols, ColIdent)
		if ident == "" {
			ident = "row-" + strconv.Itoa(n)
		}
		airports = append(airports, domain.Airport{
			Ident:      ident,
			Type:       domain.AirportType(strings.ToLower(getField(record, cols, ColType))),
			Name:       getField(record, cols, ColName),
			ISOCountry: getField(record, cols, ColISOCountry),
			Location: domain.GeoPoint{
				Lat: parseDegrees(getField(record, cols, ColLatitude)),
				Lon: parseDegrees(getField(record, cols, ColLongitude)),
			},
		})
	}
	return airports, nil
}

func indexColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		// Strip BOM from first column
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\xef\xbb\xbf")))
		if canon, ok := altNames[col]; ok {
			if _, taken := m[canon]; taken {
				continue
			}
			col = canon
		}
		m[col] = i
	}
	return m
}

func getField(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseDegrees(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
