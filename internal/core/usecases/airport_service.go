package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/samirrijal/airportdist/internal/core/domain"
	"github.com/samirrijal/airportdist/internal/core/ports"
	"github.com/samirrijal/airportdist/internal/pkg/geospatial"
	"github.com/samirrijal/airportdist/internal/pkg/metrics"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500

	defaultNearbyLimit = 20
	maxNearbyLimit     = 100

	listCacheTTL = 300
)

// ListCachePrefix prefixes every cached List page.
const ListCachePrefix = "airports:list:"

// AirportDefaults fills in what a filter leaves out.
type AirportDefaults struct {
	Types    []domain.AirportType
	PageSize int
}

// AirportService handles airport queries.
type AirportService struct {
	airports  ports.AirportRepository
	cache     ports.CacheService
	annotator *Annotator
	defaults  AirportDefaults
}

// NewAirportService creates a new AirportService. cache may be nil.
func NewAirportService(airports ports.AirportRepository, cache ports.CacheService, annotator *Annotator, defaults AirportDefaults) *AirportService {
	if len(defaults.Types) == 0 {
		defaults.Types = []domain.AirportType{domain.AirportTypeLarge}
	}
	if defaults.PageSize <= 0 || defaults.PageSize > maxPageSize {
		defaults.PageSize = defaultPageSize
	}
	if annotator == nil {
		annotator = NewAnnotator(0)
	}
	return &AirportService{airports: airports, cache: cache, annotator: annotator, defaults: defaults}
}

// List returns one page of airports of the filter's types, each annotated
// with its distance from the filter's reference point.
func (s *AirportService) List(ctx context.Context, f domain.AirportFilter) (*domain.AirportPage, error) {
	ctx, span := tracer.Start(ctx, "AirportService.List")
	defer span.End()

	if err := f.Reference.Location.Point().Validate(); err != nil {
		return nil, fmt.Errorf("%w: reference: %v", domain.ErrInvalidFilter, err)
	}
	if f.Offset < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", domain.ErrInvalidFilter, f.Offset)
	}
	if len(f.Types) == 0 {
		f.Types = s.defaults.Types
	}
	if f.Limit <= 0 {
		f.Limit = s.defaults.PageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}

	cacheKey := listCacheKey(f)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var page domain.AirportPage
			if err := json.Unmarshal(data, &page); err == nil {
				metrics.CacheHits.WithLabelValues("airports_list").Inc()
				return &page, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("airports_list").Inc()
	}

	rows, total, err := s.airports.List(ctx, f.Types, f.Offset, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("list airports: %w", err)
	}

	res, err := s.annotator.Annotate(ctx, rows, f.Reference)
	if err != nil {
		return nil, err
	}
	if res.Invalid > 0 {
		slog.Warn("airports without usable coordinates", "count", res.Invalid, "offset", f.Offset)
	}

	page := &domain.AirportPage{
		Airports: res.Airports,
		Offset:   f.Offset,
		Limit:    f.Limit,
		Total:    total,
	}

	if s.cache != nil {
		if data, err := json.Marshal(page); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, listCacheTTL)
		}
	}
	return page, nil
}

// Types returns the distinct airport categories present, sorted.
func (s *AirportService) Types(ctx context.Context) ([]domain.AirportType, error) {
	types, err := s.airports.Types(ctx)
	if err != nil {
		return nil, fmt.Errorf("airport types: %w", err)
	}
	slices.Sort(types)
	return slices.Compact(types), nil
}

// Nearby returns airports within radiusKm of ref, closest first.
func (s *AirportService) Nearby(ctx context.Context, ref domain.ReferencePoint, radiusKm float64, types []domain.AirportType, limit int) ([]domain.Airport, error) {
	ctx, span := tracer.Start(ctx, "AirportService.Nearby")
	defer span.End()

	if radiusKm <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive, got %v", domain.ErrInvalidFilter, radiusKm)
	}
	radiusKm = min(radiusKm, geospatial.MaxDistanceKm)
	if limit <= 0 {
		limit = defaultNearbyLimit
	}
	limit = min(limit, maxNearbyLimit)
	if err := ref.Location.Point().Validate(); err != nil {
		return nil, fmt.Errorf("%w: reference: %v", domain.ErrInvalidFilter, err)
	}
	// Stored longitudes are canonical, so the box must be built around a
	// canonical center.
	ref.Location.Lon = geospatial.NormalizeLongitude(ref.Location.Lon)

	candidates, err := s.airports.FindInBounds(ctx, types, domain.BoundsAround(ref.Location, radiusKm))
	if err != nil {
		return nil, fmt.Errorf("find in bounds: %w", err)
	}

	res, err := s.annotator.Annotate(ctx, candidates, ref)
	if err != nil {
		return nil, err
	}

	near := make([]domain.Airport, 0, len(res.Airports))
	for _, a := range res.Airports {
		if a.DistanceKm != nil && *a.DistanceKm <= radiusKm {
			near = append(near, a)
		}
	}
	sort.SliceStable(near, func(i, j int) bool {
		return *near[i].DistanceKm < *near[j].DistanceKm
	})
	if len(near) > limit {
		near = near[:limit]
	}
	return near, nil
}

// Distance returns the great-circle distance between two stored airports.
func (s *AirportService) Distance(ctx context.Context, fromIdent, toIdent string) (float64, error) {
	from, err := s.airports.GetByIdent(ctx, fromIdent)
	if err != nil {
		return 0, fmt.Errorf("airport %s: %w", fromIdent, err)
	}
	to, err := s.airports.GetByIdent(ctx, toIdent)
	if err != nil {
		return 0, fmt.Errorf("airport %s: %w", toIdent, err)
	}
	d, err := from.Location.DistanceKm(to.Location)
	if err != nil {
		return 0, fmt.Errorf("distance %s-%s: %w", fromIdent, toIdent, err)
	}
	return d, nil
}

func listCacheKey(f domain.AirportFilter) string {
	types := make([]string, len(f.Types))
	for i, t := range f.Types {
		types[i] = string(t)
	}
	slices.Sort(types)
	loc := f.Reference.Location
	return fmt.Sprintf("%s%s:%s,%s:%d:%d", ListCachePrefix,
		strings.Join(types, ","),
		strconv.FormatFloat(loc.Lat, 'g', -1, 64),
		strconv.FormatFloat(loc.Lon, 'g', -1, 64),
		f.Offset, f.Limit)
}
