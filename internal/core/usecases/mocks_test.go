package usecases_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/samirrijal/airportdist/internal/core/domain"
)

// --- Mock AirportRepository ---

type mockAirportRepo struct {
	upsertBatchFn  func(ctx context.Context, airports []domain.Airport) error
	getByIdentFn   func(ctx context.Context, ident string) (*domain.Airport, error)
	listFn         func(ctx context.Context, types []domain.AirportType, offset, limit int) ([]domain.Airport, int, error)
	findInBoundsFn func(ctx context.Context, types []domain.AirportType, b domain.Bounds) ([]domain.Airport, error)
	typesFn        func(ctx context.Context) ([]domain.AirportType, error)
}

func (m *mockAirportRepo) UpsertBatch(ctx context.Context, airports []domain.Airport) error {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, airports)
	}
	return nil
}

func (m *mockAirportRepo) GetByIdent(ctx context.Context, ident string) (*domain.Airport, error) {
	if m.getByIdentFn != nil {
		return m.getByIdentFn(ctx, ident)
	}
	return nil, domain.ErrNotFound
}

func (m *mockAirportRepo) List(ctx context.Context, types []domain.AirportType, offset, limit int) ([]domain.Airport, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, types, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockAirportRepo) FindInBounds(ctx context.Context, types []domain.AirportType, b domain.Bounds) ([]domain.Airport, error) {
	if m.findInBoundsFn != nil {
		return m.findInBoundsFn(ctx, types, b)
	}
	return nil, nil
}

func (m *mockAirportRepo) Types(ctx context.Context) ([]domain.AirportType, error) {
	if m.typesFn != nil {
		return m.typesFn(ctx)
	}
	return nil, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockCache) DeletePrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	publishFn func(ctx context.Context, report *domain.IngestReport) error
	published []*domain.IngestReport
}

func (m *mockPublisher) PublishAirportsIngested(ctx context.Context, report *domain.IngestReport) error {
	m.published = append(m.published, report)
	if m.publishFn != nil {
		return m.publishFn(ctx, report)
	}
	return nil
}

// --- Mock AirportSource ---

type mockSource struct {
	name string
	rows []domain.Airport
	err  error
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Load(ctx context.Context) ([]domain.Airport, error) {
	return m.rows, m.err
}

// --- Fixtures ---

func airport(ident string, typ domain.AirportType, lat, lon float64) domain.Airport {
	return domain.Airport{
		ID:       "id-" + ident,
		Ident:    ident,
		Type:     typ,
		Name:     ident + " Airport",
		Location: domain.GeoPoint{Lat: lat, Lon: lon},
	}
}

func ref(lat, lon float64) domain.ReferencePoint {
	return domain.ReferencePoint{Name: "ref", Location: domain.GeoPoint{Lat: lat, Lon: lon}}
}
