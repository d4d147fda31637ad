package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/airportdist/internal/core/domain"
)

// AirportRepo is a thread-safe, in-memory implementation of
// ports.AirportRepository. Airports are keyed by Ident.
type AirportRepo struct {
	sync.RWMutex
	airports map[string]domain.Airport
	now      func() time.Time
}

// NewAirportRepo creates an empty repository.
func NewAirportRepo() *AirportRepo {
	return &AirportRepo{
		airports: make(map[string]domain.Airport),
		now:      time.Now,
	}
}

// UpsertBatch stores copies of airports, keeping ID and CreatedAt of
// rows that already exist.
func (r *AirportRepo) UpsertBatch(ctx context.Context, airports []domain.Airport) error {
	r.Lock()
	defer r.Unlock()
	for _, a := range airports {
		if existing, ok := r.airports[a.Ident]; ok {
			a.ID, a.CreatedAt = existing.ID, existing.CreatedAt
		} else {
			a.ID = uuid.NewString()
			a.CreatedAt = r.now()
		}
		a.DistanceKm = nil
		r.airports[a.Ident] = a
	}
	return nil
}

// GetByIdent returns one airport.
func (r *AirportRepo) GetByIdent(ctx context.Context, ident string) (*domain.Airport, error) {
	r.RLock()
	defer r.RUnlock()
	a, ok := r.airports[ident]
	if !ok {
		return nil, fmt.Errorf("airport %q: %w", ident, domain.ErrNotFound)
	}
	return &a, nil
}

// List returns airports of the given types ordered by name then ident.
func (r *AirportRepo) List(ctx context.Context, types []domain.AirportType, offset, limit int) ([]domain.Airport, int, error) {
	matched := r.filter(types, nil)
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := total
	if limit > 0 {
		end = min(offset+limit, total)
	}
	return matched[offset:end], total, nil
}

// FindInBounds returns airports of the given types inside b.
func (r *AirportRepo) FindInBounds(ctx context.Context, types []domain.AirportType, b domain.Bounds) ([]domain.Airport, error) {
	return r.filter(types, &b), nil
}

// Types returns the distinct types present.
func (r *AirportRepo) Types(ctx context.Context) ([]domain.AirportType, error) {
	r.RLock()
	defer r.RUnlock()
	seen := make(map[domain.AirportType]struct{})
	var out []domain.AirportType
	for _, a := range r.airports {
		if _, ok := seen[a.Type]; !ok {
			seen[a.Type] = struct{}{}
			out = append(out, a.Type)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Len reports how many airports are stored.
func (r *AirportRepo) Len() int {
	r.RLock()
	defer r.RUnlock()
	return len(r.airports)
}

func (r *AirportRepo) filter(types []domain.AirportType, b *domain.Bounds) []domain.Airport {
	r.RLock()
	defer r.RUnlock()
	out := make([]domain.Airport, 0, len(r.airports))
	for _, a := range r.airports {
		if len(types) > 0 && !slices.Contains(types, a.Type) {
			continue
		}
		if b != nil && !b.Contains(a.Location) {
			continue
		}
		out = append(out, a)
	}
	slices.SortFunc(out, func(x, y domain.Airport) int {
		if c := strings.Compare(x.Name, y.Name); c != 0 {
			return c
		}
		return strings.Compare(x.Ident, y.Ident)
	})
	return out
}
