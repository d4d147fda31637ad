package ports

import (
	"context"

	"github.com/samirrijal/airportdist/internal/core/domain"
)

// AirportRepository persists airports.
type AirportRepository interface {
	UpsertBatch(ctx context.Context, airports []domain.Airport) error
	GetByIdent(ctx context.Context, ident string) (*domain.Airport, error)
	// List returns one page of airports of the given types ordered by name,
	// plus the total number of matches. An empty types slice matches all.
	List(ctx context.Context, types []domain.AirportType, offset, limit int) ([]domain.Airport, int, error)
	FindInBounds(ctx context.Context, types []domain.AirportType, bounds domain.Bounds) ([]domain.Airport, error)
	Types(ctx context.Context) ([]domain.AirportType, error)
}

// AirportSource loads airport rows from tabular data.
type AirportSource interface {
	// Name identifies the source in ingest reports (file path, URL, ...).
	Name() string
	Load(ctx context.Context) ([]domain.Airport, error)
}
