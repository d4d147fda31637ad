package workflows

import (
	"context"
	"fmt"

	"github.com/samirrijal/airportdist/internal/core/domain"
	"github.com/samirrijal/airportdist/internal/core/ports"
	"github.com/samirrijal/airportdist/internal/core/usecases"
)

// SourceFactory opens the dataset named in a workflow input.
type SourceFactory func(path string) ports.AirportSource

// IngestActivities holds the activity implementations for the ingest workflow.
type IngestActivities struct {
	Ingest    *usecases.IngestService
	NewSource SourceFactory
}

// LoadAndStore reads the dataset at path and upserts its usable rows.
func (a *IngestActivities) LoadAndStore(ctx context.Context, path string) (*domain.IngestReport, error) {
	report, err := a.Ingest.LoadAndStore(ctx, a.NewSource(path))
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", path, err)
	}
	return report, nil
}

// PublishReport announces a finished ingest.
func (a *IngestActivities) PublishReport(ctx context.Context, report *domain.IngestReport) error {
	if err := a.Ingest.Publish(ctx, report); err != nil {
		return fmt.Errorf("publish %s: %w", report.BatchID, err)
	}
	return nil
}
