package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/airportdist/internal/core/domain"
	"github.com/samirrijal/airportdist/internal/core/ports"
	"github.com/samirrijal/airportdist/internal/pkg/geospatial"
	"github.com/samirrijal/airportdist/internal/pkg/metrics"
	"github.com/samirrijal/airportdist/internal/pkg/telemetry"
)

const defaultIngestBatch = 500

// IngestService loads airport datasets into the repository.
type IngestService struct {
	airports  ports.AirportRepository
	publisher ports.EventPublisher
	cache     ports.CacheService
	batchSize int
	now       func() time.Time
}

// NewIngestService creates a new IngestService. publisher may be nil.
func NewIngestService(airports ports.AirportRepository, publisher ports.EventPublisher) *IngestService {
	return &IngestService{
		airports:  airports,
		publisher: publisher,
		batchSize: defaultIngestBatch,
		now:       time.Now,
	}
}

// WithCache makes the service drop cached List pages after each stored
// dataset.
func (s *IngestService) WithCache(cache ports.CacheService) *IngestService {
	s.cache = cache
	return s
}

// Ingest loads, stores and announces a dataset. A failed announcement is
// logged; the stored data stands.
func (s *IngestService) Ingest(ctx context.Context, source ports.AirportSource) (*domain.IngestReport, error) {
	report, err := s.LoadAndStore(ctx, source)
	if err != nil {
		return nil, err
	}
	if err := s.Publish(ctx, report); err != nil {
		slog.Warn("publish ingest report", "batch_id", report.BatchID, "error", err)
	}
	return report, nil
}

// LoadAndStore reads every row from source and upserts the usable ones.
// Rows with an unknown type or unusable coordinates are skipped and counted.
func (s *IngestService) LoadAndStore(ctx context.Context, source ports.AirportSource) (*domain.IngestReport, error) {
	ctx, span := tracer.Start(ctx, "IngestService.LoadAndStore")
	defer span.End()

	report := &domain.IngestReport{
		BatchID:   uuid.NewString(),
		Source:    source.Name(),
		StartedAt: s.now(),
	}

	rows, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source.Name(), err)
	}
	report.Rows = len(rows)

	batch := make([]domain.Airport, 0, s.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.airports.UpsertBatch(ctx, batch); err != nil {
			return fmt.Errorf("upsert batch at row %d: %w", report.Stored, err)
		}
		report.Stored += len(batch)
		metrics.IngestRows.WithLabelValues(metrics.OutcomeStored).Add(float64(len(batch)))
		batch = batch[:0]
		return nil
	}

	for _, a := range rows {
		if reason := rejectReason(a); reason != "" {
			report.Skipped++
			metrics.IngestRows.WithLabelValues(metrics.OutcomeSkipped).Inc()
			slog.Debug("skip airport row", "ident", a.Ident, "reason", reason)
			continue
		}
		a.Location.Lon = geospatial.NormalizeLongitude(a.Location.Lon)
		batch = append(batch, a)
		if len(batch) >= s.batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if s.cache != nil && report.Stored > 0 {
		if err := s.cache.DeletePrefix(ctx, ListCachePrefix); err != nil {
			slog.Warn("invalidate list cache", "error", err)
		}
	}

	report.FinishedAt = s.now()
	metrics.IngestDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	span.SetAttributes(
		telemetry.AttrIngestSource.String(report.Source),
		telemetry.AttrIngestRows.Int(report.Rows),
		telemetry.AttrIngestSkipped.Int(report.Skipped),
	)
	slog.Info("airports ingested",
		"batch_id", report.BatchID,
		"source", report.Source,
		"rows", report.Rows,
		"stored", report.Stored,
		"skipped", report.Skipped,
	)
	return report, nil
}

// Publish announces a finished ingest. Without a publisher it does nothing.
func (s *IngestService) Publish(ctx context.Context, report *domain.IngestReport) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishAirportsIngested(ctx, report)
}

func rejectReason(a domain.Airport) string {
	if a.Ident == "" {
		return "missing ident"
	}
	if _, err := domain.ParseAirportType(string(a.Type)); err != nil {
		return err.Error()
	}
	if err := a.Location.Point().Validate(); err != nil {
		return err.Error()
	}
	return ""
}
