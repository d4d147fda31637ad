package usecases_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/airportdist/internal/core/domain"
	"github.com/samirrijal/airportdist/internal/core/usecases"
)

func TestIngestService_Ingest(t *testing.T) {
	var stored []domain.Airport
	repo := &mockAirportRepo{
		upsertBatchFn: func(ctx context.Context, airports []domain.Airport) error {
			stored = append(stored, airports...)
			return nil
		},
	}
	pub := &mockPublisher{}
	src := &mockSource{name: "airports.csv", rows: []domain.Airport{
		airport("LEMD", domain.AirportTypeLarge, 40.47, -3.56),
		airport("BAD1", domain.AirportTypeSmall, math.NaN(), 0),
		airport("BAD2", "spaceport", 10, 10),
		airport("", domain.AirportTypeSmall, 10, 10),
		airport("EGLL", domain.AirportTypeLarge, 51.47, -0.45),
	}}

	report, err := usecases.NewIngestService(repo, pub).Ingest(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Rows != 5 || report.Stored != 2 || report.Skipped != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.BatchID == "" || report.Source != "airports.csv" {
		t.Errorf("report missing identity: %+v", report)
	}
	if len(stored) != 2 || stored[0].Ident != "LEMD" || stored[1].Ident != "EGLL" {
		t.Errorf("unexpected stored rows: %+v", stored)
	}
	if len(pub.published) != 1 || pub.published[0].BatchID != report.BatchID {
		t.Errorf("expected report to be published once, got %d", len(pub.published))
	}
}

func TestIngestService_Batches(t *testing.T) {
	var batches []int
	repo := &mockAirportRepo{
		upsertBatchFn: func(ctx context.Context, airports []domain.Airport) error {
			batches = append(batches, len(airports))
			return nil
		},
	}
	rows := make([]domain.Airport, 1201)
	for i := range rows {
		rows[i] = airport("A", domain.AirportTypeSmall, 1, 1)
	}

	report, err := usecases.NewIngestService(repo, nil).Ingest(context.Background(), &mockSource{name: "big", rows: rows})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Stored != 1201 {
		t.Errorf("stored = %d, want 1201", report.Stored)
	}
	if len(batches) != 3 || batches[0] != 500 || batches[1] != 500 || batches[2] != 201 {
		t.Errorf("unexpected batches: %v", batches)
	}
}

func TestIngestService_PublishFailureDoesNotFail(t *testing.T) {
	pub := &mockPublisher{publishFn: func(ctx context.Context, r *domain.IngestReport) error {
		return errors.New("broker down")
	}}
	src := &mockSource{name: "x", rows: []domain.Airport{airport("A", domain.AirportTypeSmall, 1, 1)}}

	report, err := usecases.NewIngestService(&mockAirportRepo{}, pub).Ingest(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Stored != 1 {
		t.Errorf("stored = %d, want 1", report.Stored)
	}
}

func TestIngestService_Errors(t *testing.T) {
	loadErr := errors.New("read failed")
	_, err := usecases.NewIngestService(&mockAirportRepo{}, nil).
		Ingest(context.Background(), &mockSource{name: "x", err: loadErr})
	if !errors.Is(err, loadErr) {
		t.Errorf("expected load error, got %v", err)
	}

	upsertErr := errors.New("db down")
	repo := &mockAirportRepo{upsertBatchFn: func(ctx context.Context, a []domain.Airport) error { return upsertErr }}
	src := &mockSource{name: "x", rows: []domain.Airport{airport("A", domain.AirportTypeSmall, 1, 1)}}
	_, err = usecases.NewIngestService(repo, nil).Ingest(context.Background(), src)
	if !errors.Is(err, upsertErr) {
		t.Errorf("expected upsert error, got %v", err)
	}
}

func TestIngestService_InvalidatesListCache(t *testing.T) {
	cache := newMockCache()
	ctx := context.Background()
	_ = cache.Set(ctx, usecases.ListCachePrefix+"large_airport:45.0000,45.0000:0:50", []byte("{}"), 60)
	_ = cache.Set(ctx, "other:key", []byte("x"), 60)

	repo := &mockAirportRepo{}
	src := &mockSource{name: "airports.csv", rows: []domain.Airport{
		airport("LEMD", domain.AirportTypeLarge, 40.47, -3.56),
	}}

	svc := usecases.NewIngestService(repo, nil).WithCache(cache)
	if _, err := svc.LoadAndStore(ctx, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cache.data) != 1 {
		t.Fatalf("expected only the unrelated key to survive, got %v", cache.data)
	}
	if _, ok := cache.data["other:key"]; !ok {
		t.Error("unrelated key was removed")
	}
}

func TestIngestService_NormalizesLongitude(t *testing.T) {
	var stored []domain.Airport
	repo := &mockAirportRepo{
		upsertBatchFn: func(ctx context.Context, airports []domain.Airport) error {
			stored = append(stored, airports...)
			return nil
		},
	}
	src := &mockSource{name: "airports.csv", rows: []domain.Airport{
		airport("WRAP", domain.AirportTypeLarge, 0, 190),
		airport("NEG", domain.AirportTypeLarge, 0, -540),
		airport("OK", domain.AirportTypeLarge, 0, 12.5),
	}}

	if _, err := usecases.NewIngestService(repo, nil).LoadAndStore(context.Background(), src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]float64{"WRAP": -170, "NEG": -180, "OK": 12.5}
	for _, a := range stored {
		if a.Location.Lon != want[a.Ident] {
			t.Errorf("%s: lon = %v, want %v", a.Ident, a.Location.Lon, want[a.Ident])
		}
	}
}
