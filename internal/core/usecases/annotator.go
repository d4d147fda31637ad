package usecases

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/airportdist/internal/core/domain"
	"github.com/samirrijal/airportdist/internal/pkg/geospatial"
	"github.com/samirrijal/airportdist/internal/pkg/metrics"
	"github.com/samirrijal/airportdist/internal/pkg/telemetry"
)

var tracer = otel.Tracer("airportdist/usecases")

// annotateChunk is the number of rows handled by one goroutine.
const annotateChunk = 1024

// AnnotateResult is the outcome of Annotator.Annotate.
type AnnotateResult struct {
	Airports []domain.Airport
	Valid    int
	Invalid  int
}

// Annotator derives the great-circle distance column for a set of airports.
type Annotator struct {
	workers int
}

// NewAnnotator creates an Annotator running at most workers goroutines.
// workers <= 0 uses GOMAXPROCS.
func NewAnnotator(workers int) *Annotator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Annotator{workers: workers}
}

// Annotate returns a copy of airports with DistanceKm set relative to ref.
// Rows with unusable coordinates get a nil DistanceKm and are counted as
// invalid; they never fail the batch. Only an invalid reference point or a
// cancelled context return an error.
func (a *Annotator) Annotate(ctx context.Context, airports []domain.Airport, ref domain.ReferencePoint) (AnnotateResult, error) {
	ctx, span := tracer.Start(ctx, "Annotator.Annotate")
	defer span.End()
	span.SetAttributes(telemetry.AttrAirportCount.Int(len(airports)))

	origin := ref.Location.Point()
	if err := origin.Validate(); err != nil {
		return AnnotateResult{}, fmt.Errorf("reference point: %w", err)
	}

	out := make([]domain.Airport, len(airports))
	copy(out, airports)

	var invalid atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for start := 0; start < len(out); start += annotateChunk {
		end := min(start+annotateChunk, len(out))
		rows := out[start:end]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := range rows {
				d, err := geospatial.Distance(rows[i].Location.Point(), origin)
				if err != nil {
					rows[i].DistanceKm = nil
					invalid.Add(1)
					metrics.DistanceInvalid.WithLabelValues(invalidField(err)).Inc()
					continue
				}
				rows[i].DistanceKm = &d
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AnnotateResult{}, err
	}

	res := AnnotateResult{
		Airports: out,
		Invalid:  int(invalid.Load()),
	}
	res.Valid = len(out) - res.Invalid
	metrics.DistanceComputations.Add(float64(res.Valid))
	span.SetAttributes(telemetry.AttrAirportInvalid.Int(res.Invalid))
	return res, nil
}

func invalidField(err error) string {
	var ce *geospatial.CoordinateError
	if errors.As(err, &ce) {
		return ce.Field
	}
	return "unknown"
}
