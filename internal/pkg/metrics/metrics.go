package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// Distance metrics
	DistanceComputations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "airportdist",
		Subsystem: "distance",
		Name:      "computations_total",
		Help:      "Total great-circle distances computed",
	})

	DistanceInvalid = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airportdist",
		Subsystem: "distance",
		Name:      "invalid_total",
		Help:      "Rows whose coordinates could not be used for a distance",
	}, []string{"field"})

	// Ingest metrics
	IngestRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airportdist",
		Subsystem: "ingest",
		Name:      "rows_total",
		Help:      "Airport rows seen during ingestion, by outcome",
	}, []string{"outcome"})

	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "airportdist",
		Subsystem: "ingest",
		Name:      "duration_seconds",
		Help:      "Duration of a full dataset ingestion",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airportdist",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airportdist",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "airportdist",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "airportdist",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "airportdist",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Ingest outcomes used as the IngestRows label.
const (
	OutcomeStored  = "stored"
	OutcomeSkipped = "skipped"
)

// UpdateDBPoolMetrics updates database pool metrics from pgx pool stats.
func UpdateDBPoolMetrics(stat interface{}) {
	// Matches *pgxpool.Stat without importing pgx here.
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}

// Push sends every registered metric to a Prometheus Pushgateway. Batch
// commands call it once before exiting. An empty url is a no-op.
func Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	err := push.New(url, job).
		Gatherer(prometheus.DefaultGatherer).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
