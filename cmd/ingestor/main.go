package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/airportdist/internal/adapters/csvsource"
	natsadapter "github.com/samirrijal/airportdist/internal/adapters/nats"
	"github.com/samirrijal/airportdist/internal/adapters/postgres"
	"github.com/samirrijal/airportdist/internal/adapters/valkey"
	"github.com/samirrijal/airportdist/internal/core/domain"
	"github.com/samirrijal/airportdist/internal/core/ports"
	"github.com/samirrijal/airportdist/internal/core/usecases"
	"github.com/samirrijal/airportdist/internal/pkg/config"
	"github.com/samirrijal/airportdist/internal/pkg/logging"
	"github.com/samirrijal/airportdist/internal/pkg/metrics"
	"github.com/samirrijal/airportdist/internal/pkg/telemetry"
	"github.com/samirrijal/airportdist/internal/workflows"
)

func main() {
	cfg, err := config.Load("airportdist-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	csvPath := flag.String("csv", cfg.Airports.CSVPath, "airports CSV file")
	viaWorkflow := flag.Bool("workflow", false, "run the ingest as a Temporal workflow instead of in-process")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	var report *domain.IngestReport
	if *viaWorkflow {
		report, err = runWorkflow(ctx, cfg, *csvPath)
	} else {
		report, err = runInProcess(ctx, cfg, *csvPath)
	}
	if err != nil {
		log.Fatalf("ingest: %v", err)
	}

	slog.Info("ingestion complete",
		"batch_id", report.BatchID,
		"rows", report.Rows,
		"stored", report.Stored,
		"skipped", report.Skipped,
	)

	if err := metrics.Push(ctx, cfg.Metrics.PushgatewayURL, "airportdist-ingestor"); err != nil {
		slog.Warn("metrics push failed", "error", err)
	}
}

func runInProcess(ctx context.Context, cfg *config.Config, csvPath string) (*domain.IngestReport, error) {
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	defer db.ReportStats()

	var publisher ports.EventPublisher
	if nc, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
		publisher = nc
	}

	svc := usecases.NewIngestService(postgres.NewAirportRepo(db), publisher)
	if cfg.Valkey.Addr != "" {
		if cache, err := valkey.New(cfg.Valkey.Addr, "airportdist"); err != nil {
			slog.Warn("valkey unavailable, cached pages may be stale", "error", err)
		} else {
			defer cache.Close()
			svc.WithCache(cache)
		}
	}
	return svc.Ingest(ctx, csvsource.NewFileSource(csvPath))
}

func runWorkflow(ctx context.Context, cfg *config.Config, csvPath string) (*domain.IngestReport, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		return nil, err
	}
	defer c.Close()

	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "airport-ingest-" + uuid.NewString(),
		TaskQueue: cfg.Temporal.TaskQueue,
	}, workflows.IngestAirportsWorkflow, workflows.IngestInput{CSVPath: csvPath})
	if err != nil {
		return nil, err
	}
	slog.Info("workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID())

	var report *domain.IngestReport
	if err := run.Get(ctx, &report); err != nil {
		return nil, err
	}
	return report, nil
}
