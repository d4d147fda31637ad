package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/airportdist/internal/adapters/csvsource"
	natsadapter "github.com/samirrijal/airportdist/internal/adapters/nats"
	"github.com/samirrijal/airportdist/internal/adapters/postgres"
	"github.com/samirrijal/airportdist/internal/adapters/valkey"
	"github.com/samirrijal/airportdist/internal/core/ports"
	"github.com/samirrijal/airportdist/internal/core/usecases"
	"github.com/samirrijal/airportdist/internal/pkg/config"
	"github.com/samirrijal/airportdist/internal/pkg/logging"
	"github.com/samirrijal/airportdist/internal/workflows"
)

func main() {
	cfg, err := config.Load("airportdist-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var publisher ports.EventPublisher
	if nc, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
		publisher = nc
	}

	ingest := usecases.NewIngestService(postgres.NewAirportRepo(db), publisher)
	if cfg.Valkey.Addr != "" {
		if cache, err := valkey.New(cfg.Valkey.Addr, "airportdist"); err != nil {
			slog.Warn("valkey unavailable, cached pages may be stale", "error", err)
		} else {
			defer cache.Close()
			ingest.WithCache(cache)
		}
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.IngestAirportsWorkflow)
	w.RegisterActivity(&workflows.IngestActivities{
		Ingest: ingest,
		NewSource: func(path string) ports.AirportSource {
			return csvsource.NewFileSource(path)
		},
	})

	slog.Info("ingest worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
