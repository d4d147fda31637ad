package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/samirrijal/airportdist/internal/adapters/csvsource"
	"github.com/samirrijal/airportdist/internal/adapters/memory"
	"github.com/samirrijal/airportdist/internal/adapters/postgres"
	"github.com/samirrijal/airportdist/internal/adapters/valkey"
	"github.com/samirrijal/airportdist/internal/core/domain"
	"github.com/samirrijal/airportdist/internal/core/ports"
	"github.com/samirrijal/airportdist/internal/core/usecases"
	"github.com/samirrijal/airportdist/internal/pkg/config"
	"github.com/samirrijal/airportdist/internal/pkg/logging"
)

const usage = `usage: query [flags] <command> [args]

commands:
  types                     list airport types present
  list                      page through airports with distances
  nearby                    airports within -radius km of the reference
  distance IDENT IDENT      distance between two stored airports

flags:`

func main() {
	cfg, err := config.Load("airportdist-query")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	csvPath := flag.String("csv", "", "query this CSV in memory instead of the database")
	refLon := flag.Float64("ref-lon", cfg.Airports.Reference.Lon, "reference longitude")
	refLat := flag.Float64("ref-lat", cfg.Airports.Reference.Lat, "reference latitude")
	typesFlag := flag.String("types", "", "comma-separated airport types (default from config)")
	offset := flag.Int("offset", 0, "page offset")
	limit := flag.Int("limit", cfg.Airports.PageSize, "page size or nearby result count")
	radius := flag.Float64("radius", 250, "nearby radius in km")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()

	repo, cleanup, err := openRepo(ctx, cfg, *csvPath)
	if err != nil {
		log.Fatalf("repository: %v", err)
	}
	defer cleanup()

	var cache ports.CacheService
	if *csvPath == "" && cfg.Valkey.Addr != "" {
		if c, err := valkey.New(cfg.Valkey.Addr, "airportdist"); err != nil {
			slog.Warn("valkey unavailable, running without cache", "error", err)
		} else {
			defer c.Close()
			cache = c
		}
	}

	defaults, err := cfg.Airports.Types()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	svc := usecases.NewAirportService(repo, cache, usecases.NewAnnotator(cfg.Airports.Workers), usecases.AirportDefaults{
		Types:    defaults,
		PageSize: cfg.Airports.PageSize,
	})

	types, err := domain.ParseAirportTypes(*typesFlag)
	if err != nil {
		log.Fatal(err)
	}
	ref := domain.ReferencePoint{
		Name:     cfg.Airports.Reference.Name,
		Location: domain.GeoPoint{Lat: *refLat, Lon: *refLon},
	}

	var out any
	switch cmd := flag.Arg(0); cmd {
	case "types":
		out, err = svc.Types(ctx)
	case "list":
		out, err = svc.List(ctx, domain.AirportFilter{
			Types:     types,
			Reference: ref,
			Offset:    *offset,
			Limit:     *limit,
		})
	case "nearby":
		out, err = svc.Nearby(ctx, ref, *radius, types, *limit)
	case "distance":
		if flag.NArg() != 3 {
			flag.Usage()
			os.Exit(2)
		}
		var d float64
		d, err = svc.Distance(ctx, flag.Arg(1), flag.Arg(2))
		out = map[string]any{"from": flag.Arg(1), "to": flag.Arg(2), "distance_km": d}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal(err)
	}
}

func openRepo(ctx context.Context, cfg *config.Config, csvPath string) (ports.AirportRepository, func(), error) {
	if csvPath != "" {
		repo := memory.NewAirportRepo()
		svc := usecases.NewIngestService(repo, nil)
		report, err := svc.LoadAndStore(ctx, csvsource.NewFileSource(csvPath))
		if err != nil {
			return nil, nil, err
		}
		slog.Debug("csv loaded", "stored", report.Stored, "skipped", report.Skipped)
		return repo, func() {}, nil
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewAirportRepo(db), db.Close, nil
}
