package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/samirrijal/airportdist/internal/adapters/csvsource"
	"github.com/samirrijal/airportdist/internal/core/domain"
	"github.com/samirrijal/airportdist/internal/core/usecases"
	"github.com/samirrijal/airportdist/internal/pkg/config"
	"github.com/samirrijal/airportdist/internal/pkg/logging"
)

// annotate reads the airports CSV, keeps the requested types and writes
// them to stdout with a gc_distance column measured from the reference point.
func main() {
	cfg, err := config.Load("airportdist-annotate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	csvPath := flag.String("csv", cfg.Airports.CSVPath, "airports CSV file")
	refLon := flag.Float64("ref-lon", cfg.Airports.Reference.Lon, "reference longitude (degrees)")
	refLat := flag.Float64("ref-lat", cfg.Airports.Reference.Lat, "reference latitude (degrees)")
	typesFlag := flag.String("types", "", "comma separated airport types; empty uses airports.default_types, \"all\" keeps every row")
	flag.Parse()

	types, err := cfg.Airports.Types()
	if err != nil {
		log.Fatalf("default types: %v", err)
	}
	switch *typesFlag {
	case "":
	case "all":
		types = nil
	default:
		if types, err = domain.ParseAirportTypes(*typesFlag); err != nil {
			log.Fatalf("types: %v", err)
		}
	}

	ctx := context.Background()
	rows, err := csvsource.NewFileSource(*csvPath).Load(ctx)
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	rows = domain.FilterByTypes(rows, types)

	ref := domain.ReferencePoint{
		Name:     "cli",
		Location: domain.GeoPoint{Lat: *refLat, Lon: *refLon},
	}
	res, err := usecases.NewAnnotator(cfg.Airports.Workers).Annotate(ctx, rows, ref)
	if err != nil {
		log.Fatalf("annotate: %v", err)
	}
	if res.Invalid > 0 {
		slog.Warn("rows without usable coordinates", "count", res.Invalid)
	}

	if err := csvsource.WriteAnnotated(os.Stdout, res.Airports); err != nil {
		log.Fatalf("write: %v", err)
	}
	slog.Info("annotated", "rows", len(res.Airports), "reference", ref.Location.Point().String())
}
