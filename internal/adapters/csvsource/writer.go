package csvsource

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/samirrijal/airportdist/internal/core/domain"
)

// AnnotatedHeader is the column order written by WriteAnnotated.
var AnnotatedHeader = []string{ColIdent, ColType, ColName, ColLatitude, ColLongitude, ColISOCountry, ColDistance}

// WriteAnnotated writes airports with their gc_distance column. A nil
// distance is written as an empty cell.
func WriteAnnotated(w io.Writer, airports []domain.Airport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(AnnotatedHeader); err != nil {
		return err
	}
	for _, a := range airports {
		dist := ""
		if a.DistanceKm != nil {
			dist = strconv.FormatFloat(*a.DistanceKm, 'f', 1, 64)
		}
		if err := cw.Write([]string{
			a.Ident,
			string(a.Type),
			a.Name,
			formatDegrees(a.Location.Lat),
			formatDegrees(a.Location.Lon),
			a.ISOCountry,
			dist,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDegrees(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
