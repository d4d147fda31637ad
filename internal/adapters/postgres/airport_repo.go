package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/airportdist/internal/core/domain"
)

const airportColumns = `id, ident, type, name, latitude_deg, longitude_deg, COALESCE(iso_country, ''), created_at`

const upsertAirport = `
	INSERT INTO airports (ident, type, name, latitude_deg, longitude_deg, iso_country)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (ident) DO UPDATE
	SET type = EXCLUDED.type, name = EXCLUDED.name,
	    latitude_deg = EXCLUDED.latitude_deg, longitude_deg = EXCLUDED.longitude_deg,
	    iso_country = EXCLUDED.iso_country`

// AirportRepo implements ports.AirportRepository with pgx.
type AirportRepo struct {
	db *DB
}

// NewAirportRepo creates a new AirportRepo.
func NewAirportRepo(db *DB) *AirportRepo {
	return &AirportRepo{db: db}
}

// UpsertBatch inserts many airports using pgx.Batch.
func (r *AirportRepo) UpsertBatch(ctx context.Context, airports []domain.Airport) error {
	if len(airports) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, a := range airports {
		batch.Queue(upsertAirport, a.Ident, string(a.Type), a.Name,
			a.Location.Lat, a.Location.Lon, nilEmpty(a.ISOCountry))
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := range airports {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch item %d (%s): %w", i, airports[i].Ident, err)
		}
	}
	return nil
}

// GetByIdent returns an airport by its ident code.
func (r *AirportRepo) GetByIdent(ctx context.Context, ident string) (*domain.Airport, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+airportColumns+` FROM airports WHERE ident = $1`, ident)
	a, err := scanAirport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("airport %q: %w", ident, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns one page of airports ordered by name, with the total match count.
func (r *AirportRepo) List(ctx context.Context, types []domain.AirportType, offset, limit int) ([]domain.Airport, int, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+airportColumns+`, COUNT(*) OVER() AS total
		FROM airports
		WHERE cardinality($1::text[]) = 0 OR type = ANY($1)
		ORDER BY name, ident
		OFFSET $2 LIMIT $3
	`, typeNames(types), offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		airports []domain.Airport
		total    int
	)
	for rows.Next() {
		var a domain.Airport
		var typ string
		if err := rows.Scan(
			&a.ID, &a.Ident, &typ, &a.Name,
			&a.Location.Lat, &a.Location.Lon, &a.ISOCountry, &a.CreatedAt,
			&total,
		); err != nil {
			return nil, 0, err
		}
		a.Type = domain.AirportType(typ)
		airports = append(airports, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// An offset past the end returns no rows and therefore no window total.
	if len(airports) == 0 && offset > 0 {
		err := r.db.Pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM airports
			WHERE cardinality($1::text[]) = 0 OR type = ANY($1)
		`, typeNames(types)).Scan(&total)
		if err != nil {
			return nil, 0, err
		}
	}
	return airports, total, nil
}

// FindInBounds returns airports of the given types inside the box.
func (r *AirportRepo) FindInBounds(ctx context.Context, types []domain.AirportType, b domain.Bounds) ([]domain.Airport, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+airportColumns+`
		FROM airports
		WHERE (cardinality($1::text[]) = 0 OR type = ANY($1))
		  AND latitude_deg BETWEEN $2 AND $3
		  AND longitude_deg BETWEEN $4 AND $5
	`, typeNames(types), b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var airports []domain.Airport
	for rows.Next() {
		a, err := scanAirport(rows)
		if err != nil {
			return nil, err
		}
		airports = append(airports, a)
	}
	return airports, rows.Err()
}

// Types returns the distinct airport types present.
func (r *AirportRepo) Types(ctx context.Context) ([]domain.AirportType, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT DISTINCT type FROM airports ORDER BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []domain.AirportType
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		types = append(types, domain.AirportType(t))
	}
	return types, rows.Err()
}

func scanAirport(row pgx.Row) (domain.Airport, error) {
	var a domain.Airport
	var typ string
	err := row.Scan(
		&a.ID, &a.Ident, &typ, &a.Name,
		&a.Location.Lat, &a.Location.Lon, &a.ISOCountry, &a.CreatedAt,
	)
	a.Type = domain.AirportType(typ)
	return a, err
}

func typeNames(types []domain.AirportType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func nilEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
