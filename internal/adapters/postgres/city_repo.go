package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/globetrotter/internal/core/domain"
)

// CityRepo implements ports.CityRepository over the reference_cities table.
type CityRepo struct {
	db *DB
}

func NewCityRepo(db *DB) *CityRepo {
	return &CityRepo{db: db}
}

// List returns cities in seed order. Nearest-city ties go to the first row,
// so the order is part of the contract.
func (r *CityRepo) List(ctx context.Context) ([]domain.ReferenceCity, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT name, lat, lon
		FROM reference_cities
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query reference cities: %w", err)
	}

	cities, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ReferenceCity, error) {
		var c domain.ReferenceCity
		err := row.Scan(&c.Name, &c.Position.Lat, &c.Position.Lon)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan reference cities: %w", err)
	}
	return cities, nil
}

// UpsertAll writes cities in one transaction, keeping their slice order.
func (r *CityRepo) UpsertAll(ctx context.Context, cities []domain.ReferenceCity) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for i, c := range cities {
		batch.Queue(`
			INSERT INTO reference_cities (name, lat, lon, sort_order)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO UPDATE
			SET lat = EXCLUDED.lat, lon = EXCLUDED.lon, sort_order = EXCLUDED.sort_order
		`, c.Name, c.Position.Lat, c.Position.Lon, i)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert reference cities: %w", err)
	}
	return tx.Commit(ctx)
}
