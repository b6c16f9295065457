package geo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/circleworks/beacon/internal/types"
	"github.com/circleworks/beacon/migrations"
)

// Cache is a persistent geocode cache backed by SQLite. The geocoding
// provider's usage policy expects clients to cache results, and city
// coordinates are stable, so entries never expire; fetched_at is kept
// for a future TTL.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (creating if necessary) the cache database at path
// and applies pending migrations.
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Cache{db: db}, nil
}

// runMigrations applies the embedded goose migrations.
func runMigrations(db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	return goose.Up(db, ".")
}

// Get returns the cached place for a normalized city key.
func (c *Cache) Get(ctx context.Context, city string) (types.Place, bool, error) {
	var place types.Place
	err := c.db.QueryRowContext(ctx,
		"SELECT display_name, lat, lng FROM geocode_cache WHERE city = ?", city,
	).Scan(&place.DisplayName, &place.Lat, &place.Lng)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Place{}, false, nil
	}
	if err != nil {
		return types.Place{}, false, err
	}
	return place, true, nil
}

// Put stores or replaces the cached place for a normalized city key.
func (c *Cache) Put(ctx context.Context, city string, place types.Place) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO geocode_cache (city, display_name, lat, lng, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(city) DO UPDATE SET
			display_name = excluded.display_name,
			lat = excluded.lat,
			lng = excluded.lng,
			fetched_at = excluded.fetched_at
	`, city, place.DisplayName, place.Lat, place.Lng, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Stats returns the number of cached places.
func (c *Cache) Stats(ctx context.Context) (int64, error) {
	var count int64
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM geocode_cache").Scan(&count)
	return count, err
}

// Clear removes all cached places.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM geocode_cache")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}
