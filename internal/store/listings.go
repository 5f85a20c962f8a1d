package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"yardwatch/internal/domain"
)

// Listing is a stored row. FirstSeen is UTC "2006-01-02 15:04:05" so
// sqlite datetime() comparisons work on it directly.
type Listing struct {
	ID          int64  `json:"id"`
	Key         string `json:"key"`
	Source      string `json:"source"`
	Title       string `json:"title"`
	Year        int    `json:"year"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Location    string `json:"location"`
	StockNumber string `json:"stockNumber"`
	URL         string `json:"url"`
	ArrivalDate string `json:"arrivalDate"`
	FirstSeen   string `json:"firstSeen"`
}

const timeLayout = "2006-01-02 15:04:05"

// Record inserts the listing if its identity key is absent. added=false
// means a duplicate, which is a successful no-op; err is a real storage
// failure only.
func (d *DB) Record(ctx context.Context, l domain.Listing, now time.Time) (added bool, err error) {
	// relies on the unique index on listing_key
	_, err = d.Pool.ExecContext(ctx, `
INSERT OR IGNORE INTO listings (listing_key, source, title, year, make, model, location, stock_number, url, arrival_date, first_seen)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		l.IdentityKey(), l.Source, l.Title, l.Year, l.Make, l.Model, l.Location,
		l.ExternalID, l.URL, l.ArrivalDate, now.UTC().Format(timeLayout),
	)
	if err != nil {
		return false, fmt.Errorf("insert listing: %w", err)
	}

	// changes() runs on the insert's connection; the pool is capped at one.
	var changes int
	if err := d.Pool.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); err != nil {
		return false, fmt.Errorf("insert listing: %w", err)
	}
	return changes > 0, nil
}

// Seen reports whether a listing with this identity key was recorded before.
func (d *DB) Seen(ctx context.Context, key string) (bool, error) {
	var one int
	err := d.Pool.QueryRowContext(ctx,
		`SELECT 1 FROM listings WHERE listing_key = ? LIMIT 1;`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seen lookup: %w", err)
	}
	return true, nil
}

// Count returns the number of tracked listings.
func (d *DB) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := d.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return n, nil
}

// Recent returns the newest rows, most recently seen first.
func (d *DB) Recent(ctx context.Context, limit int) ([]Listing, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, listing_key, source, title, year, make, model, location, stock_number, url, arrival_date, first_seen
FROM listings
ORDER BY first_seen DESC, id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		var l Listing
		if err := rows.Scan(
			&l.ID, &l.Key, &l.Source, &l.Title, &l.Year, &l.Make, &l.Model,
			&l.Location, &l.StockNumber, &l.URL, &l.ArrivalDate, &l.FirstSeen,
		); err != nil {
			return nil, fmt.Errorf("list listings: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return out, nil
}

// PruneOlderThan deletes rows first seen more than days ago. Never called
// from the polling loop; the -prune flag is its only caller.
func (d *DB) PruneOlderThan(ctx context.Context, days int) (int64, error) {
	res, err := d.Pool.ExecContext(ctx, `
DELETE FROM listings
WHERE first_seen < datetime('now', ?);`, fmt.Sprintf("-%d days", days))
	if err != nil {
		return 0, fmt.Errorf("prune listings: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
