// Package store provides a SQLite-backed cache of computed monthly summaries.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/gbdash/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed summary caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a workbook.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// Key identifies one cached computation: a workbook, a year and the metric
// options the summaries were computed with.
type Key struct {
	Path    string
	Year    int
	Options string
}

// Tracked returns the file info recorded for k, if any.
func (c *Cache) Tracked(k Key) (FileInfo, bool, error) {
	var fi FileInfo
	err := c.db.QueryRow(`SELECT mtime_ns, size_bytes FROM file_tracker
		WHERE file_path = ? AND year = ? AND options_key = ?`, k.Path, k.Year, k.Options).
		Scan(&fi.MtimeNs, &fi.SizeBytes)
	if err == sql.ErrNoRows {
		return FileInfo{}, false, nil
	}
	if err != nil {
		return FileInfo{}, false, err
	}
	return fi, true, nil
}

// SaveSummaries replaces the cached summaries for k and records fi.
func (c *Cache) SaveSummaries(k Key, fi FileInfo, summaries []model.MonthlySummary) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`DELETE FROM monthly_summaries
		WHERE workbook_path = ? AND year = ? AND options_key = ?`, k.Path, k.Year, k.Options)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, s := range summaries {
		_, err = tx.Exec(`INSERT INTO monthly_summaries
			(workbook_path, year, options_key, month, event_count, confirmed_count,
			 average_price, revenue, variable_cost_total, fixed_costs, pizza_addons,
			 pizza_margin, net_profit, arpu, booking_ratio, retro_adoption, new_reviews, computed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			k.Path, k.Year, k.Options, int(s.Month.Month), s.EventCount, s.ConfirmedCount,
			nullable(s.AveragePrice), s.Revenue, s.VariableCostTotal, s.FixedCosts, s.PizzaAddons,
			s.PizzaMargin, s.NetProfit, nullable(s.ARPU), nullable(s.BookingRatio),
			nullable(s.RetroAdoption), s.NewReviews, now,
		)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, year, options_key, mtime_ns, size_bytes)
		VALUES (?, ?, ?, ?, ?)`, k.Path, k.Year, k.Options, fi.MtimeNs, fi.SizeBytes)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// LoadSummaries reads the cached summaries for k in month order.
func (c *Cache) LoadSummaries(k Key) ([]model.MonthlySummary, error) {
	rows, err := c.db.Query(`SELECT
		month, event_count, confirmed_count, average_price, revenue, variable_cost_total,
		fixed_costs, pizza_addons, pizza_margin, net_profit, arpu, booking_ratio,
		retro_adoption, new_reviews
		FROM monthly_summaries
		WHERE workbook_path = ? AND year = ? AND options_key = ?
		ORDER BY month`, k.Path, k.Year, k.Options)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.MonthlySummary
	for rows.Next() {
		var s model.MonthlySummary
		var month int
		var avgPrice, arpu, booking, retro sql.NullFloat64
		err := rows.Scan(&month, &s.EventCount, &s.ConfirmedCount, &avgPrice, &s.Revenue,
			&s.VariableCostTotal, &s.FixedCosts, &s.PizzaAddons, &s.PizzaMargin, &s.NetProfit,
			&arpu, &booking, &retro, &s.NewReviews)
		if err != nil {
			return nil, err
		}
		s.Month = model.Month{Year: k.Year, Month: time.Month(month)}
		s.AveragePrice = fromNull(avgPrice)
		s.ARPU = fromNull(arpu)
		s.BookingRatio = fromNull(booking)
		s.RetroAdoption = fromNull(retro)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Invalidate drops every cached computation for a workbook.
func (c *Cache) Invalidate(path string) error {
	if _, err := c.db.Exec("DELETE FROM monthly_summaries WHERE workbook_path = ?", path); err != nil {
		return err
	}
	_, err := c.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", path)
	return err
}

// SummaryCount returns the number of cached monthly rows.
func (c *Cache) SummaryCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM monthly_summaries").Scan(&count)
	return count, err
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
