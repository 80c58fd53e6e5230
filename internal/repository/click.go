package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/snaplink/snaplink/internal/model"
)

// InsertClick appends a click event. Events are immutable historical
// facts; there is no update or delete path.
func (r *Repository) InsertClick(ctx context.Context, event *model.ClickEvent) error {
	query := `
		INSERT INTO clicks (id, link_id, ip, user_agent, country_code, city, device_type, browser, os, clicked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.LinkID,
		event.IP,
		event.UserAgent,
		nullableString(event.CountryCode),
		nullableString(event.City),
		event.DeviceType,
		event.Browser,
		event.OS,
		event.ClickedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert click: %w", err)
	}

	return nil
}

// ClickTotals returns the headline counters for a link.
func (r *Repository) ClickTotals(ctx context.Context, linkID string) (*model.ClickTotals, error) {
	query := `
		SELECT COUNT(*), COUNT(DISTINCT ip), MIN(clicked_at), MAX(clicked_at)
		FROM clicks
		WHERE link_id = $1
	`

	var totals model.ClickTotals
	var first, last *time.Time
	err := r.pool.QueryRow(ctx, query, linkID).Scan(&totals.TotalClicks, &totals.UniqueIPs, &first, &last)
	if err != nil {
		return nil, fmt.Errorf("failed to query click totals: %w", err)
	}
	totals.FirstClick = first
	totals.LastClick = last

	return &totals, nil
}

// CountryBreakdown returns the top countries by click count.
func (r *Repository) CountryBreakdown(ctx context.Context, linkID string, limit int) ([]model.CountryCount, error) {
	query := `
		SELECT country_code, COUNT(*) AS count
		FROM clicks
		WHERE link_id = $1 AND country_code IS NOT NULL
		GROUP BY country_code
		ORDER BY count DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, linkID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query country breakdown: %w", err)
	}
	defer rows.Close()

	var breakdown []model.CountryCount
	for rows.Next() {
		var c model.CountryCount
		if err := rows.Scan(&c.CountryCode, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan country count: %w", err)
		}
		breakdown = append(breakdown, c)
	}

	return breakdown, rows.Err()
}

// DeviceBreakdown returns click counts per device type.
func (r *Repository) DeviceBreakdown(ctx context.Context, linkID string) ([]model.DeviceCount, error) {
	query := `
		SELECT device_type, COUNT(*) AS count
		FROM clicks
		WHERE link_id = $1 AND device_type IS NOT NULL
		GROUP BY device_type
		ORDER BY count DESC
	`

	rows, err := r.pool.Query(ctx, query, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to query device breakdown: %w", err)
	}
	defer rows.Close()

	var breakdown []model.DeviceCount
	for rows.Next() {
		var d model.DeviceCount
		if err := rows.Scan(&d.DeviceType, &d.Count); err != nil {
			return nil, fmt.Errorf("failed to scan device count: %w", err)
		}
		breakdown = append(breakdown, d)
	}

	return breakdown, rows.Err()
}

// BrowserBreakdown returns the top browsers by click count.
func (r *Repository) BrowserBreakdown(ctx context.Context, linkID string, limit int) ([]model.BrowserCount, error) {
	query := `
		SELECT browser, COUNT(*) AS count
		FROM clicks
		WHERE link_id = $1 AND browser IS NOT NULL
		GROUP BY browser
		ORDER BY count DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, linkID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query browser breakdown: %w", err)
	}
	defer rows.Close()

	var breakdown []model.BrowserCount
	for rows.Next() {
		var b model.BrowserCount
		if err := rows.Scan(&b.Browser, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan browser count: %w", err)
		}
		breakdown = append(breakdown, b)
	}

	return breakdown, rows.Err()
}

// DailyTimeline returns per-day click counts for the most recent days
// that have any clicks, newest first.
func (r *Repository) DailyTimeline(ctx context.Context, linkID string, limit int) ([]model.TimeBucket, error) {
	query := `
		SELECT to_char(clicked_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS period, COUNT(*) AS count
		FROM clicks
		WHERE link_id = $1
		GROUP BY period
		ORDER BY period DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, linkID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query timeline: %w", err)
	}
	defer rows.Close()

	var timeline []model.TimeBucket
	for rows.Next() {
		var b model.TimeBucket
		if err := rows.Scan(&b.Period, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan time bucket: %w", err)
		}
		timeline = append(timeline, b)
	}

	return timeline, rows.Err()
}

// nullableString returns nil for empty strings so optional columns
// store NULL instead of "".
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
