// Package model defines domain entities for the application.
package model

import "time"

// Device types derived from User-Agent classification.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

// ClickEvent represents a single click/redirect event.
// Events are append-only: created once, never updated or deleted.
type ClickEvent struct {
	ID          string    `json:"id"`
	LinkID      string    `json:"link_id"`
	IP          string    `json:"ip"`
	UserAgent   string    `json:"user_agent"`
	CountryCode string    `json:"country_code,omitempty"`
	City        string    `json:"city,omitempty"`
	DeviceType  string    `json:"device_type"`
	Browser     string    `json:"browser"`
	OS          string    `json:"os"`
	ClickedAt   time.Time `json:"clicked_at"`
}

// ClickTotals holds the headline counters for one link.
type ClickTotals struct {
	TotalClicks int64      `json:"total_clicks"`
	UniqueIPs   int64      `json:"unique_ips"`
	FirstClick  *time.Time `json:"first_click,omitempty"`
	LastClick   *time.Time `json:"last_click,omitempty"`
}

// CountryCount represents clicks from a single country.
type CountryCount struct {
	CountryCode string `json:"country_code"`
	Count       int64  `json:"count"`
}

// DeviceCount represents clicks from a single device type.
type DeviceCount struct {
	DeviceType string `json:"device_type"`
	Count      int64  `json:"count"`
}

// BrowserCount represents clicks from a single browser family.
type BrowserCount struct {
	Browser string `json:"browser"`
	Count   int64  `json:"count"`
}

// TimeBucket represents clicks within one timeline bucket (UTC day).
type TimeBucket struct {
	Period string `json:"period"` // "2006-01-02"
	Count  int64  `json:"count"`
}

// LinkStats is the cached, derived view of one link's click history.
type LinkStats struct {
	LinkID      string         `json:"link_id"`
	Totals      ClickTotals    `json:"totals"`
	Countries   []CountryCount `json:"countries"`
	Devices     []DeviceCount  `json:"devices"`
	Browsers    []BrowserCount `json:"browsers"`
	Timeline    []TimeBucket   `json:"timeline"`
	GeneratedAt time.Time      `json:"generated_at"`
}
