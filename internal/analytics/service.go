// Package analytics records click events and serves aggregated link
// statistics. Recording never sits on the redirect path: handlers hand
// events to the Dispatcher and move on.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/snaplink/snaplink/internal/model"
	"github.com/snaplink/snaplink/internal/useragent"
)

// ClickStore is the persistence surface the analytics service needs.
type ClickStore interface {
	InsertClick(ctx context.Context, event *model.ClickEvent) error
	ClickTotals(ctx context.Context, linkID string) (*model.ClickTotals, error)
	CountryBreakdown(ctx context.Context, linkID string, limit int) ([]model.CountryCount, error)
	DeviceBreakdown(ctx context.Context, linkID string) ([]model.DeviceCount, error)
	BrowserBreakdown(ctx context.Context, linkID string, limit int) ([]model.BrowserCount, error)
	DailyTimeline(ctx context.Context, linkID string, limit int) ([]model.TimeBucket, error)
}

// StatsCache is the fail-soft cache surface for computed stats. All
// methods degrade to misses when the backing store is down.
type StatsCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) bool
	Delete(ctx context.Context, key string) bool
}

// GeoResolver maps an IP address to a location, best effort.
type GeoResolver interface {
	Lookup(ip string) (countryCode, city string)
}

// Breakdown sizes for computed stats.
const (
	topCountries    = 10
	topBrowsers     = 5
	timelineBuckets = 30
)

// ClientContext carries the request attributes needed to attribute a
// click, captured at the HTTP boundary before the request completes.
type ClientContext struct {
	RemoteAddr   string
	ForwardedFor string
	UserAgent    string
}

// Service records clicks and computes link statistics.
type Service struct {
	store    ClickStore
	cache    StatsCache
	geo      GeoResolver
	logger   *slog.Logger
	cacheTTL time.Duration
}

// NewService creates an analytics Service. geo may be nil when no
// GeoIP database is configured.
func NewService(store ClickStore, cache StatsCache, geo GeoResolver, logger *slog.Logger, cacheTTL time.Duration) *Service {
	return &Service{
		store:    store,
		cache:    cache,
		geo:      geo,
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

func statsKey(linkID string) string {
	return "stats:link:" + linkID
}

// Record attributes and persists one click event, then invalidates the
// link's cached stats so the next read recomputes.
func (s *Service) Record(ctx context.Context, linkID string, client ClientContext) error {
	ip := clientIP(client)
	classification := useragent.Parse(client.UserAgent)

	var country, city string
	if s.geo != nil && ip != "" {
		country, city = s.geo.Lookup(ip)
	}

	event := &model.ClickEvent{
		ID:          uuid.NewString(),
		LinkID:      linkID,
		IP:          ip,
		UserAgent:   client.UserAgent,
		CountryCode: country,
		City:        city,
		DeviceType:  classification.Device,
		Browser:     classification.Browser,
		OS:          classification.OS,
		ClickedAt:   time.Now().UTC(),
	}

	if err := s.store.InsertClick(ctx, event); err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	s.cache.Delete(ctx, statsKey(linkID))
	return nil
}

// Stats returns aggregated statistics for a link, served from cache
// when a fresh copy exists. A cache outage only costs latency; the
// aggregates always come from the same queries.
func (s *Service) Stats(ctx context.Context, linkID string) (*model.LinkStats, error) {
	key := statsKey(linkID)
	if cached, ok := s.cache.Get(ctx, key); ok {
		var stats model.LinkStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
		// Unreadable cache entry; recompute and overwrite.
		s.logger.Warn("discarding corrupt stats cache entry", "link_id", linkID)
	}

	stats, err := s.compute(ctx, linkID)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(stats); err == nil {
		s.cache.Set(ctx, key, string(encoded), s.cacheTTL)
	}

	return stats, nil
}

func (s *Service) compute(ctx context.Context, linkID string) (*model.LinkStats, error) {
	totals, err := s.store.ClickTotals(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute totals: %w", err)
	}
	countries, err := s.store.CountryBreakdown(ctx, linkID, topCountries)
	if err != nil {
		return nil, fmt.Errorf("failed to compute country breakdown: %w", err)
	}
	devices, err := s.store.DeviceBreakdown(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute device breakdown: %w", err)
	}
	browsers, err := s.store.BrowserBreakdown(ctx, linkID, topBrowsers)
	if err != nil {
		return nil, fmt.Errorf("failed to compute browser breakdown: %w", err)
	}
	timeline, err := s.store.DailyTimeline(ctx, linkID, timelineBuckets)
	if err != nil {
		return nil, fmt.Errorf("failed to compute timeline: %w", err)
	}

	return &model.LinkStats{
		LinkID:      linkID,
		Totals:      *totals,
		Countries:   countries,
		Devices:     devices,
		Browsers:    browsers,
		Timeline:    timeline,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// clientIP picks the client address: the first X-Forwarded-For entry
// when present, otherwise the peer address without its port.
func clientIP(client ClientContext) string {
	if client.ForwardedFor != "" {
		first := client.ForwardedFor
		if idx := strings.IndexByte(first, ','); idx >= 0 {
			first = first[:idx]
		}
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(client.RemoteAddr)
	if err != nil {
		return client.RemoteAddr
	}
	return host
}
