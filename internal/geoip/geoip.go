// Package geoip resolves IP addresses to coarse geo data using an
// offline MaxMind database. Resolution is strictly best-effort: a
// missing database, an unparseable IP or a lookup failure all yield
// empty fields, never an error on the click path.
package geoip

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Resolver looks up geo data for an IP address.
type Resolver struct {
	reader *geoip2.Reader
}

// Open loads a MaxMind city database from path. An empty path returns
// a disabled resolver rather than an error, so geo lookup stays an
// optional feature.
func Open(path string) (*Resolver, error) {
	if path == "" {
		return &Resolver{}, nil
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database: %w", err)
	}

	return &Resolver{reader: reader}, nil
}

// Enabled reports whether a database is loaded.
func (r *Resolver) Enabled() bool {
	return r.reader != nil
}

// Lookup returns the ISO country code and city name for an IP, or
// empty strings when the resolver is disabled or the lookup fails.
func (r *Resolver) Lookup(ip string) (countryCode, city string) {
	if r.reader == nil {
		return "", ""
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", ""
	}

	record, err := r.reader.City(parsed)
	if err != nil {
		return "", ""
	}

	return record.Country.IsoCode, record.City.Names["en"]
}

// Close releases the underlying database reader.
func (r *Resolver) Close() error {
	if r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
