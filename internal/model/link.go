// Package model defines domain entities for the application.
package model

import "time"

// Link represents a shortened URL entity.
// OwnerID is nil for anonymously created links; those are never
// owner-scoped in queries.
type Link struct {
	ID          string     `json:"id"`
	OwnerID     *string    `json:"owner_id,omitempty"`
	Code        string     `json:"code"`
	Destination string     `json:"destination"`
	Active      bool       `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsExpired returns true if the link has passed its expiry time.
// Links without an expiry never expire.
func (l *Link) IsExpired() bool {
	return l.ExpiresAt != nil && !time.Now().Before(*l.ExpiresAt)
}

// IsResolvable returns true if the link can serve a redirect.
func (l *Link) IsResolvable() bool {
	return l.Active && !l.IsExpired()
}
