// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"net/url"
	"regexp"
	"time"

	"github.com/snaplink/snaplink/internal/model"
)

var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

// CreateLinkRequest represents the request body for creating a link.
type CreateLinkRequest struct {
	URL         string `json:"url"`
	CustomAlias string `json:"custom_alias,omitempty"`
	TTL         int64  `json:"ttl,omitempty"`
}

// Validate checks field constraints and returns per-field messages.
// An empty map means the request is valid. ttlMin and ttlMax bound the
// accepted expiry in seconds; a TTL of zero means no expiry and is
// always accepted.
func (r *CreateLinkRequest) Validate(ttlMin, ttlMax int64) map[string]string {
	problems := make(map[string]string)

	if r.URL == "" {
		problems["url"] = "url is required"
	} else if u, err := url.Parse(r.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems["url"] = "url must be an absolute http or https URL"
	}

	if r.CustomAlias != "" && !aliasPattern.MatchString(r.CustomAlias) {
		problems["custom_alias"] = "custom_alias must be 3-20 characters of letters, digits, hyphen or underscore"
	}

	if r.TTL != 0 && (r.TTL < ttlMin || r.TTL > ttlMax) {
		problems["ttl"] = "ttl out of accepted range"
	}

	return problems
}

// LinkResponse represents a link in API responses.
type LinkResponse struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	ShortURL    string     `json:"short_url"`
	Destination string     `json:"destination"`
	Active      bool       `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LinkListResponse represents a paginated list of links.
type LinkListResponse struct {
	Data       []LinkResponse `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// Pagination provides page-based pagination info.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ToLinkResponse converts a Link model to LinkResponse DTO.
func ToLinkResponse(link *model.Link, baseURL string) *LinkResponse {
	return &LinkResponse{
		ID:          link.ID,
		Code:        link.Code,
		ShortURL:    baseURL + "/" + link.Code,
		Destination: link.Destination,
		Active:      link.Active,
		ExpiresAt:   link.ExpiresAt,
		CreatedAt:   link.CreatedAt,
	}
}

// ToLinkListResponse converts a slice of Link models to LinkListResponse.
func ToLinkListResponse(links []*model.Link, baseURL string, page, pageSize int, total int64) *LinkListResponse {
	responses := make([]LinkResponse, len(links))
	for i, link := range links {
		responses[i] = *ToLinkResponse(link, baseURL)
	}
	return &LinkListResponse{
		Data: responses,
		Pagination: Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}
}
