// Package service contains the business logic layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/snaplink/snaplink/internal/metrics"
	"github.com/snaplink/snaplink/internal/model"
	"github.com/snaplink/snaplink/internal/repository"
	"github.com/snaplink/snaplink/internal/shortcode"
)

// Common errors for link operations.
var (
	ErrLinkNotFound       = errors.New("link not found")
	ErrInvalidDestination = errors.New("destination must be an absolute http or https URL")
	ErrInvalidAlias       = errors.New("alias must be 3-20 characters of letters, digits, hyphen or underscore")
	ErrAliasTaken         = errors.New("alias already taken")
)

var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

// codeAttempts is how many generated codes are probed at the base
// length before falling back to one unchecked longer code. The unique
// constraint on the code column remains the real guarantee either way.
const codeAttempts = 3

// LinkStore is the persistence surface LinkService needs.
type LinkStore interface {
	CreateLink(ctx context.Context, link *model.Link) error
	GetLinkByCode(ctx context.Context, code string) (*model.Link, error)
	GetLinkByID(ctx context.Context, id string) (*model.Link, error)
	ListLinksByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*model.Link, error)
	CountLinksByOwner(ctx context.Context, ownerID string) (int64, error)
	DeleteLink(ctx context.Context, id, ownerID string) (bool, error)
	DeactivateLink(ctx context.Context, id string) error
	CodeExists(ctx context.Context, code string) (bool, error)
}

// LinkService manages short link lifecycle.
type LinkService struct {
	store      LinkStore
	codeLength int
	rec        metrics.Recorder
}

// NewLinkService creates a LinkService. codeLength is the base length
// for generated short codes; a nil recorder discards metrics.
func NewLinkService(store LinkStore, codeLength int, rec metrics.Recorder) *LinkService {
	if codeLength <= 0 {
		codeLength = shortcode.DefaultLength
	}
	if rec == nil {
		rec = metrics.NewNoop()
	}
	return &LinkService{store: store, codeLength: codeLength, rec: rec}
}

// CreateParams are the inputs for creating a link.
type CreateParams struct {
	OwnerID     *string
	Destination string
	Alias       string // optional; generated when empty
	TTLSeconds  int64  // 0 means no expiry
}

// Create registers a new short link. When Alias is set it is validated
// and claimed as-is; otherwise a random code is generated. Either way
// the insert can still lose to a concurrent claim, which surfaces as
// ErrAliasTaken.
func (s *LinkService) Create(ctx context.Context, params CreateParams) (*model.Link, error) {
	if !isValidDestination(params.Destination) {
		return nil, ErrInvalidDestination
	}

	var code string
	if params.Alias != "" {
		if !aliasPattern.MatchString(params.Alias) {
			return nil, ErrInvalidAlias
		}
		taken, err := s.store.CodeExists(ctx, params.Alias)
		if err != nil {
			return nil, fmt.Errorf("failed to probe alias: %w", err)
		}
		if taken {
			return nil, ErrAliasTaken
		}
		code = params.Alias
	} else {
		generated, err := s.pickCode(ctx)
		if err != nil {
			return nil, err
		}
		code = generated
	}

	now := time.Now().UTC()
	link := &model.Link{
		ID:          ulid.Make().String(),
		OwnerID:     params.OwnerID,
		Code:        code,
		Destination: params.Destination,
		Active:      true,
		CreatedAt:   now,
	}
	if params.TTLSeconds > 0 {
		expires := now.Add(time.Duration(params.TTLSeconds) * time.Second)
		link.ExpiresAt = &expires
	}

	if err := s.store.CreateLink(ctx, link); err != nil {
		// A constraint loss only means "taken" when the caller chose the
		// code. On a generated code it is an internal collision; the
		// client did nothing wrong and gets no 409 to act on.
		if params.Alias != "" && errors.Is(err, repository.ErrCodeExists) {
			return nil, ErrAliasTaken
		}
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	s.rec.IncLinkCreated()
	return link, nil
}

// pickCode generates candidate codes at the base length, probing each
// for a collision. After the attempts are exhausted it returns a single
// unchecked code one character longer; the unique constraint catches
// the (vanishingly unlikely) collision on insert.
func (s *LinkService) pickCode(ctx context.Context) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		candidate := shortcode.Generate(s.codeLength)
		taken, err := s.store.CodeExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to probe code: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return shortcode.Generate(s.codeLength + 1), nil
}

// Resolve returns the destination link for a short code. Inactive,
// expired, and absent links are all reported as ErrLinkNotFound; a
// caller cannot distinguish the three cases.
func (s *LinkService) Resolve(ctx context.Context, code string) (*model.Link, error) {
	link, err := s.store.GetLinkByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to resolve code: %w", err)
	}
	if !link.IsResolvable() {
		return nil, ErrLinkNotFound
	}
	s.rec.IncRedirect()
	return link, nil
}

// ListForOwner returns a page of an owner's links plus the total count.
// page and pageSize are 1-based; out-of-range values are clamped.
func (s *LinkService) ListForOwner(ctx context.Context, ownerID string, page, pageSize int) ([]*model.Link, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	offset := (page - 1) * pageSize
	links, err := s.store.ListLinksByOwner(ctx, ownerID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list links: %w", err)
	}
	total, err := s.store.CountLinksByOwner(ctx, ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count links: %w", err)
	}
	return links, total, nil
}

// GetForOwner fetches a link only if it belongs to the owner. An
// existing link owned by someone else looks identical to a missing one.
func (s *LinkService) GetForOwner(ctx context.Context, ownerID, linkID string) (*model.Link, error) {
	link, err := s.store.GetLinkByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	if link.OwnerID == nil || *link.OwnerID != ownerID {
		return nil, ErrLinkNotFound
	}
	return link, nil
}

// Delete removes an owner's link. Returns false when no link matched,
// whether it never existed or belongs to someone else; repeating the
// call is harmless.
func (s *LinkService) Delete(ctx context.Context, ownerID, linkID string) (bool, error) {
	deleted, err := s.store.DeleteLink(ctx, linkID, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete link: %w", err)
	}
	if deleted {
		s.rec.IncLinkDeleted()
	}
	return deleted, nil
}

// Deactivate marks a link inactive without removing it. Subsequent
// resolves treat it like a missing link.
func (s *LinkService) Deactivate(ctx context.Context, id string) error {
	if err := s.store.DeactivateLink(ctx, id); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("failed to deactivate link: %w", err)
	}
	return nil
}

// isValidDestination accepts only absolute http(s) URLs with a host.
func isValidDestination(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}
