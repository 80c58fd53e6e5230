package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/snaplink/snaplink/internal/model"
)

// Common errors for link repository operations.
var (
	ErrLinkNotFound = errors.New("link not found")
	ErrCodeExists   = errors.New("short code already exists")
)

// CreateLink inserts a new link. The unique constraint on code is the
// authoritative uniqueness guarantee; application-level existence probes
// only reduce failed-constraint churn.
func (r *Repository) CreateLink(ctx context.Context, link *model.Link) error {
	query := `
		INSERT INTO links (id, owner_id, code, destination, active, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		link.ID,
		link.OwnerID,
		link.Code,
		link.Destination,
		link.Active,
		link.ExpiresAt,
		link.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrCodeExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// GetLinkByCode retrieves an active link by its short code.
// This is the hot path for redirects.
func (r *Repository) GetLinkByCode(ctx context.Context, code string) (*model.Link, error) {
	query := `
		SELECT id, owner_id, code, destination, active, expires_at, created_at
		FROM links
		WHERE code = $1 AND active = TRUE
	`

	link, err := scanLink(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by code: %w", err)
	}

	return link, nil
}

// GetLinkByID retrieves a link by its ID regardless of state.
func (r *Repository) GetLinkByID(ctx context.Context, id string) (*model.Link, error) {
	query := `
		SELECT id, owner_id, code, destination, active, expires_at, created_at
		FROM links
		WHERE id = $1
	`

	link, err := scanLink(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by ID: %w", err)
	}

	return link, nil
}

// ListLinksByOwner retrieves a page of an owner's links, newest first.
func (r *Repository) ListLinksByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*model.Link, error) {
	query := `
		SELECT id, owner_id, code, destination, active, expires_at, created_at
		FROM links
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var links []*model.Link
	for rows.Next() {
		link, err := scanLinkFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

// CountLinksByOwner returns the total number of an owner's links.
func (r *Repository) CountLinksByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM links WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return count, nil
}

// DeleteLink removes a link only when the owner matches. Ownership is
// enforced in the DELETE itself, not via read-then-check, so there is
// no race window between check and delete. Returns false when no
// matching row exists.
func (r *Repository) DeleteLink(ctx context.Context, id, ownerID string) (bool, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM links WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete link: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// DeactivateLink flips a link to inactive. Not exposed through the API
// in the current scope; used operationally.
func (r *Repository) DeactivateLink(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `UPDATE links SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate link: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// CodeExists checks if a short code is already registered.
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM links WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check code existence: %w", err)
	}
	return exists, nil
}

// scanLink scans a single row into a Link model.
func scanLink(row pgx.Row) (*model.Link, error) {
	var link model.Link
	err := row.Scan(
		&link.ID,
		&link.OwnerID,
		&link.Code,
		&link.Destination,
		&link.Active,
		&link.ExpiresAt,
		&link.CreatedAt,
	)
	return &link, err
}

// scanLinkFromRows scans a row from pgx.Rows into a Link model.
func scanLinkFromRows(rows pgx.Rows) (*model.Link, error) {
	var link model.Link
	err := rows.Scan(
		&link.ID,
		&link.OwnerID,
		&link.Code,
		&link.Destination,
		&link.Active,
		&link.ExpiresAt,
		&link.CreatedAt,
	)
	return &link, err
}

// isUniqueViolation checks if the error is a PostgreSQL unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
