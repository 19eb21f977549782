package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/blogback/blogback/internal/model"
)

// Common errors for access token repository operations.
var (
	ErrTokenNotFound = errors.New("access token not found")
)

// CreateToken inserts a new personal access token.
func (r *Repository) CreateToken(ctx context.Context, token *model.AccessToken) error {
	return insertToken(ctx, r.pool, token)
}

func insertToken(ctx context.Context, db execer, token *model.AccessToken) error {
	query := `
		INSERT INTO personal_access_tokens (id, user_id, name, token_hash, token_prefix, abilities, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := db.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.Name,
		token.TokenHash,
		token.TokenPrefix,
		pq.Array(token.Abilities),
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create access token: %w", err)
	}

	return nil
}

// GetTokenByHash looks up a token by the sha256 hash of its plaintext.
func (r *Repository) GetTokenByHash(ctx context.Context, hash string) (*model.AccessToken, error) {
	query := `
		SELECT id, user_id, name, token_hash, token_prefix, abilities, last_used_at, created_at
		FROM personal_access_tokens
		WHERE token_hash = $1
	`

	var token model.AccessToken
	var abilities []string

	err := r.pool.QueryRow(ctx, query, hash).Scan(
		&token.ID,
		&token.UserID,
		&token.Name,
		&token.TokenHash,
		&token.TokenPrefix,
		pq.Array(&abilities),
		&token.LastUsedAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	token.Abilities = abilities
	return &token, nil
}

// TouchToken updates last_used_at.
// Called on every successful authentication.
func (r *Repository) TouchToken(ctx context.Context, id string) error {
	query := `
		UPDATE personal_access_tokens
		SET last_used_at = $2
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to touch access token: %w", err)
	}
	return nil
}

// DeleteTokensByUserID revokes every token the user holds.
// Returns the number of tokens removed.
func (r *Repository) DeleteTokensByUserID(ctx context.Context, userID string) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM personal_access_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete access tokens: %w", err)
	}
	return result.RowsAffected(), nil
}
