package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountPostgres implements AccountRepository using the existing account tables
type AccountPostgres struct {
	pool *pgxpool.Pool
}

// NewAccountPostgres creates a new PostgreSQL account repository
func NewAccountPostgres(pool *pgxpool.Pool) *AccountPostgres {
	return &AccountPostgres{pool: pool}
}

// GetAccessToken retrieves the latest access token for an account
func (r *AccountPostgres) GetAccessToken(ctx context.Context, accountID string) (string, error) {
	query := `
		SELECT iat.access_token
		FROM instagram_access_tokens iat
		WHERE iat.instagram_account_id = $1
		ORDER BY iat.updated_at DESC
		LIMIT 1
	`

	var token string
	err := r.pool.QueryRow(ctx, query, accountID).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("no access token found for account %s", accountID)
	}
	if err != nil {
		return "", fmt.Errorf("querying access token: %w", err)
	}

	return token, nil
}

// GetInstagramUserID retrieves the Instagram user ID for an account
func (r *AccountPostgres) GetInstagramUserID(ctx context.Context, accountID string) (string, error) {
	query := `
		SELECT instagram_user_id
		FROM instagram_accounts
		WHERE id = $1 AND deleted_at IS NULL
	`

	var userID string
	err := r.pool.QueryRow(ctx, query, accountID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("account %s not found", accountID)
	}
	if err != nil {
		return "", fmt.Errorf("querying instagram user id: %w", err)
	}

	return userID, nil
}
