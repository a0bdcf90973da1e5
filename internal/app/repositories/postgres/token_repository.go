package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/schooladmin/internal/app/models"
)

var tokenColumns = []string{"id", "token", "user_id", "expiry_date", "is_revoked", "created_at"}

// TokenRepository handles the refresh_tokens table
type TokenRepository struct {
	db querier
}

func scanToken(row scanner) (*models.RefreshToken, error) {
	t := &models.RefreshToken{}
	if err := row.Scan(&t.ID, &t.Token, &t.UserID, &t.ExpiresAt, &t.IsRevoked, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

// Create stores a new refresh token
func (r *TokenRepository) Create(ctx context.Context, t *models.RefreshToken) error {
	sql, args, err := psql.Insert("refresh_tokens").
		Columns("token", "user_id", "expiry_date", "is_revoked").
		Values(t.Token, t.UserID, t.ExpiresAt, false).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create token query: %w", err)
	}
	return translate(r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.CreatedAt))
}

// GetByToken retrieves a token by its value, whatever its state
func (r *TokenRepository) GetByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	return queryOne(ctx, r.db, psql.Select(tokenColumns...).From("refresh_tokens").Where(squirrel.Eq{"token": token}), scanToken)
}

// Revoke marks a live token revoked
func (r *TokenRepository) Revoke(ctx context.Context, token string) (bool, error) {
	sql, args, err := psql.Update("refresh_tokens").
		Set("is_revoked", true).
		Where(squirrel.Eq{"token": token, "is_revoked": false}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build revoke token query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, translate(err)
	}
	return tag.RowsAffected() == 1, nil
}

// RevokeAllForUser revokes every live token of a user
func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	sql, args, err := psql.Update("refresh_tokens").
		Set("is_revoked", true).
		Where(squirrel.Eq{"user_id": userID, "is_revoked": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build revoke user tokens query: %w", err)
	}
	_, err = r.db.Exec(ctx, sql, args...)
	return translate(err)
}

// DeleteStale removes expired tokens and old revoked ones
func (r *TokenRepository) DeleteStale(ctx context.Context, now, revokedBefore time.Time) (int64, error) {
	sql, args, err := psql.Delete("refresh_tokens").
		Where(squirrel.Or{
			squirrel.LtOrEq{"expiry_date": now},
			squirrel.And{
				squirrel.Eq{"is_revoked": true},
				squirrel.Lt{"created_at": revokedBefore},
			},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build cleanup tokens query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, translate(err)
	}
	return tag.RowsAffected(), nil
}
