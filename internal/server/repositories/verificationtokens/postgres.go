// Package verificationtokens provides the PostgreSQL-backed store for
// single-use verification tokens.
package verificationtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rotamanager/internal/common"
	"github.com/dmitrijs2005/rotamanager/internal/dbx"
	"github.com/dmitrijs2005/rotamanager/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, token *models.VerificationToken) error {
	query := `
		INSERT INTO verification_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, token.UserID, token.Token, token.ExpiresAt).Scan(&token.ID); err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: token collision", common.ErrConflict)
		}
		if dbx.IsForeignKeyViolation(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Consume removes the token in the same statement that reads it, so two
// concurrent verifications cannot both succeed.
func (r *PostgresRepository) Consume(ctx context.Context, token string) (*models.VerificationToken, error) {
	query := `
		DELETE FROM verification_tokens
		WHERE token = $1
		RETURNING id, user_id, expires_at
	`
	vt := &models.VerificationToken{Token: token}
	if err := r.db.QueryRowContext(ctx, query, token).Scan(&vt.ID, &vt.UserID, &vt.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return vt, nil
}
