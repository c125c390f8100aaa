// Package verificationtokens declares the repository contract for pending
// email verification tokens.
package verificationtokens

import (
	"context"

	"github.com/dmitrijs2005/rotamanager/internal/server/models"
)

// Repository stores at most one token per user.
type Repository interface {
	// Upsert stores token for its user, replacing any previous token so the
	// old value stops verifying.
	Upsert(ctx context.Context, token *models.VerificationToken) error

	// Consume deletes the row holding token and returns it. Expiry is left
	// to the caller. A missing token yields common.ErrorNotFound.
	Consume(ctx context.Context, token string) (*models.VerificationToken, error)
}
