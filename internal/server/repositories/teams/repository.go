// Package teams declares the repository contract for teams.
package teams

import (
	"context"

	"github.com/dmitrijs2005/rotamanager/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, team *models.Team) (*models.Team, error)
	GetByID(ctx context.Context, id string) (*models.Team, error)

	// LockByID reads the team and holds a row lock on it until the
	// surrounding transaction ends. Membership changes that must see a
	// stable member set lock the team first.
	LockByID(ctx context.Context, id string) (*models.Team, error)

	// Delete removes the team; schedule, shifts, assignments and members
	// go with it.
	Delete(ctx context.Context, id string) error

	// ListByUser returns the teams userID belongs to with the caller's
	// membership and each team's schedule id.
	ListByUser(ctx context.Context, userID string) ([]models.TeamSummary, error)
}
