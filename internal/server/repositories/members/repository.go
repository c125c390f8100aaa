// Package members declares the repository contract for team memberships.
package members

import (
	"context"

	"github.com/dmitrijs2005/rotamanager/internal/server/models"
)

type Repository interface {
	// Create inserts member. A second membership for the same (user, team)
	// yields common.ErrConflict; a missing team or user yields
	// common.ErrorNotFound.
	Create(ctx context.Context, member *models.Member) (*models.Member, error)
	GetByUserAndTeam(ctx context.Context, userID, teamID string) (*models.Member, error)
	GetByIDAndTeam(ctx context.Context, id, teamID string) (*models.Member, error)
	Delete(ctx context.Context, id string) error
	ListByTeam(ctx context.Context, teamID string) ([]models.MemberProfile, error)

	// CountByTeam returns the number of members and how many of them are
	// managers.
	CountByTeam(ctx context.Context, teamID string) (total int, managers int, err error)

	// SoleManagedTeams returns the teams where userID is the only manager
	// while other members remain.
	SoleManagedTeams(ctx context.Context, userID string) ([]string, error)
}
