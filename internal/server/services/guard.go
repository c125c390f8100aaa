package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rotamanager/internal/common"
	"github.com/dmitrijs2005/rotamanager/internal/dbx"
	"github.com/dmitrijs2005/rotamanager/internal/server/models"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/repomanager"
)

// Guard decides whether a user may act on a team.
//
// A user with no membership in the team gets common.ErrorNotFound, the same
// answer as for a team that does not exist. A member without the MANAGER
// role gets common.ErrAccessDenied for manager-only actions.
type Guard struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewGuard(db *sql.DB, m repomanager.RepositoryManager) *Guard {
	return &Guard{db: db, repomanager: m}
}

// RequireMembership returns the caller's membership in teamID.
func (g *Guard) RequireMembership(ctx context.Context, userID, teamID string) (*models.Member, error) {
	return g.membership(ctx, g.db, userID, teamID)
}

// RequireManager returns the caller's membership in teamID if it has the
// MANAGER role.
func (g *Guard) RequireManager(ctx context.Context, userID, teamID string) (*models.Member, error) {
	return g.manager(ctx, g.db, userID, teamID)
}

// RequireManagerByShift resolves the team owning shiftID and applies
// RequireManager to it. It serves callers that address a shift without its
// team; the REST routes carry the team id and use RequireManager.
func (g *Guard) RequireManagerByShift(ctx context.Context, userID, shiftID string) (*models.Member, error) {
	if err := requireID("shift", shiftID); err != nil {
		return nil, err
	}
	teamID, err := g.repomanager.Shifts(g.db).TeamIDOf(ctx, shiftID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: shift", common.ErrorNotFound)
		}
		return nil, err
	}
	return g.manager(ctx, g.db, userID, teamID)
}

// RequireManagerBySchedule resolves the team owning scheduleID and applies
// RequireManager to it, for callers that address a schedule without its team.
func (g *Guard) RequireManagerBySchedule(ctx context.Context, userID, scheduleID string) (*models.Member, error) {
	if err := requireID("schedule", scheduleID); err != nil {
		return nil, err
	}
	schedule, err := g.repomanager.Schedules(g.db).GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: schedule", common.ErrorNotFound)
		}
		return nil, err
	}
	return g.manager(ctx, g.db, userID, schedule.TeamID)
}

func (g *Guard) membership(ctx context.Context, db dbx.DBTX, userID, teamID string) (*models.Member, error) {
	if err := requireID("team", teamID); err != nil {
		return nil, err
	}
	m, err := g.repomanager.Members(db).GetByUserAndTeam(ctx, userID, teamID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: team", common.ErrorNotFound)
		}
		return nil, err
	}
	return m, nil
}

func (g *Guard) manager(ctx context.Context, db dbx.DBTX, userID, teamID string) (*models.Member, error) {
	m, err := g.membership(ctx, db, userID, teamID)
	if err != nil {
		return nil, err
	}
	if !m.IsManager() {
		return nil, fmt.Errorf("%w: manager role required", common.ErrAccessDenied)
	}
	return m, nil
}
