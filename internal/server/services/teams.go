package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rotamanager/internal/common"
	"github.com/dmitrijs2005/rotamanager/internal/dbx"
	"github.com/dmitrijs2005/rotamanager/internal/logging"
	"github.com/dmitrijs2005/rotamanager/internal/server/models"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/repomanager"
)

// TeamService manages teams and their memberships.
type TeamService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	guard       *Guard
	log         logging.Logger
}

func NewTeamService(db *sql.DB, m repomanager.RepositoryManager, guard *Guard, log logging.Logger) *TeamService {
	return &TeamService{db: db, repomanager: m, guard: guard, log: log}
}

// CreateTeam creates a team with its schedule and makes userID its manager.
// The three rows are written in one transaction.
func (s *TeamService) CreateTeam(ctx context.Context, userID, name string) (*models.TeamSummary, error) {
	name, err := cleanName("team name", name, 1)
	if err != nil {
		return nil, err
	}

	var summary models.TeamSummary
	err = withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		team, err := s.repomanager.Teams(tx).Create(ctx, &models.Team{Name: name})
		if err != nil {
			return err
		}
		schedule, err := s.repomanager.Schedules(tx).Create(ctx, team.ID)
		if err != nil {
			return err
		}
		member, err := s.repomanager.Members(tx).Create(ctx, &models.Member{
			UserID: userID,
			TeamID: team.ID,
			Role:   models.RoleManager,
		})
		if err != nil {
			return err
		}
		summary = models.TeamSummary{
			Team:       *team,
			ScheduleID: schedule.ID,
			MemberID:   member.ID,
			Role:       member.Role,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "team created", "team_id", summary.ID, "user_id", userID)
	return &summary, nil
}

// GetTeam returns the team as seen by one of its members.
func (s *TeamService) GetTeam(ctx context.Context, userID, teamID string) (*models.TeamSummary, error) {
	member, err := s.guard.RequireMembership(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}
	team, err := s.repomanager.Teams(s.db).GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	schedule, err := s.repomanager.Schedules(s.db).GetByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return &models.TeamSummary{
		Team:       *team,
		ScheduleID: schedule.ID,
		MemberID:   member.ID,
		Role:       member.Role,
	}, nil
}

// JoinTeam adds userID to teamID as an employee.
func (s *TeamService) JoinTeam(ctx context.Context, userID, teamID string) (*models.Member, error) {
	if err := requireID("team", teamID); err != nil {
		return nil, err
	}
	member, err := s.repomanager.Members(s.db).Create(ctx, &models.Member{
		UserID: userID,
		TeamID: teamID,
		Role:   models.RoleEmployee,
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: team", common.ErrorNotFound)
		}
		return nil, err
	}

	s.log.Info(ctx, "member joined", "team_id", teamID, "user_id", userID)
	return member, nil
}

// LeaveTeam removes the caller's membership. The only manager of a team may
// not leave: with other members present the team would be left without a
// manager, and alone it should delete the team instead.
func (s *TeamService) LeaveTeam(ctx context.Context, userID, teamID string) error {
	if err := requireID("team", teamID); err != nil {
		return err
	}
	return withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Teams(tx).LockByID(ctx, teamID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%w: team", common.ErrorNotFound)
			}
			return err
		}

		member, err := s.guard.membership(ctx, tx, userID, teamID)
		if err != nil {
			return err
		}

		members := s.repomanager.Members(tx)
		if member.IsManager() {
			total, managers, err := members.CountByTeam(ctx, teamID)
			if err != nil {
				return err
			}
			if managers == 1 {
				if total > 1 {
					return fmt.Errorf("%w: the only manager cannot leave the team", common.ErrConflict)
				}
				return fmt.Errorf("%w: the only member cannot leave, delete the team instead", common.ErrConflict)
			}
		}

		if err := members.Delete(ctx, member.ID); err != nil {
			return err
		}
		s.log.Info(ctx, "member left", "team_id", teamID, "user_id", userID)
		return nil
	})
}

// DeleteTeam removes the team with its schedule, shifts, assignments and
// memberships. Only a manager may delete a team.
func (s *TeamService) DeleteTeam(ctx context.Context, userID, teamID string) error {
	err := withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.guard.manager(ctx, tx, userID, teamID); err != nil {
			return err
		}
		return s.repomanager.Teams(tx).Delete(ctx, teamID)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "team deleted", "team_id", teamID, "user_id", userID)
	return nil
}

// ListTeams returns the teams userID belongs to.
func (s *TeamService) ListTeams(ctx context.Context, userID string) ([]models.TeamSummary, error) {
	return s.repomanager.Teams(s.db).ListByUser(ctx, userID)
}

// ListMembers returns the members of teamID. The caller must be a member.
func (s *TeamService) ListMembers(ctx context.Context, userID, teamID string) ([]models.MemberProfile, error) {
	if _, err := s.guard.RequireMembership(ctx, userID, teamID); err != nil {
		return nil, err
	}
	return s.repomanager.Members(s.db).ListByTeam(ctx, teamID)
}
