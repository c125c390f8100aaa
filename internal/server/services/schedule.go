package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rotamanager/internal/common"
	"github.com/dmitrijs2005/rotamanager/internal/dbx"
	"github.com/dmitrijs2005/rotamanager/internal/logging"
	"github.com/dmitrijs2005/rotamanager/internal/server/models"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rotamanager/internal/timex"
)

// ShiftInput describes a shift to create. Times are offsets from midnight.
type ShiftInput struct {
	Name      string
	Date      time.Time
	StartTime time.Duration
	EndTime   time.Duration
}

// ScheduleService manages the shifts of a team's schedule and who works
// them. Every shift and assignment is resolved through the team named by
// the caller, so ids from another team read as absent.
type ScheduleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	guard       *Guard
	log         logging.Logger
	now         func() time.Time
}

func NewScheduleService(db *sql.DB, m repomanager.RepositoryManager, guard *Guard, log logging.Logger) *ScheduleService {
	return &ScheduleService{db: db, repomanager: m, guard: guard, log: log, now: time.Now}
}

// CreateShift adds a shift to the team's schedule. The date must not be in
// the past and the shift must end after it starts.
func (s *ScheduleService) CreateShift(ctx context.Context, userID, teamID string, in ShiftInput) (*models.Shift, error) {
	name, err := cleanName("shift name", in.Name, 1)
	if err != nil {
		return nil, err
	}
	if err := checkWindow(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}
	date := timex.DateOf(in.Date.UTC())
	if date.Before(timex.DateOf(s.now().UTC())) {
		return nil, fmt.Errorf("%w: shift date must be today or later", common.ErrValidation)
	}

	var shift *models.Shift
	err = withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.guard.manager(ctx, tx, userID, teamID); err != nil {
			return err
		}
		schedule, err := s.repomanager.Schedules(tx).GetByTeam(ctx, teamID)
		if err != nil {
			return err
		}
		shift, err = s.repomanager.Shifts(tx).Create(ctx, &models.Shift{
			ScheduleID: schedule.ID,
			Name:       name,
			Date:       date,
			StartTime:  in.StartTime,
			EndTime:    in.EndTime,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "shift created", "team_id", teamID, "shift_id", shift.ID)
	return shift, nil
}

// GetShift returns one shift of the team with its assignments.
func (s *ScheduleService) GetShift(ctx context.Context, userID, teamID, shiftID string) (*models.ShiftWithAssignments, error) {
	if _, err := s.guard.RequireMembership(ctx, userID, teamID); err != nil {
		return nil, err
	}
	shift, err := s.teamShift(ctx, s.db, teamID, shiftID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repomanager.MemberShifts(s.db).ListByShift(ctx, shift.ID)
	if err != nil {
		return nil, err
	}
	return &models.ShiftWithAssignments{Shift: *shift, Assignments: assignments}, nil
}

// ListShifts returns every shift of the team with its assignments.
func (s *ScheduleService) ListShifts(ctx context.Context, userID, teamID string) ([]models.ShiftWithAssignments, error) {
	if _, err := s.guard.RequireMembership(ctx, userID, teamID); err != nil {
		return nil, err
	}
	return s.scheduleShifts(ctx, teamID)
}

// DeleteShift removes a shift and its assignments.
func (s *ScheduleService) DeleteShift(ctx context.Context, userID, teamID, shiftID string) error {
	err := withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.guard.manager(ctx, tx, userID, teamID); err != nil {
			return err
		}
		shift, err := s.teamShift(ctx, tx, teamID, shiftID)
		if err != nil {
			return err
		}
		return s.repomanager.Shifts(tx).Delete(ctx, shift.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "shift deleted", "team_id", teamID, "shift_id", shiftID)
	return nil
}

// AssignShift puts a member of the team on one of its shifts. A member can
// be assigned to a shift once.
func (s *ScheduleService) AssignShift(ctx context.Context, userID, teamID, shiftID, memberID string, start, end time.Duration) (*models.MemberShift, error) {
	if err := checkWindow(start, end); err != nil {
		return nil, err
	}

	var ms *models.MemberShift
	err := withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.guard.manager(ctx, tx, userID, teamID); err != nil {
			return err
		}
		shift, err := s.teamShift(ctx, tx, teamID, shiftID)
		if err != nil {
			return err
		}
		if err := requireID("member", memberID); err != nil {
			return err
		}
		member, err := s.repomanager.Members(tx).GetByIDAndTeam(ctx, memberID, teamID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%w: member", common.ErrorNotFound)
			}
			return err
		}
		ms, err = s.repomanager.MemberShifts(tx).Create(ctx, &models.MemberShift{
			MemberID:  member.ID,
			ShiftID:   shift.ID,
			StartTime: start,
			EndTime:   end,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "shift assigned", "team_id", teamID, "shift_id", shiftID, "member_id", memberID)
	return ms, nil
}

// UnassignShift removes an assignment from a shift of the team.
func (s *ScheduleService) UnassignShift(ctx context.Context, userID, teamID, shiftID, memberShiftID string) error {
	err := withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.guard.manager(ctx, tx, userID, teamID); err != nil {
			return err
		}
		shift, err := s.teamShift(ctx, tx, teamID, shiftID)
		if err != nil {
			return err
		}
		if err := requireID("assignment", memberShiftID); err != nil {
			return err
		}
		repo := s.repomanager.MemberShifts(tx)
		ms, err := repo.GetByIDAndShift(ctx, memberShiftID, shift.ID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%w: assignment", common.ErrorNotFound)
			}
			return err
		}
		return repo.Delete(ctx, ms.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "shift unassigned", "team_id", teamID, "shift_id", shiftID, "member_shift_id", memberShiftID)
	return nil
}

// MyShifts returns the caller's own assignments in the team.
func (s *ScheduleService) MyShifts(ctx context.Context, userID, teamID string) ([]models.MyShift, error) {
	member, err := s.guard.RequireMembership(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}
	return s.repomanager.MemberShifts(s.db).ListByMember(ctx, member.ID)
}

// teamShift resolves shiftID within the schedule of teamID.
func (s *ScheduleService) teamShift(ctx context.Context, db dbx.DBTX, teamID, shiftID string) (*models.Shift, error) {
	if err := requireID("shift", shiftID); err != nil {
		return nil, err
	}
	schedule, err := s.repomanager.Schedules(db).GetByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	shift, err := s.repomanager.Shifts(db).GetByIDAndSchedule(ctx, shiftID, schedule.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: shift", common.ErrorNotFound)
		}
		return nil, err
	}
	return shift, nil
}

// scheduleShifts loads the team's shifts and groups the schedule's
// assignments under them.
func (s *ScheduleService) scheduleShifts(ctx context.Context, teamID string) ([]models.ShiftWithAssignments, error) {
	schedule, err := s.repomanager.Schedules(s.db).GetByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	shifts, err := s.repomanager.Shifts(s.db).ListBySchedule(ctx, schedule.ID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repomanager.MemberShifts(s.db).ListBySchedule(ctx, schedule.ID)
	if err != nil {
		return nil, err
	}

	byShift := make(map[string][]models.MemberShift, len(shifts))
	for _, a := range assignments {
		byShift[a.ShiftID] = append(byShift[a.ShiftID], a)
	}

	out := make([]models.ShiftWithAssignments, 0, len(shifts))
	for _, sh := range shifts {
		a := byShift[sh.ID]
		if a == nil {
			a = []models.MemberShift{}
		}
		out = append(out, models.ShiftWithAssignments{Shift: sh, Assignments: a})
	}
	return out, nil
}
