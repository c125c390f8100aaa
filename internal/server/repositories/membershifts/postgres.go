// Package membershifts provides the PostgreSQL-backed assignment repository.
package membershifts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rotamanager/internal/common"
	"github.com/dmitrijs2005/rotamanager/internal/dbx"
	"github.com/dmitrijs2005/rotamanager/internal/server/models"
	"github.com/dmitrijs2005/rotamanager/internal/timex"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, ms *models.MemberShift) (*models.MemberShift, error) {
	query := `
		INSERT INTO members_shifts (member_id, shift_id, start_time, end_time)
		VALUES ($1, $2, $3::time, $4::time)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		ms.MemberID, ms.ShiftID,
		timex.FormatTimeOfDay(ms.StartTime), timex.FormatTimeOfDay(ms.EndTime)).Scan(&ms.ID)
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err):
			return nil, fmt.Errorf("%w: member already assigned to this shift", common.ErrConflict)
		case dbx.IsForeignKeyViolation(err):
			return nil, fmt.Errorf("%w: member or shift", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ms, nil
}

func (r *PostgresRepository) GetByIDAndShift(ctx context.Context, id, shiftID string) (*models.MemberShift, error) {
	query := `
		SELECT id, member_id, shift_id, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI')
		FROM members_shifts
		WHERE id = $1 AND shift_id = $2
	`
	var ms models.MemberShift
	var start, end string
	if err := r.db.QueryRowContext(ctx, query, id, shiftID).Scan(&ms.ID, &ms.MemberID, &ms.ShiftID, &start, &end); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := parseWindow(&ms, start, end); err != nil {
		return nil, err
	}
	return &ms, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM members_shifts
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res)
}

func (r *PostgresRepository) ListByShift(ctx context.Context, shiftID string) ([]models.MemberShift, error) {
	query := `
		SELECT id, member_id, shift_id, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI')
		FROM members_shifts
		WHERE shift_id = $1
		ORDER BY start_time, id
	`
	return r.list(ctx, query, shiftID)
}

func (r *PostgresRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]models.MemberShift, error) {
	query := `
		SELECT ms.id, ms.member_id, ms.shift_id, to_char(ms.start_time, 'HH24:MI'), to_char(ms.end_time, 'HH24:MI')
		FROM members_shifts ms
		JOIN shifts sh ON sh.id = ms.shift_id
		WHERE sh.schedule_id = $1
		ORDER BY ms.start_time, ms.id
	`
	return r.list(ctx, query, scheduleID)
}

func (r *PostgresRepository) list(ctx context.Context, query, arg string) ([]models.MemberShift, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to select assignments: %w", err)
	}
	defer rows.Close()

	result := []models.MemberShift{}
	for rows.Next() {
		var ms models.MemberShift
		var start, end string
		if err := rows.Scan(&ms.ID, &ms.MemberID, &ms.ShiftID, &start, &end); err != nil {
			return nil, err
		}
		if err := parseWindow(&ms, start, end); err != nil {
			return nil, err
		}
		result = append(result, ms)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ListByMember(ctx context.Context, memberID string) ([]models.MyShift, error) {
	query := `
		SELECT ms.id, ms.member_id, ms.shift_id, to_char(ms.start_time, 'HH24:MI'), to_char(ms.end_time, 'HH24:MI'),
		       sh.schedule_id, sh.name, sh.date, to_char(sh.start_time, 'HH24:MI'), to_char(sh.end_time, 'HH24:MI')
		FROM members_shifts ms
		JOIN shifts sh ON sh.id = ms.shift_id
		WHERE ms.member_id = $1
		ORDER BY sh.date, sh.start_time
	`
	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to select assignments: %w", err)
	}
	defer rows.Close()

	result := []models.MyShift{}
	for rows.Next() {
		var item models.MyShift
		var start, end, shiftStart, shiftEnd string
		if err := rows.Scan(&item.ID, &item.MemberID, &item.ShiftID, &start, &end,
			&item.Shift.ScheduleID, &item.Shift.Name, &item.Shift.Date, &shiftStart, &shiftEnd); err != nil {
			return nil, err
		}
		if err := parseWindow(&item.MemberShift, start, end); err != nil {
			return nil, err
		}
		item.Shift.ID = item.ShiftID
		if item.Shift.StartTime, err = timex.ParseTimeOfDay(shiftStart); err != nil {
			return nil, fmt.Errorf("bad shift start_time %q: %w", shiftStart, err)
		}
		if item.Shift.EndTime, err = timex.ParseTimeOfDay(shiftEnd); err != nil {
			return nil, fmt.Errorf("bad shift end_time %q: %w", shiftEnd, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func parseWindow(ms *models.MemberShift, start, end string) error {
	var err error
	if ms.StartTime, err = timex.ParseTimeOfDay(start); err != nil {
		return fmt.Errorf("bad start_time %q: %w", start, err)
	}
	if ms.EndTime, err = timex.ParseTimeOfDay(end); err != nil {
		return fmt.Errorf("bad end_time %q: %w", end, err)
	}
	return nil
}
