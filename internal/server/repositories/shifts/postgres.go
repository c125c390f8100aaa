// Package shifts provides the PostgreSQL-backed shifts repository. Times of
// day travel as HH:MM text and are stored in TIME columns.
package shifts

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

type scanner interface {
	Scan(dest ...any) error
}

func scanShift(row scanner) (*models.Shift, error) {
	var s models.Shift
	var start, end string
	if err := row.Scan(&s.ID, &s.ScheduleID, &s.Name, &s.Date, &start, &end); err != nil {
		return nil, err
	}
	var err error
	if s.StartTime, err = timex.ParseTimeOfDay(start); err != nil {
		return nil, fmt.Errorf("bad start_time %q: %w", start, err)
	}
	if s.EndTime, err = timex.ParseTimeOfDay(end); err != nil {
		return nil, fmt.Errorf("bad end_time %q: %w", end, err)
	}
	return &s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, shift *models.Shift) (*models.Shift, error) {
	query := `
		INSERT INTO shifts (schedule_id, name, date, start_time, end_time)
		VALUES ($1, $2, $3, $4::time, $5::time)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		shift.ScheduleID, shift.Name, shift.Date,
		timex.FormatTimeOfDay(shift.StartTime), timex.FormatTimeOfDay(shift.EndTime)).Scan(&shift.ID)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: schedule", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return shift, nil
}

func (r *PostgresRepository) GetByIDAndSchedule(ctx context.Context, id, scheduleID string) (*models.Shift, error) {
	query := `
		SELECT id, schedule_id, name, date, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI')
		FROM shifts
		WHERE id = $1 AND schedule_id = $2
	`
	s, err := scanShift(r.db.QueryRowContext(ctx, query, id, scheduleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]models.Shift, error) {
	query := `
		SELECT id, schedule_id, name, date, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI')
		FROM shifts
		WHERE schedule_id = $1
		ORDER BY date, start_time, name
	`
	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to select shifts: %w", err)
	}
	defer rows.Close()

	result := []models.Shift{}
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM shifts
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res)
}

func (r *PostgresRepository) TeamIDOf(ctx context.Context, shiftID string) (string, error) {
	query := `
		SELECT sc.team_id
		FROM shifts sh
		JOIN schedules sc ON sc.id = sh.schedule_id
		WHERE sh.id = $1
	`
	var teamID string
	if err := r.db.QueryRowContext(ctx, query, shiftID).Scan(&teamID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return teamID, nil
}
