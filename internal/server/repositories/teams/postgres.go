// Package teams provides the PostgreSQL-backed teams repository.
package teams

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

func (r *PostgresRepository) Create(ctx context.Context, team *models.Team) (*models.Team, error) {
	query := `
		INSERT INTO teams (name)
		VALUES ($1)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, team.Name).Scan(&team.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return team, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	query := `
		SELECT id, name FROM teams
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) LockByID(ctx context.Context, id string) (*models.Team, error) {
	query := `
		SELECT id, name FROM teams
		WHERE id = $1
		FOR UPDATE
	`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query, id string) (*models.Team, error) {
	team := &models.Team{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&team.ID, &team.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return team, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM teams
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.TeamSummary, error) {
	query := `
		SELECT t.id, t.name, s.id, m.id, m.role
		FROM members m
		JOIN teams t ON t.id = m.team_id
		JOIN schedules s ON s.team_id = t.id
		WHERE m.user_id = $1
		ORDER BY t.name, t.id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select teams: %w", err)
	}
	defer rows.Close()

	result := []models.TeamSummary{}
	for rows.Next() {
		var item models.TeamSummary
		if err := rows.Scan(&item.ID, &item.Name, &item.ScheduleID, &item.MemberID, &item.Role); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
