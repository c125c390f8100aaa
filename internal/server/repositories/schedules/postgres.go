// Package schedules provides the PostgreSQL-backed schedules repository.
package schedules

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

func (r *PostgresRepository) Create(ctx context.Context, teamID string) (*models.Schedule, error) {
	query := `
		INSERT INTO schedules (team_id)
		VALUES ($1)
		RETURNING id
	`
	s := &models.Schedule{TeamID: teamID}
	if err := r.db.QueryRowContext(ctx, query, teamID).Scan(&s.ID); err != nil {
		switch {
		case dbx.IsUniqueViolation(err):
			return nil, fmt.Errorf("%w: team already has a schedule", common.ErrConflict)
		case dbx.IsForeignKeyViolation(err):
			return nil, fmt.Errorf("%w: team", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) GetByTeam(ctx context.Context, teamID string) (*models.Schedule, error) {
	query := `
		SELECT id, team_id FROM schedules
		WHERE team_id = $1
	`
	return r.getOne(ctx, query, teamID)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := `
		SELECT id, team_id FROM schedules
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query, arg string) (*models.Schedule, error) {
	s := &models.Schedule{}
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&s.ID, &s.TeamID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
