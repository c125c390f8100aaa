// Package members provides the PostgreSQL-backed membership repository.
package members

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

func (r *PostgresRepository) Create(ctx context.Context, member *models.Member) (*models.Member, error) {
	query := `
		INSERT INTO members (user_id, team_id, role)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, member.UserID, member.TeamID, member.Role).Scan(&member.ID); err != nil {
		switch {
		case dbx.IsUniqueViolation(err):
			return nil, fmt.Errorf("%w: already a member of this team", common.ErrConflict)
		case dbx.IsForeignKeyViolation(err):
			return nil, fmt.Errorf("%w: team", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return member, nil
}

func (r *PostgresRepository) GetByUserAndTeam(ctx context.Context, userID, teamID string) (*models.Member, error) {
	query := `
		SELECT id, user_id, team_id, role FROM members
		WHERE user_id = $1 AND team_id = $2
	`
	return r.getOne(ctx, query, userID, teamID)
}

func (r *PostgresRepository) GetByIDAndTeam(ctx context.Context, id, teamID string) (*models.Member, error) {
	query := `
		SELECT id, user_id, team_id, role FROM members
		WHERE id = $1 AND team_id = $2
	`
	return r.getOne(ctx, query, id, teamID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Member, error) {
	m := &models.Member{}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&m.ID, &m.UserID, &m.TeamID, &m.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM members
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res)
}

func (r *PostgresRepository) ListByTeam(ctx context.Context, teamID string) ([]models.MemberProfile, error) {
	query := `
		SELECT m.id, m.user_id, m.team_id, m.role, u.full_name, u.email
		FROM members m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = $1
		ORDER BY m.role DESC, u.full_name
	`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to select members: %w", err)
	}
	defer rows.Close()

	result := []models.MemberProfile{}
	for rows.Next() {
		var item models.MemberProfile
		if err := rows.Scan(&item.ID, &item.UserID, &item.TeamID, &item.Role, &item.FullName, &item.Email); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) CountByTeam(ctx context.Context, teamID string) (int, int, error) {
	query := `
		SELECT count(*), count(*) FILTER (WHERE role = 'MANAGER')
		FROM members
		WHERE team_id = $1
	`
	var total, managers int
	if err := r.db.QueryRowContext(ctx, query, teamID).Scan(&total, &managers); err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return total, managers, nil
}

func (r *PostgresRepository) SoleManagedTeams(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT m.team_id
		FROM members m
		WHERE m.user_id = $1 AND m.role = 'MANAGER'
		  AND NOT EXISTS (
		      SELECT 1 FROM members o
		      WHERE o.team_id = m.team_id AND o.role = 'MANAGER' AND o.user_id <> $1)
		  AND EXISTS (
		      SELECT 1 FROM members o
		      WHERE o.team_id = m.team_id AND o.user_id <> $1)
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select managed teams: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var teamID string
		if err := rows.Scan(&teamID); err != nil {
			return nil, err
		}
		result = append(result, teamID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
