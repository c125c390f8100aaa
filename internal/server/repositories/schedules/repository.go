// Package schedules declares the repository contract for team schedules.
package schedules

import (
	"context"

	"github.com/dmitrijs2005/rotamanager/internal/server/models"
)

type Repository interface {
	// Create inserts the schedule of teamID. A second schedule for the same
	// team yields common.ErrConflict.
	Create(ctx context.Context, teamID string) (*models.Schedule, error)
	GetByTeam(ctx context.Context, teamID string) (*models.Schedule, error)
	GetByID(ctx context.Context, id string) (*models.Schedule, error)
}
