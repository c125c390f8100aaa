// Package shifts declares the repository contract for schedule shifts.
package shifts

import (
	"context"

	"github.com/dmitrijs2005/rotamanager/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, shift *models.Shift) (*models.Shift, error)

	// GetByIDAndSchedule returns common.ErrorNotFound when the shift
	// exists but belongs to another schedule.
	GetByIDAndSchedule(ctx context.Context, id, scheduleID string) (*models.Shift, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.Shift, error)
	Delete(ctx context.Context, id string) error

	// TeamIDOf resolves the team owning the shift's schedule.
	TeamIDOf(ctx context.Context, shiftID string) (string, error)
}
