// Package membershifts declares the repository contract for member-to-shift
// assignments.
package membershifts

import (
	"context"

	"github.com/dmitrijs2005/rotamanager/internal/server/models"
)

type Repository interface {
	// Create inserts the assignment. A second assignment of the same member
	// to the same shift yields common.ErrConflict.
	Create(ctx context.Context, ms *models.MemberShift) (*models.MemberShift, error)

	// GetByIDAndShift returns common.ErrorNotFound when the assignment
	// belongs to a different shift.
	GetByIDAndShift(ctx context.Context, id, shiftID string) (*models.MemberShift, error)
	Delete(ctx context.Context, id string) error

	// ListByShift returns the assignments on one shift.
	ListByShift(ctx context.Context, shiftID string) ([]models.MemberShift, error)

	// ListBySchedule returns every assignment on the schedule's shifts.
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.MemberShift, error)

	// ListByMember returns the member's assignments with their shifts,
	// ordered by shift date and start.
	ListByMember(ctx context.Context, memberID string) ([]models.MyShift, error)
}
