package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rotamanager/internal/common"
	"github.com/dmitrijs2005/rotamanager/internal/logging"
	"github.com/dmitrijs2005/rotamanager/internal/server/export"
	"github.com/dmitrijs2005/rotamanager/internal/server/models"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/repomanager"
)

// ExportLink is a time-limited download link for an exported schedule.
type ExportLink struct {
	URL       string
	ExpiresAt time.Time
}

// ExportService renders a team's schedule to a workbook and publishes it
// through a Store.
type ExportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	schedule    *ScheduleService
	guard       *Guard
	store       export.Store
	linkTTL     time.Duration
	log         logging.Logger
	now         func() time.Time
}

func NewExportService(db *sql.DB, m repomanager.RepositoryManager, schedule *ScheduleService, guard *Guard,
	store export.Store, linkTTL time.Duration, log logging.Logger) *ExportService {
	return &ExportService{
		db:          db,
		repomanager: m,
		schedule:    schedule,
		guard:       guard,
		store:       store,
		linkTTL:     linkTTL,
		log:         log,
		now:         time.Now,
	}
}

// ExportSchedule uploads the team's schedule as an .xlsx workbook and
// returns a presigned link to it. Any member may export.
func (s *ExportService) ExportSchedule(ctx context.Context, userID, teamID string) (*ExportLink, error) {
	if _, err := s.guard.RequireMembership(ctx, userID, teamID); err != nil {
		return nil, err
	}

	team, err := s.repomanager.Teams(s.db).GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	shifts, err := s.schedule.scheduleShifts(ctx, teamID)
	if err != nil {
		return nil, err
	}
	profiles, err := s.repomanager.Members(s.db).ListByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.MemberProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	body, err := export.RenderSchedule(*team, shifts, byID)
	if err != nil {
		return nil, fmt.Errorf("%w: render workbook: %v", common.ErrorInternal, err)
	}

	now := s.now()
	key := export.ObjectKey(teamID, now)
	if err := s.store.Put(ctx, key, body, export.ContentType); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	url, err := s.store.PresignGet(ctx, key, s.linkTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: presign %s: %v", common.ErrorInternal, key, err)
	}

	s.log.Info(ctx, "schedule exported", "team_id", teamID, "key", key)
	return &ExportLink{URL: url, ExpiresAt: now.Add(s.linkTTL)}, nil
}
