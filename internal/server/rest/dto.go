package rest

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/rotamanager/internal/common"
	"github.com/dmitrijs2005/rotamanager/internal/server/models"
	"github.com/dmitrijs2005/rotamanager/internal/timex"
)

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateAccountRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type createTeamRequest struct {
	Name string `json:"name"`
}

type createShiftRequest struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type assignShiftRequest struct {
	MemberID  string `json:"member_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type accountResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

type teamResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ScheduleID string `json:"schedule_id"`
	MemberID   string `json:"member_id"`
	Role       string `json:"role"`
}

type memberResponse struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	TeamID string `json:"team_id"`
	Role   string `json:"role"`
}

type memberProfileResponse struct {
	memberResponse
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type memberShiftResponse struct {
	ID        string `json:"id"`
	MemberID  string `json:"member_id"`
	ShiftID   string `json:"shift_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type shiftResponse struct {
	ID         string `json:"id"`
	ScheduleID string `json:"schedule_id"`
	Name       string `json:"name"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

type shiftDetailResponse struct {
	shiftResponse
	Assignments []memberShiftResponse `json:"assignments"`
}

type myShiftResponse struct {
	memberShiftResponse
	Shift shiftResponse `json:"shift"`
}

type exportResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toAccount(u *models.User) accountResponse {
	return accountResponse{ID: u.ID, FullName: u.FullName, Email: u.Email, Verified: u.Verified, CreatedAt: u.CreatedAt}
}

func toTeam(t *models.TeamSummary) teamResponse {
	return teamResponse{ID: t.ID, Name: t.Name, ScheduleID: t.ScheduleID, MemberID: t.MemberID, Role: t.Role}
}

func toMember(m *models.Member) memberResponse {
	return memberResponse{ID: m.ID, UserID: m.UserID, TeamID: m.TeamID, Role: m.Role}
}

func toMemberShift(ms *models.MemberShift) memberShiftResponse {
	return memberShiftResponse{
		ID:        ms.ID,
		MemberID:  ms.MemberID,
		ShiftID:   ms.ShiftID,
		StartTime: timex.FormatTimeOfDay(ms.StartTime),
		EndTime:   timex.FormatTimeOfDay(ms.EndTime),
	}
}

func toShift(s *models.Shift) shiftResponse {
	return shiftResponse{
		ID:         s.ID,
		ScheduleID: s.ScheduleID,
		Name:       s.Name,
		Date:       s.Date.Format(timex.DateLayout),
		StartTime:  timex.FormatTimeOfDay(s.StartTime),
		EndTime:    timex.FormatTimeOfDay(s.EndTime),
	}
}

func toShiftDetail(s *models.ShiftWithAssignments) shiftDetailResponse {
	out := shiftDetailResponse{
		shiftResponse: toShift(&s.Shift),
		Assignments:   make([]memberShiftResponse, 0, len(s.Assignments)),
	}
	for i := range s.Assignments {
		out.Assignments = append(out.Assignments, toMemberShift(&s.Assignments[i]))
	}
	return out
}

// parseWindow parses an HH:MM start/end pair.
func parseWindow(start, end string) (time.Duration, time.Duration, error) {
	s, err := timex.ParseTimeOfDay(start)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: start_time must be HH:MM", common.ErrValidation)
	}
	e, err := timex.ParseTimeOfDay(end)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: end_time must be HH:MM", common.ErrValidation)
	}
	return s, e, nil
}
