package services

import (
	"context"
	"database/sql"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/rotamanager/internal/common"
	"github.com/dmitrijs2005/rotamanager/internal/dbx"
	"github.com/dmitrijs2005/rotamanager/internal/server/models"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/members"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/membershifts"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/schedules"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/shifts"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/teams"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/users"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/verificationtokens"
	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for the database. It enforces the
// unique constraints, foreign keys and cascades of the schema.
type fakeStore struct {
	mu sync.Mutex

	users        map[string]models.User
	tokens       map[string]models.VerificationToken // by user id
	teams        map[string]models.Team
	members      map[string]models.Member
	schedules    map[string]models.Schedule
	shifts       map[string]models.Shift
	memberShifts map[string]models.MemberShift

	// fail makes the named operation return the error, e.g. "members.Create".
	fail map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        map[string]models.User{},
		tokens:       map[string]models.VerificationToken{},
		teams:        map[string]models.Team{},
		members:      map[string]models.Member{},
		schedules:    map[string]models.Schedule{},
		shifts:       map[string]models.Shift{},
		memberShifts: map[string]models.MemberShift{},
		fail:         map[string]error{},
	}
}

type fakeSnapshot struct {
	users        map[string]models.User
	tokens       map[string]models.VerificationToken
	teams        map[string]models.Team
	members      map[string]models.Member
	schedules    map[string]models.Schedule
	shifts       map[string]models.Shift
	memberShifts map[string]models.MemberShift
}

func (s *fakeStore) snapshot() fakeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fakeSnapshot{
		users:        maps.Clone(s.users),
		tokens:       maps.Clone(s.tokens),
		teams:        maps.Clone(s.teams),
		members:      maps.Clone(s.members),
		schedules:    maps.Clone(s.schedules),
		shifts:       maps.Clone(s.shifts),
		memberShifts: maps.Clone(s.memberShifts),
	}
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.tokens = snap.tokens
	s.teams = snap.teams
	s.members = snap.members
	s.schedules = snap.schedules
	s.shifts = snap.shifts
	s.memberShifts = snap.memberShifts
}

func (s *fakeStore) failure(op string) error {
	return s.fail[op]
}

// cascade helpers; callers hold mu.

func (s *fakeStore) deleteShiftLocked(id string) {
	delete(s.shifts, id)
	for k, ms := range s.memberShifts {
		if ms.ShiftID == id {
			delete(s.memberShifts, k)
		}
	}
}

func (s *fakeStore) deleteMemberLocked(id string) {
	delete(s.members, id)
	for k, ms := range s.memberShifts {
		if ms.MemberID == id {
			delete(s.memberShifts, k)
		}
	}
}

func (s *fakeStore) deleteTeamLocked(id string) {
	delete(s.teams, id)
	for k, sc := range s.schedules {
		if sc.TeamID != id {
			continue
		}
		delete(s.schedules, k)
		for sk, sh := range s.shifts {
			if sh.ScheduleID == k {
				s.deleteShiftLocked(sk)
			}
		}
	}
	for k, m := range s.members {
		if m.TeamID == id {
			s.deleteMemberLocked(k)
		}
	}
}

// fakeManager implements repomanager.RepositoryManager on a fakeStore.
type fakeManager struct {
	s *fakeStore
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeManager) Users(dbx.DBTX) users.Repository { return &fakeUsers{m.s} }

func (m *fakeManager) VerificationTokens(dbx.DBTX) verificationtokens.Repository {
	return &fakeTokens{m.s}
}

func (m *fakeManager) Teams(dbx.DBTX) teams.Repository { return &fakeTeams{m.s} }

func (m *fakeManager) Members(dbx.DBTX) members.Repository { return &fakeMembers{m.s} }

func (m *fakeManager) Schedules(dbx.DBTX) schedules.Repository { return &fakeSchedules{m.s} }

func (m *fakeManager) Shifts(dbx.DBTX) shifts.Repository { return &fakeShifts{m.s} }

func (m *fakeManager) MemberShifts(dbx.DBTX) membershifts.Repository {
	return &fakeMemberShifts{m.s}
}

// --- users ---

type fakeUsers struct{ s *fakeStore }

func (r *fakeUsers) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.Create"); err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return nil, common.ErrConflict
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	r.s.users[user.ID] = *user
	return user, nil
}

func (r *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsers) MarkVerified(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Verified = true
	r.s.users[id] = u
	return nil
}

func (r *fakeUsers) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[user.ID]
	if !ok {
		return common.ErrorNotFound
	}
	for _, o := range r.s.users {
		if o.ID != user.ID && o.Email == user.Email {
			return common.ErrConflict
		}
	}
	u.FullName, u.Email, u.PasswordHash = user.FullName, user.Email, user.PasswordHash
	r.s.users[user.ID] = u
	return nil
}

func (r *fakeUsers) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.users, id)
	delete(r.s.tokens, id)
	for k, m := range r.s.members {
		if m.UserID == id {
			r.s.deleteMemberLocked(k)
		}
	}
	return nil
}

// --- verification tokens ---

type fakeTokens struct{ s *fakeStore }

func (r *fakeTokens) Upsert(_ context.Context, token *models.VerificationToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("tokens.Upsert"); err != nil {
		return err
	}
	if _, ok := r.s.users[token.UserID]; !ok {
		return common.ErrorNotFound
	}
	for uid, t := range r.s.tokens {
		if uid != token.UserID && t.Token == token.Token {
			return common.ErrConflict
		}
	}
	if prev, ok := r.s.tokens[token.UserID]; ok {
		token.ID = prev.ID
	} else {
		token.ID = uuid.NewString()
	}
	r.s.tokens[token.UserID] = *token
	return nil
}

func (r *fakeTokens) Consume(_ context.Context, token string) (*models.VerificationToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for uid, t := range r.s.tokens {
		if t.Token == token {
			delete(r.s.tokens, uid)
			return &t, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- teams ---

type fakeTeams struct{ s *fakeStore }

func (r *fakeTeams) Create(_ context.Context, team *models.Team) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("teams.Create"); err != nil {
		return nil, err
	}
	team.ID = uuid.NewString()
	r.s.teams[team.ID] = *team
	return team, nil
}

func (r *fakeTeams) GetByID(_ context.Context, id string) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r *fakeTeams) LockByID(ctx context.Context, id string) (*models.Team, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeTeams) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[id]; !ok {
		return common.ErrorNotFound
	}
	r.s.deleteTeamLocked(id)
	return nil
}

func (r *fakeTeams) ListByUser(_ context.Context, userID string) ([]models.TeamSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.TeamSummary{}
	for _, m := range r.s.members {
		if m.UserID != userID {
			continue
		}
		t := r.s.teams[m.TeamID]
		var scheduleID string
		for _, sc := range r.s.schedules {
			if sc.TeamID == t.ID {
				scheduleID = sc.ID
			}
		}
		out = append(out, models.TeamSummary{Team: t, ScheduleID: scheduleID, MemberID: m.ID, Role: m.Role})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// --- members ---

type fakeMembers struct{ s *fakeStore }

func (r *fakeMembers) Create(_ context.Context, member *models.Member) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("members.Create"); err != nil {
		return nil, err
	}
	if _, ok := r.s.teams[member.TeamID]; !ok {
		return nil, common.ErrorNotFound
	}
	if _, ok := r.s.users[member.UserID]; !ok {
		return nil, common.ErrorNotFound
	}
	for _, m := range r.s.members {
		if m.UserID == member.UserID && m.TeamID == member.TeamID {
			return nil, common.ErrConflict
		}
	}
	member.ID = uuid.NewString()
	r.s.members[member.ID] = *member
	return member, nil
}

func (r *fakeMembers) GetByUserAndTeam(_ context.Context, userID, teamID string) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members {
		if m.UserID == userID && m.TeamID == teamID {
			return &m, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeMembers) GetByIDAndTeam(_ context.Context, id, teamID string) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.members[id]
	if !ok || m.TeamID != teamID {
		return nil, common.ErrorNotFound
	}
	return &m, nil
}

func (r *fakeMembers) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.members[id]; !ok {
		return common.ErrorNotFound
	}
	r.s.deleteMemberLocked(id)
	return nil
}

func (r *fakeMembers) ListByTeam(_ context.Context, teamID string) ([]models.MemberProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.MemberProfile{}
	for _, m := range r.s.members {
		if m.TeamID != teamID {
			continue
		}
		u := r.s.users[m.UserID]
		out = append(out, models.MemberProfile{Member: m, FullName: u.FullName, Email: u.Email})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role > out[j].Role
		}
		return out[i].FullName < out[j].FullName
	})
	return out, nil
}

func (r *fakeMembers) CountByTeam(_ context.Context, teamID string) (int, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total, managers int
	for _, m := range r.s.members {
		if m.TeamID != teamID {
			continue
		}
		total++
		if m.IsManager() {
			managers++
		}
	}
	return total, managers, nil
}

func (r *fakeMembers) SoleManagedTeams(_ context.Context, userID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []string
	for _, m := range r.s.members {
		if m.UserID != userID || !m.IsManager() {
			continue
		}
		otherManager, otherMember := false, false
		for _, o := range r.s.members {
			if o.TeamID != m.TeamID || o.UserID == userID {
				continue
			}
			otherMember = true
			if o.IsManager() {
				otherManager = true
			}
		}
		if otherMember && !otherManager {
			out = append(out, m.TeamID)
		}
	}
	return out, nil
}

// --- schedules ---

type fakeSchedules struct{ s *fakeStore }

func (r *fakeSchedules) Create(_ context.Context, teamID string) (*models.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("schedules.Create"); err != nil {
		return nil, err
	}
	if _, ok := r.s.teams[teamID]; !ok {
		return nil, common.ErrorNotFound
	}
	for _, sc := range r.s.schedules {
		if sc.TeamID == teamID {
			return nil, common.ErrConflict
		}
	}
	sc := models.Schedule{ID: uuid.NewString(), TeamID: teamID}
	r.s.schedules[sc.ID] = sc
	return &sc, nil
}

func (r *fakeSchedules) GetByTeam(_ context.Context, teamID string) (*models.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sc := range r.s.schedules {
		if sc.TeamID == teamID {
			return &sc, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeSchedules) GetByID(_ context.Context, id string) (*models.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sc, ok := r.s.schedules[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &sc, nil
}

// --- shifts ---

type fakeShifts struct{ s *fakeStore }

func (r *fakeShifts) Create(_ context.Context, shift *models.Shift) (*models.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("shifts.Create"); err != nil {
		return nil, err
	}
	if _, ok := r.s.schedules[shift.ScheduleID]; !ok {
		return nil, common.ErrorNotFound
	}
	shift.ID = uuid.NewString()
	r.s.shifts[shift.ID] = *shift
	return shift, nil
}

func (r *fakeShifts) GetByIDAndSchedule(_ context.Context, id, scheduleID string) (*models.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shifts[id]
	if !ok || sh.ScheduleID != scheduleID {
		return nil, common.ErrorNotFound
	}
	return &sh, nil
}

func (r *fakeShifts) ListBySchedule(_ context.Context, scheduleID string) ([]models.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Shift{}
	for _, sh := range r.s.shifts {
		if sh.ScheduleID == scheduleID {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *fakeShifts) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.shifts[id]; !ok {
		return common.ErrorNotFound
	}
	r.s.deleteShiftLocked(id)
	return nil
}

func (r *fakeShifts) TeamIDOf(_ context.Context, shiftID string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shifts[shiftID]
	if !ok {
		return "", common.ErrorNotFound
	}
	return r.s.schedules[sh.ScheduleID].TeamID, nil
}

// --- member shifts ---

type fakeMemberShifts struct{ s *fakeStore }

func (r *fakeMemberShifts) Create(_ context.Context, ms *models.MemberShift) (*models.MemberShift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.members[ms.MemberID]; !ok {
		return nil, common.ErrorNotFound
	}
	if _, ok := r.s.shifts[ms.ShiftID]; !ok {
		return nil, common.ErrorNotFound
	}
	for _, o := range r.s.memberShifts {
		if o.MemberID == ms.MemberID && o.ShiftID == ms.ShiftID {
			return nil, common.ErrConflict
		}
	}
	ms.ID = uuid.NewString()
	r.s.memberShifts[ms.ID] = *ms
	return ms, nil
}

func (r *fakeMemberShifts) GetByIDAndShift(_ context.Context, id, shiftID string) (*models.MemberShift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ms, ok := r.s.memberShifts[id]
	if !ok || ms.ShiftID != shiftID {
		return nil, common.ErrorNotFound
	}
	return &ms, nil
}

func (r *fakeMemberShifts) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.memberShifts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.memberShifts, id)
	return nil
}

func (r *fakeMemberShifts) ListByShift(_ context.Context, shiftID string) ([]models.MemberShift, error) {
	return r.filter(func(ms models.MemberShift) bool { return ms.ShiftID == shiftID }), nil
}

func (r *fakeMemberShifts) ListBySchedule(_ context.Context, scheduleID string) ([]models.MemberShift, error) {
	r.s.mu.Lock()
	ids := map[string]bool{}
	for _, sh := range r.s.shifts {
		if sh.ScheduleID == scheduleID {
			ids[sh.ID] = true
		}
	}
	r.s.mu.Unlock()
	return r.filter(func(ms models.MemberShift) bool { return ids[ms.ShiftID] }), nil
}

func (r *fakeMemberShifts) ListByMember(_ context.Context, memberID string) ([]models.MyShift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.MyShift{}
	for _, ms := range r.s.memberShifts {
		if ms.MemberID == memberID {
			out = append(out, models.MyShift{MemberShift: ms, Shift: r.s.shifts[ms.ShiftID]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Shift.Date.Equal(out[j].Shift.Date) {
			return out[i].Shift.Date.Before(out[j].Shift.Date)
		}
		return out[i].Shift.StartTime < out[j].Shift.StartTime
	})
	return out, nil
}

func (r *fakeMemberShifts) filter(keep func(models.MemberShift) bool) []models.MemberShift {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.MemberShift{}
	for _, ms := range r.s.memberShifts {
		if keep(ms) {
			out = append(out, ms)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}
