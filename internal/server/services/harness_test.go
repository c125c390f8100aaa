package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/rotamanager/internal/cryptox"
	"github.com/dmitrijs2005/rotamanager/internal/dbx"
	"github.com/dmitrijs2005/rotamanager/internal/logging"
	"github.com/dmitrijs2005/rotamanager/internal/server/auth"
	"github.com/dmitrijs2005/rotamanager/internal/server/config"
	"github.com/dmitrijs2005/rotamanager/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeSender records delivered verification tokens per address.
type fakeSender struct {
	mu   sync.Mutex
	sent map[string][]string
	err  error
}

func (f *fakeSender) SendVerification(_ context.Context, toEmail, _ string, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sent == nil {
		f.sent = map[string][]string{}
	}
	f.sent[toEmail] = append(f.sent[toEmail], token)
	return f.err
}

func (f *fakeSender) last(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.sent[email]
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1]
}

// fakeObjects is an export.Store keeping uploads in memory.
type fakeObjects struct {
	mu         sync.Mutex
	objects    map[string][]byte
	types      map[string]string
	putErr     error
	presignErr error
}

func (f *fakeObjects) Put(_ context.Context, key string, body []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	if f.objects == nil {
		f.objects, f.types = map[string][]byte{}, map[string]string{}
	}
	f.objects[key] = body
	f.types[key] = contentType
	return nil
}

func (f *fakeObjects) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://exports.example/" + key + "?ttl=" + ttl.String(), nil
}

type harness struct {
	t     *testing.T
	db    *sql.DB
	mock  sqlmock.Sqlmock
	store *fakeStore
	mail  *fakeSender
	files *fakeObjects
	clock time.Time

	issuer   *auth.Issuer
	guard    *Guard
	identity *IdentityService
	teams    *TeamService
	schedule *ScheduleService
	export   *ExportService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	h := &harness{
		t:     t,
		db:    db,
		mock:  mock,
		store: newFakeStore(),
		mail:  &fakeSender{},
		files: &fakeObjects{},
		clock: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	h.installTx()

	cfg := &config.Config{
		SecretKey:                         "test-secret",
		SessionTokenValidityDuration:      time.Hour,
		VerificationTokenValidityDuration: 15 * time.Minute,
	}
	m := &fakeManager{s: h.store}
	log := logging.Nop()
	now := func() time.Time { return h.clock }

	h.issuer = auth.NewIssuer([]byte(cfg.SecretKey), cfg.SessionTokenValidityDuration)
	h.guard = NewGuard(db, m)
	h.identity = NewIdentityService(db, m, cryptox.NewBcryptHasher(bcrypt.MinCost), h.issuer, h.mail, cfg, log)
	h.identity.now = now
	h.teams = NewTeamService(db, m, h.guard, log)
	h.schedule = NewScheduleService(db, m, h.guard, log)
	h.schedule.now = now
	h.export = NewExportService(db, m, h.schedule, h.guard, h.files, 10*time.Minute, log)
	h.export.now = now
	return h
}

// installTx makes the fake store follow the transaction outcome: a failed
// transaction restores the rows it had before Begin.
func (h *harness) installTx() {
	orig := withTx
	withTx = func(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx dbx.DBTX) error) error {
		snap := h.store.snapshot()
		err := orig(ctx, db, opts, fn)
		if err != nil {
			h.store.restore(snap)
		}
		return err
	}
	h.t.Cleanup(func() { withTx = orig })
}

func (h *harness) expectCommit() {
	h.mock.ExpectBegin()
	h.mock.ExpectCommit()
}

func (h *harness) expectRollback() {
	h.mock.ExpectBegin()
	h.mock.ExpectRollback()
}

// user stores a verified user directly and returns its id.
func (h *harness) user(name, email string) string {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	id := uuid.NewString()
	h.store.users[id] = models.User{ID: id, FullName: name, Email: email, Role: "USER", Verified: true}
	return id
}

// team creates a team managed by userID through the service.
func (h *harness) team(userID, name string) *models.TeamSummary {
	h.t.Helper()
	h.expectCommit()
	t, err := h.teams.CreateTeam(context.Background(), userID, name)
	require.NoError(h.t, err)
	return t
}

func (h *harness) join(userID, teamID string) *models.Member {
	h.t.Helper()
	m, err := h.teams.JoinTeam(context.Background(), userID, teamID)
	require.NoError(h.t, err)
	return m
}

func (h *harness) promote(memberID string) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	m := h.store.members[memberID]
	m.Role = models.RoleManager
	h.store.members[memberID] = m
}

func (h *harness) tomorrow() time.Time {
	return h.clock.AddDate(0, 0, 1)
}

func (h *harness) shift(userID, teamID, name string) *models.Shift {
	h.t.Helper()
	h.expectCommit()
	sh, err := h.schedule.CreateShift(context.Background(), userID, teamID, ShiftInput{
		Name:      name,
		Date:      h.tomorrow(),
		StartTime: 9 * time.Hour,
		EndTime:   17 * time.Hour,
	})
	require.NoError(h.t, err)
	return sh
}

func (h *harness) count(table string) int {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	switch table {
	case "users":
		return len(h.store.users)
	case "tokens":
		return len(h.store.tokens)
	case "teams":
		return len(h.store.teams)
	case "members":
		return len(h.store.members)
	case "schedules":
		return len(h.store.schedules)
	case "shifts":
		return len(h.store.shifts)
	case "members_shifts":
		return len(h.store.memberShifts)
	}
	h.t.Fatalf("unknown table %q", table)
	return 0
}
