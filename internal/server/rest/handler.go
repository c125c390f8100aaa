package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/rotamanager/internal/logging"
	"github.com/dmitrijs2005/rotamanager/internal/server/models"
	"github.com/dmitrijs2005/rotamanager/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Identity interface {
	Register(ctx context.Context, fullName, email, password string) (*models.User, error)
	Verify(ctx context.Context, token string) (string, error)
	ResendVerification(ctx context.Context, email string) error
	Authenticate(ctx context.Context, email, password string) (string, error)
	GetAccount(ctx context.Context, userID string) (*models.User, error)
	UpdateAccount(ctx context.Context, userID string, upd services.AccountUpdate) (*models.User, error)
	DeleteAccount(ctx context.Context, userID string) error
}

type Teams interface {
	CreateTeam(ctx context.Context, userID, name string) (*models.TeamSummary, error)
	GetTeam(ctx context.Context, userID, teamID string) (*models.TeamSummary, error)
	JoinTeam(ctx context.Context, userID, teamID string) (*models.Member, error)
	LeaveTeam(ctx context.Context, userID, teamID string) error
	DeleteTeam(ctx context.Context, userID, teamID string) error
	ListTeams(ctx context.Context, userID string) ([]models.TeamSummary, error)
	ListMembers(ctx context.Context, userID, teamID string) ([]models.MemberProfile, error)
}

type Schedule interface {
	CreateShift(ctx context.Context, userID, teamID string, in services.ShiftInput) (*models.Shift, error)
	GetShift(ctx context.Context, userID, teamID, shiftID string) (*models.ShiftWithAssignments, error)
	ListShifts(ctx context.Context, userID, teamID string) ([]models.ShiftWithAssignments, error)
	DeleteShift(ctx context.Context, userID, teamID, shiftID string) error
	AssignShift(ctx context.Context, userID, teamID, shiftID, memberID string, start, end time.Duration) (*models.MemberShift, error)
	UnassignShift(ctx context.Context, userID, teamID, shiftID, memberShiftID string) error
	MyShifts(ctx context.Context, userID, teamID string) ([]models.MyShift, error)
}

type Exporter interface {
	ExportSchedule(ctx context.Context, userID, teamID string) (*services.ExportLink, error)
}

// TokenValidator resolves a session token to a user id.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// Handler serves the REST API.
type Handler struct {
	identity Identity
	teams    Teams
	schedule Schedule
	exporter Exporter
	tokens   TokenValidator
	logger   logging.Logger
}

func NewHandler(l logging.Logger, tokens TokenValidator, identity Identity, teams Teams, schedule Schedule, exporter Exporter) *Handler {
	return &Handler{
		identity: identity,
		teams:    teams,
		schedule: schedule,
		exporter: exporter,
		tokens:   tokens,
		logger:   l.With("module", "rest"),
	}
}

// Routes builds the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Get("/verify", h.verify)
		r.Get("/resend", h.resend)
		r.Post("/login", h.login)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.sessionMiddleware)

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", h.getAccount)
			r.Put("/", h.updateAccount)
			r.Delete("/", h.deleteAccount)
		})

		r.Route("/teams", func(r chi.Router) {
			r.Post("/", h.createTeam)
			r.Get("/", h.listTeams)

			r.Route("/{teamId}", func(r chi.Router) {
				r.Get("/", h.getTeam)
				r.Delete("/", h.deleteTeam)
				r.Post("/join", h.joinTeam)
				r.Get("/members", h.listMembers)
				r.Delete("/members", h.leaveTeam)
				r.Get("/schedule/export", h.exportSchedule)

				r.Route("/shifts", func(r chi.Router) {
					r.Post("/", h.createShift)
					r.Get("/", h.listShifts)
					r.Get("/mine", h.myShifts)
					r.Get("/{shiftId}", h.getShift)
					r.Delete("/{shiftId}", h.deleteShift)
					r.Post("/{shiftId}/assign", h.assignShift)
					r.Delete("/{shiftId}/unassign/{memberShiftId}", h.unassignShift)
				})
			})
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
