// Package server wires configuration, storage, mail, object storage and the
// REST API together and runs the HTTP server until a termination signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/rotamanager/internal/cryptox"
	"github.com/dmitrijs2005/rotamanager/internal/logging"
	"github.com/dmitrijs2005/rotamanager/internal/server/auth"
	"github.com/dmitrijs2005/rotamanager/internal/server/config"
	"github.com/dmitrijs2005/rotamanager/internal/server/export"
	"github.com/dmitrijs2005/rotamanager/internal/server/mailer"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rotamanager/internal/server/rest"
	"github.com/dmitrijs2005/rotamanager/internal/server/services"
	"golang.org/x/crypto/bcrypt"
)

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}

	newRepositoryManager = repomanager.NewPostgresRepositoryManager

	newExportStore = func(ctx context.Context, cfg export.S3Config) (export.Store, error) {
		return export.NewS3Store(ctx, cfg)
	}
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler *rest.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	var sender mailer.VerificationSender
	if c.SMTPHost == "" {
		sender = mailer.NewLogSender(c.VerificationLinkBaseURL, logger.With("module", "mailer"))
	} else {
		sender, err = mailer.NewSMTPSender(c.SMTPHost, c.SMTPPort, c.SMTPUsername, c.SMTPPassword,
			c.SMTPFrom, c.VerificationLinkBaseURL, logger.With("module", "mailer"))
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("mailer init error: %w", err)
		}
	}

	store, err := newExportStore(ctx, export.S3Config{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	issuer := auth.NewIssuer([]byte(c.SecretKey), c.SessionTokenValidityDuration)
	guard := services.NewGuard(db, rm)

	identity := services.NewIdentityService(db, rm, cryptox.NewBcryptHasher(bcrypt.DefaultCost),
		issuer, sender, c, logger.With("module", "identity"))
	teams := services.NewTeamService(db, rm, guard, logger.With("module", "teams"))
	schedule := services.NewScheduleService(db, rm, guard, logger.With("module", "schedule"))
	exporter := services.NewExportService(db, rm, schedule, guard, store,
		c.ExportLinkValidityDuration, logger.With("module", "export"))

	h := rest.NewHandler(logger, issuer, identity, teams, schedule, exporter)

	return &App{config: c, logger: logger, db: db, handler: h}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.handler.Routes())

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing db", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
