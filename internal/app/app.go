package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "realtycrm/docs"
	"realtycrm/internal/config"
	"realtycrm/internal/filter"
	"realtycrm/internal/handlers"
	"realtycrm/internal/logger"
	"realtycrm/internal/middleware"
	"realtycrm/internal/pdf"
	"realtycrm/internal/repositories"
	"realtycrm/internal/routes"
	"realtycrm/internal/services"
	"realtycrm/internal/store"
	"realtycrm/internal/uistate"
	"realtycrm/internal/utils"
)

// App holds the wired components of one server process.
type App struct {
	cfg    *config.Config
	log    logger.Logger
	db     *sql.DB
	redis  *redis.Client
	store  *store.Store
	Router *gin.Engine

	installer *services.InstallService
}

func Run() error {
	cfg, path, err := config.LoadConfig()
	if err != nil {
		return err
	}
	zapLog := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	a, err := New(cfg, path, log)
	if err != nil {
		zapLog.Error("startup failed", zap.Error(err))
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx)
}

func New(cfg *config.Config, configPath string, log logger.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}
	loc := cfg.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	// === Store ===
	src, err := a.source(clock, loc)
	if err != nil {
		return nil, err
	}
	var cache store.SnapshotCache = store.NewNoopCache()
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache = store.NewRedisCache(a.redis, cfg.Redis.TTL)
	}
	a.store = store.New(src, cache, log.With(map[string]interface{}{"component": "store"}))

	// === Engine & services ===
	policy, err := filter.PolicyByName(cfg.Filter.Policy)
	if err != nil {
		return nil, err
	}
	engine := filter.NewEngine(
		filter.WithClock(clock),
		filter.WithPolicy(policy),
		filter.WithLogger(log.With(map[string]interface{}{"component": "filter"})),
	)

	secret := cfg.JWT.Secret
	if secret == "" {
		if secret, err = utils.NewSecret(32); err != nil {
			return nil, err
		}
		log.Warn("jwt.secret not configured, using an ephemeral secret", nil)
	}
	authService := services.NewAuthService(cfg.Users, secret, cfg.JWT.TTL, log.With(map[string]interface{}{"component": "auth"}))

	dashboard := services.NewDashboardService(a.store, engine, clock, log)

	var email services.EmailService
	if cfg.Email.SMTPHost != "" {
		email = services.NewEmailService(cfg.Email.SMTPHost, cfg.Email.SMTPPort,
			cfg.Email.SMTPUser, cfg.Email.SMTPPassword, cfg.Email.FromEmail)
	}
	reports := services.NewReportService(dashboard,
		pdf.NewReportGenerator(cfg.Files.RootDir, cfg.Files.FontPath),
		email,
		services.ReportOptions{Company: cfg.App.Name, DigestTo: cfg.Email.DigestTo, Now: clock},
		log.With(map[string]interface{}{"component": "reports"}))

	a.installer = services.NewInstallService(configPath, cfg, log.With(map[string]interface{}{"component": "install"}),
		services.OnInstalled(func(c *config.Config) {
			authService.Reload(c.Users, c.JWT.Secret)
			log.Info("installation complete, restart to switch data source", map[string]interface{}{"source": c.Store.Source})
		}))

	// === Gin ===
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(log.With(map[string]interface{}{"component": "http"})))
	router.Use(middleware.CORS())

	routes.SetupRoutes(router, routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, log),
		Dashboard: handlers.NewDashboardHandler(dashboard, loc),
		Reports:   handlers.NewReportHandler(reports, loc),
		Install:   handlers.NewInstallHandler(a.installer),
		UI:        handlers.NewUIHandler(uistate.NewManager()),
		Health:    handlers.NewHealthHandler(a.installer.Installed, engine.Policy().Name),
	}, authService, a.installer.Installed)
	a.Router = router

	return a, nil
}

func (a *App) source(clock func() time.Time, loc *time.Location) (store.Source, error) {
	cfg := a.cfg
	switch cfg.Store.Source {
	case "postgres":
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.db = db
		return store.NewRepositorySource(
			repositories.NewLeadRepository(db),
			repositories.NewOpportunityRepository(db),
			repositories.NewProjectRepository(db),
			repositories.NewSiteVisitRepository(db),
		), nil
	case "file":
		norm := store.NewNormalizer(cfg.Store.PhoneRegion, loc)
		return store.NewFileSource(cfg.Store.FixturePath, norm, a.log), nil
	case "mock":
		return store.NewMockSource(cfg.Store.MockSeed, clock), nil
	default:
		return nil, fmt.Errorf("unknown store source %q", cfg.Store.Source)
	}
}

// Serve loads data, starts the background refresher and the HTTP server,
// and shuts both down when ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if _, err := a.store.Warm(warmCtx); err != nil {
		a.log.WithError(err).Warn("snapshot cache unavailable", nil)
	}
	if err := a.store.Refresh(warmCtx); err != nil {
		a.log.WithError(err).Warn("initial refresh incomplete", nil)
	}
	cancel()

	if a.cfg.Store.RefreshInterval > 0 {
		go a.store.Run(ctx, a.cfg.Store.RefreshInterval)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", map[string]interface{}{"addr": srv.Addr, "installed": a.installer.Installed()})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.WithError(err).Error("server shutdown error", nil)
		return err
	}
	a.log.Info("server stopped", nil)
	return nil
}

func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("close database", nil)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("close redis", nil)
		}
	}
}
