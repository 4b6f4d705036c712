// Package app assembles repositories, services and HTTP handlers into a
// runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/court-facilities-api/internal/handler"
	"github.com/noah-isme/court-facilities-api/internal/repository"
	"github.com/noah-isme/court-facilities-api/internal/service"
	"github.com/noah-isme/court-facilities-api/internal/termparse"
	"github.com/noah-isme/court-facilities-api/pkg/cache"
	"github.com/noah-isme/court-facilities-api/pkg/config"
	"github.com/noah-isme/court-facilities-api/pkg/database"
	"github.com/noah-isme/court-facilities-api/pkg/jobs"
	"github.com/noah-isme/court-facilities-api/pkg/storage"
)

const (
	shutdownTimeout = 15 * time.Second
	exportQueueName = "schedule_exports"
)

// App owns the server's long-lived resources.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sqlx.DB
	redis  *redis.Client

	metrics *service.MetricsService
	exports *service.ScheduleExportService
	queue   *jobs.Queue
	router  *gin.Engine
}

// New connects to PostgreSQL and Redis and wires every component.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := database.NewPostgres(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(ctx, db, logger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("migrations applied", zap.Strings("versions", applied))
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		// Rooms still work uncached.
		logger.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	a := &App{cfg: cfg, logger: logger, db: db, redis: redisClient}
	if err := a.wire(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire() error {
	cfg := a.cfg
	validate := validator.New()
	a.metrics = service.NewMetricsService()

	documentStore, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		return err
	}
	photoStore, err := storage.NewLocalStorage(cfg.Photos.StorageDir)
	if err != nil {
		return err
	}
	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return err
	}
	documentSigner := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)
	photoSigner := storage.NewSignedURLSigner(cfg.Photos.SignedURLSecret, cfg.Photos.SignedURLTTL)
	exportSigner := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	users := repository.NewUserRepository(a.db)
	buildings := repository.NewBuildingRepository(a.db)
	rooms := repository.NewRoomRepository(a.db)
	terms := repository.NewCourtTermRepository(a.db)
	assignments := repository.NewTermAssignmentRepository(a.db)
	personnel := repository.NewTermPersonnelRepository(a.db)
	documents := repository.NewTermDocumentRepository(a.db)
	exportJobs := repository.NewExportJobRepository(a.db)

	cacheSvc := service.NewCacheService(
		repository.NewCacheRepository(a.redis, a.logger),
		a.metrics,
		cfg.Rooms.CacheTTL,
		a.logger,
		cfg.Rooms.CacheEnabled && a.redis != nil,
	)

	authSvc := service.NewAuthService(users, validate, a.logger, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	buildingSvc := service.NewBuildingService(buildings, cacheSvc, validate, a.logger)
	roomSvc := service.NewRoomService(rooms, buildings, cacheSvc, photoStore, photoSigner, users, validate, a.logger, service.RoomServiceConfig{
		CacheTTL:         cfg.Rooms.CacheTTL,
		MaxPhotoSize:     cfg.Photos.MaxFileSizeBytes,
		AllowedPhotoMIME: cfg.Photos.AllowedMIMEs,
		APIPrefix:        cfg.APIPrefix,
	})
	termSvc := service.NewCourtTermService(terms, assignments, personnel, users, validate, a.logger)
	assignmentSvc := service.NewTermAssignmentService(assignments, terms, roomSvc, validate, a.logger)
	personnelSvc := service.NewTermPersonnelService(personnel, terms, validate, a.logger)
	documentSvc := service.NewTermDocumentService(documents, documentStore, documentSigner, users, a.metrics, a.logger, service.TermDocumentServiceConfig{
		MaxFileSize:  cfg.Documents.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Documents.AllowedMIMEs,
		APIPrefix:    cfg.APIPrefix,
	})
	importSvc := service.NewTermImportService(termparse.New(), roomSvc, documentSvc, terms, termSvc, users, a.metrics, validate, a.logger)

	exporter := service.NewExportService(termSvc, exportStore, exportSigner, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.ResultTTL,
	}, a.logger)
	a.queue = jobs.NewQueue(exportQueueName, func(ctx context.Context, job jobs.Job) error {
		return a.exports.Handle(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		OnExhausted: func(ctx context.Context, job jobs.Job, err error) {
			a.exports.OnExhausted(ctx, job, err)
		},
		Logger: a.logger.Named(exportQueueName),
	})
	a.exports = service.NewScheduleExportService(exportJobs, terms, a.queue, exporter, exportStore, exportSigner, a.metrics, a.logger, service.ScheduleExportConfig{
		ResultTTL:       cfg.Exports.ResultTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})

	a.router = newRouter(routeDeps{
		cfg:         cfg,
		logger:      a.logger,
		metrics:     a.metrics,
		auth:        authSvc,
		authH:       handler.NewAuthHandler(authSvc),
		buildingH:   handler.NewBuildingHandler(buildingSvc),
		roomH:       handler.NewRoomHandler(roomSvc),
		termH:       handler.NewCourtTermHandler(termSvc),
		assignmentH: handler.NewTermAssignmentHandler(assignmentSvc),
		personnelH:  handler.NewTermPersonnelHandler(personnelSvc),
		documentH:   handler.NewTermDocumentHandler(documentSvc),
		importH:     handler.NewTermImportHandler(importSvc),
		exportH:     handler.NewExportHandler(a.exports),
		metricsH:    handler.NewMetricsHandler(a.metrics, a.readinessChecks()),
	})
	return nil
}

func (a *App) readinessChecks() map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"postgres": a.db.PingContext,
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		}
	}
	return checks
}

// Handler exposes the HTTP router.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves HTTP and runs the export workers until ctx is cancelled, then
// drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.queue.Start(ctx)
	defer a.queue.Stop()
	if n := a.exports.RecoverPendingJobs(ctx); n > 0 {
		a.logger.Info("re-queued pending exports", zap.Int("count", n))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.exports.RunCleanup(gctx)
		return nil
	})
	g.Go(func() error {
		a.logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", a.cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases database and cache connections.
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
