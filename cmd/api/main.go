// @title           Portfolio API
// @version         1.0
// @description     Accounts, profile records and profile images for the portfolio site.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/folio-hub/portfolio-api/docs"
	"github.com/folio-hub/portfolio-api/internal/api"
	"github.com/folio-hub/portfolio-api/internal/api/handler"
	"github.com/folio-hub/portfolio-api/internal/api/metrics"
	"github.com/folio-hub/portfolio-api/internal/core/domain"
	"github.com/folio-hub/portfolio-api/internal/core/ports"
	"github.com/folio-hub/portfolio-api/internal/core/service"
	"github.com/folio-hub/portfolio-api/internal/infrastructure/config"
	mongodb "github.com/folio-hub/portfolio-api/internal/infrastructure/db/mongo"
	redisdb "github.com/folio-hub/portfolio-api/internal/infrastructure/db/redis"
	"github.com/folio-hub/portfolio-api/internal/infrastructure/imaging"
	"github.com/folio-hub/portfolio-api/internal/infrastructure/queue"
	"github.com/folio-hub/portfolio-api/internal/infrastructure/storage"
	"github.com/folio-hub/portfolio-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fatalLog := zerolog.New(os.Stderr)
		fatalLog.Fatal().Err(err).Msg("portfolio-api stopped")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "portfolio-api",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	// Redis only backs the cross-process upload lock; run without it if it is down.
	optional := map[string]handler.DependencyCheck{}
	var locker ports.UploadLocker
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, upload lock disabled")
	} else {
		defer rdb.Close()
		locker = redisdb.NewUploadLock(rdb, cfg.Redis.LockTTL)
		optional["redis"] = handler.RedisCheck(rdb)
	}

	userRepo := mongodb.NewUserRepository(db)
	projectRepo := mongodb.NewProjectRepository(db)
	educationRepo := mongodb.NewEducationRepository(db)
	certificateRepo := mongodb.NewCertificateRepository(db)

	users := service.NewUserService(userRepo, log,
		service.OwnedKind{Name: "projects", Records: projectRepo},
		service.OwnedKind{Name: "educations", Records: educationRepo},
		service.OwnedKind{Name: "certificates", Records: certificateRepo},
	)
	auth := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, log)

	resizer := imaging.NewResizer(cfg.Upload.MaxWidth, cfg.Upload.MaxPixels)
	pool := queue.NewResizePool(cfg.Upload.Workers, resizer, queue.Metrics{
		QueueDepth: metrics.ResizeQueueDepth,
		Duration:   metrics.ResizeDuration,
	}, log)
	pool.Start(ctx)

	store, err := storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.PublicBaseURL)
	if err != nil {
		return err
	}
	images := service.NewProfileImageService(userRepo, pool, store, locker, log)

	e := api.NewRouter(api.Deps{
		Log:            log,
		JWTSecret:      cfg.JWTSecret,
		Auth:           auth,
		Users:          users,
		Images:         images,
		Projects:       service.NewRecordService[domain.Project]("project", projectRepo, userRepo, log),
		Educations:     service.NewRecordService[domain.Education]("education", educationRepo, userRepo, log),
		Certificates:   service.NewRecordService[domain.Certificate]("certificate", certificateRepo, userRepo, log),
		UploadDir:      store.Dir(),
		MaxUploadBytes: cfg.Upload.MaxBytes,
		Ready:          map[string]handler.DependencyCheck{"mongodb": handler.MongoCheck(db)},
		Optional:       optional,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
