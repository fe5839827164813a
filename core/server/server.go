package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"court-reservation-api/core/cache"
	"court-reservation-api/core/config"
	"court-reservation-api/core/database"
	"court-reservation-api/core/logger"
	"court-reservation-api/core/metrics"
	"court-reservation-api/core/middleware"
	coremongo "court-reservation-api/core/mongo"
	"court-reservation-api/core/queue"
	"court-reservation-api/core/storage"
	"court-reservation-api/modules/record"
	"court-reservation-api/modules/reservation"
	"court-reservation-api/modules/reservation/repository"
	"court-reservation-api/modules/reservation/service"
	"court-reservation-api/modules/reservation/worker"
	"court-reservation-api/modules/team"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

type resources struct {
	db     *database.Database
	redis  *redis.Client
	mongo  *coremongo.Client
	client *asynq.Client
	worker *asynq.Server
}

func (r *resources) close(ctx context.Context) {
	if r.worker != nil {
		r.worker.Shutdown()
	}
	if r.client != nil {
		if err := r.client.Close(); err != nil {
			logger.Warn("Server:Close:Queue", "error", err)
		}
	}
	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			logger.Warn("Server:Close:Redis", "error", err)
		}
	}
	if r.mongo != nil {
		if err := r.mongo.Disconnect(ctx); err != nil {
			logger.Warn("Server:Close:Mongo", "error", err)
		}
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			logger.Warn("Server:Close:Database", "error", err)
		}
	}
}

// Run loads configuration, connects the configured stores and serves HTTP
// until SIGINT or SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.App.Env, cfg.App.LogLevel)

	ctx := context.Background()
	res := &resources{}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		res.close(closeCtx)
	}()

	m := metrics.New()

	var db database.IDatabase
	if cfg.Database.Enabled() {
		res.db, err = database.InitDB(cfg.Database)
		if err != nil {
			return err
		}
		if err = database.Migrate(ctx, res.db); err != nil {
			return err
		}
		db = res.db
	}

	var teamCache cache.Cache
	if cfg.Redis.Enabled() {
		res.redis, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			return err
		}
		teamCache = cache.NewRedisCache(res.redis)
	}

	if cfg.Reservation.Store == "mongo" {
		res.mongo, err = coremongo.Connect(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
	}

	teamService := team.NewService(cfg, db, teamCache)

	backend, err := reservation.NewSlotBackend(ctx, cfg, reservation.Stores{DB: db, Redis: res.redis, Mongo: res.mongo})
	if err != nil {
		return err
	}
	store := repository.NewSlotRepository(backend, cfg.Reservation, m)
	locker := reservation.NewLocker(cfg, res.redis)

	var scheduler service.PromotionScheduler
	if cfg.Queue.Enabled {
		res.client = queue.NewClient(cfg.Redis)
		scheduler = worker.NewTaskScheduler(res.client, cfg.Queue.MaxRetry)
	}
	reservationService := reservation.NewService(cfg, store, locker, teamService, scheduler, m)

	if cfg.Queue.Enabled {
		srv, mux := queue.NewServer(cfg.Redis, cfg.Queue)
		worker.Register(mux, reservationService)
		if err = srv.Start(mux); err != nil {
			return fmt.Errorf("start queue worker: %w", err)
		}
		res.worker = srv
		logger.Info("Server:Run:QueueWorkerStarted", "concurrency", cfg.Queue.Concurrency)
	}

	var uploader storage.ObjectUploader
	if cfg.Archive.Enabled {
		s3Uploader, err := storage.NewS3Uploader(cfg.Archive)
		if err != nil {
			return err
		}
		uploader = s3Uploader
	}
	recordService := record.NewService(cfg, teamService, store, uploader)

	mw := middleware.NewMiddleware(cfg.JWT.Secret, m, cfg.RateLimit)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(mw.Recover())
	e.Use(mw.RequestLogger())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	team.Init(e, cfg, teamService, mw)
	reservation.Init(e, reservationService, mw)
	record.Init(e, recordService, mw)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{echo.HeaderContentType, echo.HeaderAuthorization},
		ExposedHeaders:   []string{echo.HeaderXRequestID},
		AllowCredentials: true,
	}).Handler(e)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      corsHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server:Run:Listening", "addr", httpServer.Addr, "store", cfg.Reservation.Store)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case sig := <-sigCh:
		logger.Info("Server:Run:Shutdown", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	logger.Info("Server:Run:Stopped")
	return nil
}
