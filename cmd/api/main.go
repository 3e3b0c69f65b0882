package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/BruksfildServices01/termine-api/internal/archive"
	"github.com/BruksfildServices01/termine-api/internal/audit"
	"github.com/BruksfildServices01/termine-api/internal/config"
	dbpkg "github.com/BruksfildServices01/termine-api/internal/db"
	domain "github.com/BruksfildServices01/termine-api/internal/domain/appointment"
	"github.com/BruksfildServices01/termine-api/internal/infra/memstore"
	"github.com/BruksfildServices01/termine-api/internal/infra/repository"
	"github.com/BruksfildServices01/termine-api/internal/observability/metrics"
	"github.com/BruksfildServices01/termine-api/internal/ratelimit"
	"github.com/BruksfildServices01/termine-api/internal/routes"
	"github.com/BruksfildServices01/termine-api/internal/seed"
	"github.com/BruksfildServices01/termine-api/internal/timezone"
	"github.com/BruksfildServices01/termine-api/pkg/logging"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	if !timezone.IsValid(cfg.Timezone) {
		log.Error("invalid TIMEZONE", "timezone", cfg.Timezone)
		os.Exit(1)
	}

	if cfg.InsecureJWTSecret() {
		if !cfg.UseMemoryStore {
			log.Error("JWT_SECRET is not set, refusing to start on the database store")
			os.Exit(1)
		}
		log.Warn("JWT_SECRET is not set, tokens are signed with the default secret")
	}

	store, err := openStore(cfg, log)
	if err != nil {
		log.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	if err := seed.Run(context.Background(), store, cfg, time.Now(), log); err != nil {
		log.Error("failed to seed store", "error", err)
		os.Exit(1)
	}

	// ======================================================
	// OPTIONAL BACKENDS
	// ======================================================
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, login throttling degraded", "addr", cfg.RedisAddr, "error", err)
		}
		cancel()
	}

	reportArchive := archive.NewReportArchive(cfg)
	if reportArchive != nil {
		log.Info("report archive enabled", "bucket", cfg.ReportBucket)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	auditDispatcher := audit.NewDispatcher(audit.New(store), log)
	defer auditDispatcher.Close()

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Config:   cfg,
		Store:    store,
		Logger:   log,
		Audit:    auditDispatcher,
		Metrics:  metrics.NewBookingMetrics(reg),
		Gatherer: reg,
		Limiter:  ratelimit.NewLoginLimiter(rdb, cfg.LoginMaxAttempts, cfg.LoginWindow),
		Archive:  reportArchive,
		Clock:    time.Now,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", "addr", cfg.Addr(), "timezone", cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func openStore(cfg *config.Config, log *logging.Logger) (domain.Store, error) {
	if cfg.UseMemoryStore {
		log.Warn("using in-memory store, data is lost on restart")
		if cfg.SeedAdminUser == "" {
			log.Warn("SEED_ADMIN_USER is not set, nobody can log in to the memory store")
		}
		return memstore.New(), nil
	}

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := dbpkg.Migrate(db); err != nil {
		return nil, err
	}
	return repository.NewAppointmentGormRepository(db), nil
}
