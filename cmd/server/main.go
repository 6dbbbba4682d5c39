package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"willgen/internal/admin"
	"willgen/internal/audit"
	"willgen/internal/email"
	"willgen/internal/platform/config"
	"willgen/internal/platform/httpserver"
	"willgen/internal/platform/logger"
	"willgen/internal/platform/middleware"
	"willgen/internal/platform/redis"
	"willgen/internal/ratelimit"
	"willgen/internal/retention"
	"willgen/internal/will/handler"
	"willgen/internal/will/metrics"
	"willgen/internal/will/service"
	"willgen/internal/will/store/submission"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.PDFDir, 0o700); err != nil {
		return fmt.Errorf("create document directory: %w", err)
	}

	subStore, auditStore, cleanup, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	trailOpts := []audit.Option{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := audit.NewPublisher(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer publisher.Close()
		trailOpts = append(trailOpts, audit.WithPublisher(publisher))
		log.Info("audit events streaming to kafka", "topic", cfg.AuditTopic)
	}
	trail := audit.NewTrail(auditStore, log, trailOpts...)

	rateStore, err := openRateStore(cfg, log)
	if err != nil {
		return err
	}

	svcOpts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
	}
	if cfg.SMTPHost != "" {
		mailOpts := []email.Option{email.WithLogger(log)}
		if cfg.SMTPUser != "" {
			mailOpts = append(mailOpts, email.WithAuth(cfg.SMTPUser, cfg.SMTPPass))
		}
		svcOpts = append(svcOpts, service.WithMailer(email.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, mailOpts...)))
		log.Info("email delivery enabled", "host", cfg.SMTPHost)
	}
	svc := service.New(subStore, trail, cfg.PDFDir, svcOpts...)

	willHandler := handler.New(svc, log, handler.WithRateLimits(
		ratelimit.Middleware(rateStore, ratelimit.LimitGenerate, log),
		ratelimit.Middleware(rateStore, ratelimit.LimitValidate, log),
		ratelimit.Middleware(rateStore, ratelimit.LimitDefault, log),
	))

	auth := admin.NewAuthenticator(cfg.AdminUsername, cfg.AdminPasswordHash, cfg.AdminJWTKey, cfg.AdminSessionTTL)
	adminHandler := admin.New(auth, svc, auditStore, trail, log, cfg.AdminSessionTTL)
	if cfg.AdminPasswordHash == "" {
		log.Warn("ADMIN_PASSWORD_HASH not set, admin console logins will fail")
	}

	router := chi.NewRouter()
	router.Use(
		middleware.Recovery(log),
		middleware.RequestID,
		middleware.ClientMetadata,
		middleware.Logger(log),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	willHandler.Register(router)
	adminHandler.Register(router)

	srv := httpserver.New(cfg.Addr, router)
	sweeper := retention.New(subStore, trail,
		time.Duration(cfg.RetentionDays)*24*time.Hour, cfg.RetentionSweep,
		retention.WithLogger(log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := sweeper.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStores selects postgres when DATABASE_URL is set, in-memory otherwise.
// Both stores share one connection pool.
func openStores(ctx context.Context, cfg config.Server, log *slog.Logger) (submission.Store, audit.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, submissions and audit records held in memory")
		return submission.NewMemoryStore(), audit.NewMemoryStore(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("ping database: %w", err)
	}

	subStore := submission.NewPostgresStore(db)
	if err := subStore.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("submissions schema: %w", err)
	}
	auditStore := audit.NewPostgresStore(db)
	if err := auditStore.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("audit schema: %w", err)
	}
	return subStore, auditStore, func() { db.Close() }, nil
}

// openRateStore selects redis when REDIS_URL is set, in-memory otherwise.
// In-memory limits are per-process, so multi-replica deployments need redis.
func openRateStore(cfg config.Server, log *slog.Logger) (ratelimit.Store, error) {
	client, err := redis.New(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		log.Warn("REDIS_URL not set, rate limits tracked in memory")
		return ratelimit.NewMemoryStore(), nil
	}
	return ratelimit.NewRedisStore(client.Client), nil
}
