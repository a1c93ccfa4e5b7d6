// Package main wires the veridoc service: storage, the audit outbox relay,
// and the HTTP surface. Business logic lives in the internal packages.
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
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"veridoc/internal/comparison"
	"veridoc/internal/comparison/sanitize"
	"veridoc/internal/extraction"
	jwttoken "veridoc/internal/jwt_token"
	"veridoc/internal/moderation"
	moderationhandler "veridoc/internal/moderation/handler"
	"veridoc/internal/platform/config"
	"veridoc/internal/platform/httpserver"
	"veridoc/internal/platform/kafka/producer"
	"veridoc/internal/platform/logger"
	"veridoc/internal/platform/metrics"
	platformredis "veridoc/internal/platform/redis"
	"veridoc/internal/submission"
	submissionhandler "veridoc/internal/submission/handler"
	"veridoc/internal/verification"
	verificationhandler "veridoc/internal/verification/handler"
	"veridoc/pkg/platform/audit"
	auditpublisher "veridoc/pkg/platform/audit/publisher"
	auditmemory "veridoc/pkg/platform/audit/store/memory"
	auditpostgres "veridoc/pkg/platform/audit/store/postgres"
	auditworker "veridoc/pkg/platform/audit/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("veridoc exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	// Storage. Without a DSN every store falls back to its in-memory
	// implementation, which is enough for local development.
	var (
		db              *sql.DB
		submissionStore submission.Store
		moderationStore moderation.Store
		signalsStore    moderation.SignalsStore
		auditStore      audit.Store
	)
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		submissionStore = submission.NewPostgresStore(db)
		moderationStore = moderation.NewPostgresStore(db)
		signalsStore = moderation.NewPostgresSignalsStore(db)
		auditStore = auditpostgres.New(db)
	} else {
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
		submissionStore = submission.NewInMemoryStore()
		moderationStore = moderation.NewInMemoryStore()
		signalsStore = moderation.NewInMemorySignalsStore()
		auditStore = auditmemory.NewInMemoryStore()
	}

	auditor := auditpublisher.NewPublisher(auditStore, auditpublisher.WithLogger(log))
	defer auditor.Close()

	var locker verification.Locker = verification.NewMemoryLocker()
	rdb, err := platformredis.New(cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
		locker = verification.NewRedisLocker(rdb.Client)
	} else {
		log.Warn("REDIS_ADDR not set, using in-process verification locks")
	}

	extractor, err := extraction.NewClient(
		cfg.ExtractionEndpoint, cfg.ExtractionAPIKey, cfg.ExtractionTimeout,
		extraction.WithClientLogger(log),
	)
	if err != nil {
		return fmt.Errorf("build extraction client: %w", err)
	}

	engine, err := comparison.NewEngine(
		sanitize.DefaultRegistry(),
		comparison.NewComparator(cfg.MatchThreshold),
		comparison.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("build comparison engine: %w", err)
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "veridoc", "veridoc")
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	submissionService := submission.NewService(submissionStore, auditor, m, log)
	moderationService := moderation.NewService(moderationStore, signalsStore, submissionStore, auditor, m, log)
	verificationService := verification.NewService(
		submissionStore, extractor, engine, moderationService, locker, auditor, m, log)

	router := chi.NewRouter()
	router.Get("/healthz", handleHealth(db, rdb))
	router.Handle("/metrics", promhttp.Handler())
	submissionhandler.New(submissionService, log, m, validator).Register(router)
	moderationhandler.New(moderationService, auditor, log, m, validator, cfg.SignalsSecretHash).Register(router)
	verificationhandler.New(verificationService, submissionService, log, m, validator).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)

	// Outbox relay: needs both the outbox table and a broker to relay to.
	if db != nil && len(cfg.KafkaBrokers) > 0 {
		kafkaProducer, err := producer.New(cfg.KafkaBrokers, producer.WithLogger(log))
		if err != nil {
			return fmt.Errorf("build kafka producer: %w", err)
		}
		defer kafkaProducer.Close()

		relay := auditworker.NewWorker(db, kafkaProducer, log)
		if err := kafkaProducer.EnsureTopics(ctx, 1, 1, relay.Topics()...); err != nil {
			return fmt.Errorf("ensure audit topics: %w", err)
		}
		group.Go(func() error {
			return relay.Run(ctx)
		})
	} else {
		log.Warn("audit outbox relay disabled", "postgres", db != nil, "brokers", len(cfg.KafkaBrokers))
	}

	group.Go(func() error {
		log.Info("starting veridoc", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("veridoc stopped")
	return nil
}

func handleHealth(db *sql.DB, rdb *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, `{"status":"postgres unavailable"}`, http.StatusServiceUnavailable)
				return
			}
		}
		if rdb != nil {
			if err := rdb.Health(ctx); err != nil {
				http.Error(w, `{"status":"redis unavailable"}`, http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
