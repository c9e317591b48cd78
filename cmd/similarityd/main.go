package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/api"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/bow"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/events"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/service"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/textsource"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting similarity service",
		"port", cfg.Server.Port,
		"mode", cfg.Extractor.Mode,
		"bow_size", cfg.Extractor.BowSize,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(m, cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	deps := service.Deps{Metrics: m}

	var db *postgres.Client
	if cfg.Postgres.Host != "" {
		db, err = postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store := corpus.NewStore(db)
		if err := store.Migrate(ctx); err != nil {
			slog.Error("failed to migrate corpus store", "error", err)
			os.Exit(1)
		}
		deps.Store = store
		slog.Info("corpus store enabled", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	} else {
		slog.Info("postgres not configured, corpus kept in memory only")
	}

	var redisClient *pkgredis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, bag-of-words caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			deps.Cache = cache.New(cache.RedisBackend{Client: redisClient}, cfg.Redis.CacheTTL)
			slog.Info("bag-of-words cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	kafkaEnabled := len(cfg.Kafka.Brokers) > 0
	if kafkaEnabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SimilarityEvents)
		defer producer.Close()
		collector := events.NewCollector(producer, 10000)
		collector.Start(ctx)
		defer collector.Close()
		deps.Collector = collector
		slog.Info("similarity events enabled", "topic", cfg.Kafka.Topics.SimilarityEvents)
	}

	loader := textsource.New(cfg.Corpus.MaxFileBytes)
	svc := service.New(bow.NewExtractor(loader), service.OptionsFromConfig(cfg), deps)
	if err := svc.LoadCorpus(ctx); err != nil {
		slog.Error("failed to load corpus", "error", err)
		os.Exit(1)
	}

	if kafkaEnabled {
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.CorpusIngest, svc.IngestHandler())
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("corpus ingest consumer error", "error", err)
			}
		}()
		slog.Info("corpus ingestion enabled", "topic", cfg.Kafka.Topics.CorpusIngest)
	}

	checker := health.NewChecker()
	checker.Register("corpus", func(ctx context.Context) health.ComponentHealth {
		n := len(svc.Documents())
		if n == 0 {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "corpus is empty"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d documents", n)}
	})
	if db != nil {
		checker.Register("postgres", health.Ping(db.Ping, true))
	}
	var redisPing func(context.Context) error
	if redisClient != nil {
		redisPing = redisClient.Ping
	}
	checker.Register("redis", health.Ping(redisPing, false))

	mux := http.NewServeMux()
	api.New(svc, cfg.Server.AllowFileSource).Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", m.Handler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if cfg.Server.RateLimit > 0 {
		limiter := middleware.NewLimiter(cfg.Server.RateLimit, time.Minute)
		go limiter.Cleanup(ctx, 5*time.Minute)
		chain = middleware.RateLimit(limiter)(chain)
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		chain = middleware.CORS(cfg.Server.CORSOrigins)(chain)
	}
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("similarity service listening", "addr", server.Addr, "documents", len(svc.Documents()))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	// In-flight requests still track events until Shutdown returns.
	<-shutdownDone

	slog.Info("similarity service stopped")
}
