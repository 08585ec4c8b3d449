package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/deep020206/FUTURE-FS-01/internal/config"
	"github.com/deep020206/FUTURE-FS-01/internal/handler"
	"github.com/deep020206/FUTURE-FS-01/internal/intake"
	"github.com/deep020206/FUTURE-FS-01/internal/logging"
	"github.com/deep020206/FUTURE-FS-01/internal/metrics"
	"github.com/deep020206/FUTURE-FS-01/internal/ratelimit"
	"github.com/deep020206/FUTURE-FS-01/internal/repository"
	"github.com/deep020206/FUTURE-FS-01/internal/service"
	"github.com/deep020206/FUTURE-FS-01/pkg/mailer"
)

const shutdownTimeout = 5 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(2)
	}

	logger := logging.Setup(cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logging.Fatal("server exited", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Server, logger *slog.Logger) error {
	store, err := repository.Open(ctx, cfg.DatabaseURL, repository.OpenOptions{MongoDatabase: cfg.MongoDatabase})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("close store", "error", err)
		}
	}()
	logger.Info("store connected", "backend", store.Backend)

	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied", "backend", store.Backend)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	smtp := mailer.NewSMTPClient(mailer.Config{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		Credentials: mailer.Credentials{
			Username: cfg.EmailUser,
			Password: cfg.EmailPass,
		},
		Timeout: cfg.NotifyTimeout,
	})
	if smtp.Configured() {
		logger.Info("email notification enabled", "smtp_host", cfg.SMTPHost, "notify_to", cfg.NotifyRecipient())
	} else {
		logger.Warn("email notification disabled: EMAIL_USER/EMAIL_PASS not set")
	}

	contactService := service.NewContactService(
		store.Contacts,
		service.NewMailNotifier(smtp, cfg.NotifyRecipient()),
		service.ContactServiceConfig{
			Validator: intake.Validator{
				CheckEmailFormat: cfg.CheckEmailFormat,
				MaxMessageLength: cfg.MaxMessageLength,
			},
			NotifyTimeout: cfg.NotifyTimeout,
			Logger:        logger,
			Metrics:       m,
		},
	)

	limitStore, closeLimit, err := newRateLimitStore(ctx, cfg.RedisURL, logger)
	if err != nil {
		return err
	}
	defer closeLimit()

	router := handler.NewRouter(handler.RouterConfig{
		Handler:  handler.New(store, cfg.AllowedOrigins),
		Contacts: handler.NewContactHandler(contactService, logger),
		RateLimiter: handler.NewRateLimiter(limitStore, cfg.RateLimit, cfg.RateWindow,
			handler.WithRateLimitLogger(logger),
			handler.WithRateLimitMetrics(m),
			handler.WithTrustedProxyCount(cfg.TrustedProxies),
		),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:         logger,
	})

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.WriteTimeout(),
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newRateLimitStore returns a Redis store when redisURL is set, otherwise an
// in-process one.
func newRateLimitStore(ctx context.Context, redisURL string, logger *slog.Logger) (ratelimit.Store, func(), error) {
	if redisURL == "" {
		s := ratelimit.NewMemoryStore()
		return s, func() { _ = s.Close() }, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		// requests fail open until Redis is reachable
		logger.Warn("redis unreachable at startup", "error", err)
	}
	logger.Info("rate limit windows shared through redis", "addr", opts.Addr)
	return ratelimit.NewRedisStore(client), func() { _ = client.Close() }, nil
}
