package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/atolyehq/atolye/db"
	"github.com/atolyehq/atolye/internal/api"
	"github.com/atolyehq/atolye/internal/bot"
	"github.com/atolyehq/atolye/internal/chat"
	"github.com/atolyehq/atolye/internal/config"
	"github.com/atolyehq/atolye/internal/kv"
	"github.com/atolyehq/atolye/internal/log"
	"github.com/atolyehq/atolye/internal/preview"
	"github.com/atolyehq/atolye/internal/workspace"
)

// Server timeout configuration. WriteTimeout is long because chat
// responses stream over SSE.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 2 * time.Minute
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 30 * time.Second
)

var serveSimulate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the studio HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveSimulate, "simulate", false,
		"use a canned chat producer instead of the Gemini API")
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{Level: parseLevel(cfg.LogLevel), JSON: cfg.LogJSON})

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, cleanup, err := openKV(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	producer, err := buildProducer(ctx, cfg, logger)
	if err != nil {
		return err
	}

	workspaces := workspace.NewManager(store, workspace.ManagerConfig{
		HistoryDepth: cfg.HistoryDepth,
		Debounce:     time.Duration(cfg.DebounceMS) * time.Millisecond,
	}, logger)
	defer workspaces.Close()

	server, err := api.NewServer(api.ServerConfig{
		Logger:      logger,
		Bots:        bot.NewStore(store, logger),
		Workspaces:  workspaces,
		Handles:     preview.NewHandles(logger),
		Producer:    producer,
		CORSOrigins: cfg.CORSOrigins,
		TrustProxy:  cfg.TrustProxy,
		RateRPS:     cfg.RateLimitRPS,
		RateBurst:   cfg.RateLimitBurst,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	logger.Info("HTTP server ready",
		"addr", cfg.Addr,
		"api", "/api/v1/*",
		"health", "/healthz",
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down HTTP server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server: %w", err)
	}
}

// openKV selects the persistence backend: Postgres (with migrations) when
// a database URL is configured, in-memory otherwise.
func openKV(ctx context.Context, cfg *config.Config, logger log.Logger) (kv.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("no database configured, using in-memory store")
		return kv.NewMemory(), func() {}, nil
	}

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("connected to postgres store")
	return kv.NewPostgres(pool), pool.Close, nil
}

func buildProducer(ctx context.Context, cfg *config.Config, logger log.Logger) (chat.Producer, error) {
	if serveSimulate {
		logger.Info("simulation mode: chat replies are canned")
		return chat.NewScripted(
			"This is a simulated reply.\n",
			"```html\n<h1>Simulated preview</h1>\n```\n",
		), nil
	}

	producer, err := chat.NewGemini(ctx, chat.GeminiConfig{
		Model:      cfg.ModelName,
		ImageModel: cfg.ImageModel,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating chat producer: %w", err)
	}
	return producer, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
