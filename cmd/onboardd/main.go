// onboardd serves the conversational employee onboarding assistant.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/hrtools/onboardbot/api"
	"github.com/hrtools/onboardbot/config"
	"github.com/hrtools/onboardbot/extract"
	"github.com/hrtools/onboardbot/flow"
	"github.com/hrtools/onboardbot/session"
	"github.com/hrtools/onboardbot/sink"
	"github.com/hrtools/onboardbot/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recordSink, err := sink.NewSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := recordSink.Close(); closeErr != nil {
			slog.Error("Failed to close record sink", "error", closeErr)
		}
	}()
	if err := recordSink.Ping(ctx); err != nil {
		return err
	}
	slog.Info("Record sink ready", "db_path", cfg.DBPath)

	var stateCache store.Cache[flow.State]
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
		stateCache = store.NewRedis[flow.State](client, cfg.SessionTTL)
		slog.Info("Using Redis session store", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
	} else {
		stateCache = store.NewMemory[flow.State]()
		slog.Info("Using in-memory session store")
	}

	extractor, err := buildExtractor(ctx, cfg)
	if err != nil {
		return err
	}

	manager := session.NewManager(flow.New(recordSink), stateCache)
	server := api.NewServer(manager, recordSink, extractor)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.Logger(server.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "port", cfg.Port)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

func buildExtractor(ctx context.Context, cfg *config.Config) (extract.Extractor, error) {
	ruleBased := extract.NewRuleBased()
	if cfg.OpenAI.APIKey == "" {
		slog.Warn("OPENAI_API_KEY not set, file extraction is rule-based only")
		return ruleBased, nil
	}
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	toolBased, err := extract.NewToolBased(chatModel)
	if err != nil {
		return nil, err
	}
	slog.Info("LLM extraction enabled", "model", cfg.OpenAI.Model)
	return extract.NewFailback(toolBased, ruleBased), nil
}
