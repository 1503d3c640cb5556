package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aria-assistant/aria/pkg/api"
	"github.com/aria-assistant/aria/pkg/assistant"
	"github.com/aria-assistant/aria/pkg/config"
	"github.com/aria-assistant/aria/pkg/intent"
	"github.com/aria-assistant/aria/pkg/llm"
	"github.com/aria-assistant/aria/pkg/llm/factory"
	"github.com/aria-assistant/aria/pkg/spotify"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	switch flag.Arg(0) {
	case "auth":
		if err := runAuth(ctx, cfg, logger); err != nil {
			logger.Error("authorization failed", "error", err)
			os.Exit(1)
		}
	case "", "serve":
		if err := runServe(ctx, cfg, logger); err != nil {
			logger.Error("server exited with error", "error", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (expected: serve, auth)\n", flag.Arg(0))
		os.Exit(2)
	}
}

// runAuth walks the user through the Spotify authorization flow and verifies
// the resulting token.
func runAuth(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if _, err := spotify.Login(ctx, cfg.Spotify, logger); err != nil {
		return err
	}

	session := spotify.NewSession(ctx, cfg.Spotify, logger)
	if err := session.Initialize(ctx); err != nil {
		return fmt.Errorf("verify token: %w", err)
	}
	fmt.Printf("Authorized as %s. Token cached at %s.\n", session.User(), cfg.Spotify.TokenCache)
	return nil
}

// runServe wires the pipeline and serves both transports until the context is
// cancelled.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	provider, providerID, err := factory.NewProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create llm provider: %w", err)
	}
	_, opts, err := cfg.GetActiveProvider()
	if err != nil {
		return err
	}
	logger.Info("llm provider ready", "provider", providerID, "model", opts.Model)

	gateway := llm.NewGateway(provider, opts)
	resolver := intent.NewResolver(gateway, logger)

	session := spotify.NewSession(ctx, cfg.Spotify, logger)
	if err := session.Initialize(ctx); err != nil {
		// The assistant still answers queries; playback commands report
		// the authentication problem per request.
		logger.Warn("spotify unavailable", "error", err)
	}

	dispatcher := assistant.NewDispatcher(session, logger)
	pipeline := assistant.NewPipeline(resolver, dispatcher, logger)

	srv := api.NewServer(cfg.HTTP, pipeline, session, providerID, logger)
	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("aria listening", "addr", cfg.HTTP.Addr)
		errs <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
