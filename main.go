package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cdr.dev/slog/v3"
	"cdr.dev/slog/v3/sloggers/sloghuman"

	"github.com/xiaot623/gogo/roundtable/internal/adapter/llm"
	"github.com/xiaot623/gogo/roundtable/internal/config"
	"github.com/xiaot623/gogo/roundtable/internal/observe"
	"github.com/xiaot623/gogo/roundtable/internal/repository"
	"github.com/xiaot623/gogo/roundtable/internal/service"
	handler "github.com/xiaot623/gogo/roundtable/internal/transport/http"
	"github.com/xiaot623/gogo/roundtable/internal/transport/ws"
	"github.com/xiaot623/gogo/roundtable/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := slog.Make(sloghuman.Sink(os.Stderr)).Leveled(parseLevel(cfg.LogLevel))
	ctx := context.Background()

	logger.Info(ctx, "starting roundtable",
		slog.F("http_port", cfg.HTTPPort),
		slog.F("store", cfg.StoreDriver),
		slog.F("mode", cfg.Mode),
	)

	// Initialize store
	db, err := repository.Open(cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize store", slog.Error(err))
	}
	defer db.Close()

	hook := observe.NewLogHook(logger.Named("llm"))

	// Initialize LLM client
	clientOpts := []llm.ClientOption{llm.WithHook(hook)}
	for _, a := range llm.DefaultAdapters(cfg.Providers) {
		clientOpts = append(clientOpts, llm.WithAdapter(a))
	}
	llmClient := llm.NewClient(llm.NewInvoker(logger.Named("llm"), cfg.Mode, cfg.LLMTimeout), clientOpts...)

	// Initialize policy engine
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize policy engine", slog.Error(err))
	}
	validator := service.NewCredentialValidator(policyEngine, hook, cfg.ValidateConcurrency)

	// Watch hub
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	hub := ws.NewHub(logger.Named("watch"))
	go hub.Run(hubCtx)

	// Initialize service
	svc := service.New(db, llmClient, validator, logger.Named("service"),
		service.WithHook(hook),
		service.WithPublisher(hub),
	)

	watch := ws.NewServer(hub, svc, logger.Named("watch"), cfg.CORSOrigin)
	server := handler.NewServer(svc, watch, logger.Named("http"), cfg.CORSOrigin)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "failed to start server", slog.Error(err))
		}
	}()

	logger.Info(ctx, "api started", slog.F("port", cfg.HTTPPort))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn(ctx, "failed to shutdown server gracefully", slog.Error(err))
	}
	stopHub()

	logger.Info(ctx, "roundtable stopped")
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
