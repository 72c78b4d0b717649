// cmd/review-responder/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"review-responder/internal/api"
	"review-responder/internal/common/camunda"
	"review-responder/internal/common/config"
	"review-responder/internal/common/llm"
	"review-responder/internal/common/logger"
	"review-responder/internal/common/observability"
	"review-responder/web"

	analyzereview "review-responder/internal/workers/review-reply/analyze-review"
	draftreply "review-responder/internal/workers/review-reply/draft-reply"
	generatereply "review-responder/internal/workers/review-reply/generate-reply"
	notifyescalation "review-responder/internal/workers/review-reply/notify-escalation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting review responder...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint, zapLog)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Completion client ---
	completer, err := llm.NewCompleter(ctx, llm.Config{
		Provider:       cfg.LLM.Provider,
		Model:          cfg.LLM.Model,
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Timeout:        config.GetDuration(cfg.LLM.Timeout),
		MaxTokens:      cfg.LLM.MaxTokens,
		MaxRetries:     cfg.LLM.MaxRetries,
		RetryBaseDelay: config.GetDuration(cfg.LLM.RetryBaseDelay),
	}, log)
	if err != nil {
		zapLog.Fatal("completion client setup failed", zap.Error(err))
	}

	// --- Pipeline ---
	escCfg := cfg.Notifications.Escalation
	notifier, err := notifyescalation.NewHandler(ctx, &notifyescalation.Config{
		Enabled:   escCfg.Enabled,
		Region:    escCfg.Region,
		TopicARN:  escCfg.TopicARN,
		EmailTo:   notifyescalation.SplitRecipients(escCfg.EmailTo),
		FromEmail: escCfg.FromEmail,
		Timeout:   config.GetDuration(escCfg.Timeout),
	}, log)
	if err != nil {
		zapLog.Fatal("escalation notifier setup failed", zap.Error(err))
	}

	replyWorkerCfg := config.GetWorkerConfig(cfg, generatereply.TaskType)
	generator, err := generatereply.NewHandler(generatereply.HandlerOptions{
		Config:        &generatereply.Config{Timeout: config.GetDuration(replyWorkerCfg.Timeout)},
		Profile:       cfg.Profile.BusinessProfile(),
		Analyzer:      analyzereview.NewHandler(&analyzereview.Config{Temperature: cfg.LLM.AnalysisTemperature}, completer, log),
		Drafter:       draftreply.NewHandler(&draftreply.Config{Temperature: cfg.LLM.DraftingTemperature}, completer, log),
		Notifier:      notifier,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		zapLog.Fatal("pipeline setup failed", zap.Error(err))
	}

	// --- Zeebe workers (optional) ---
	var readiness api.ReadinessChecker
	var workers []*camunda.Worker
	if cfg.Camunda.Enabled {
		zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
			RetryConfig:            camunda.DefaultRetryConfig,
		}, log)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		zapLog.Info("Zeebe client connected successfully")
		readiness = zeebe

		workers = append(workers,
			camunda.StartWorker(zeebe.GetClient(), generatereply.TaskType, replyWorkerCfg, generator.Handle, log))
		if escCfg.Enabled {
			workers = append(workers,
				camunda.StartWorker(zeebe.GetClient(), notifyescalation.TaskType, config.GetWorkerConfig(cfg, notifyescalation.TaskType), notifier.Handle, log))
		}
	}

	// --- HTTP ---
	router := api.NewRouter(api.Options{
		Generator:      generator,
		Readiness:      readiness,
		Static:         web.Static(),
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		MetricsEnabled: cfg.Observability.MetricsEnabled,
		Logger:         log,
	})
	server := api.NewServer(cfg.Server, router, log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case <-ctx.Done():
		zapLog.Info("Shutdown signal received, stopping...")
	case err := <-serverErr:
		if err != nil {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop()
	}
	generator.Wait()

	zapLog.Info("Review responder stopped gracefully")
}
