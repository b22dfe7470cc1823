package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/document-classifier/internal/bootstrap"
	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/observability/logging"
	"github.com/kirillkom/document-classifier/internal/observability/metrics"
)

const service = "worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(service)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Logger:   logger,
		Recorder: workerMetrics,
		WithJobs: true,
	})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject, "metrics_port", cfg.WorkerMetricsPort)
	err = app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		if doc, err := app.Repo.GetByID(processCtx, documentID); err == nil {
			workerMetrics.ObserveQueueLag(service, time.Since(doc.CreatedAt))
		}

		started := time.Now()
		workerMetrics.StartDocument()
		err := app.ProcessUC.ProcessByID(processCtx, documentID)
		workerMetrics.FinishDocument(service, time.Since(started), err)
		if err == nil {
			logger.Info("document_processed", "document_id", documentID, "duration_ms", time.Since(started).Milliseconds())
		}
		return err
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
