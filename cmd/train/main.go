package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/document-classifier/internal/bootstrap"
	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/observability/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	dataPath := flag.String("data", cfg.DataFile, "training CSV with Text and Label columns")
	modelPath := flag.String("model", cfg.ModelFile, "output path for the fitted model")
	flag.Parse()

	logger := logging.NewJSONLogger("train", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := bootstrap.NewTrainer(cfg, logger).Run(ctx, *dataPath, *modelPath)
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}
	logger.Info("training_complete",
		"model_path", report.ModelPath,
		"train_size", report.TrainSize,
		"test_size", report.TestSize,
		"accuracy", report.Accuracy,
		"classes", report.Classes,
	)
}
