package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/core/ports"
	"github.com/kirillkom/document-classifier/internal/core/usecase"
	"github.com/kirillkom/document-classifier/internal/infrastructure/extractor"
	"github.com/kirillkom/document-classifier/internal/infrastructure/ocr/tesseract"
	"github.com/kirillkom/document-classifier/internal/infrastructure/pdfrender"
	"github.com/kirillkom/document-classifier/internal/infrastructure/queue/nats"
	"github.com/kirillkom/document-classifier/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/document-classifier/internal/infrastructure/resilience"
	"github.com/kirillkom/document-classifier/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/document-classifier/internal/infrastructure/textmodel"
)

type Options struct {
	Logger   *slog.Logger
	Recorder ports.ClassificationRecorder
	// WithJobs connects Postgres, object storage and NATS for async classification.
	WithJobs bool
}

type App struct {
	Config config.Config

	Classifier ports.DocumentClassifier

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	model, err := textmodel.NewFileStore().Load(ctx, cfg.ModelFile)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	logger.Info("model_loaded", "path", cfg.ModelFile, "classes", model.Classes())

	engine := tesseract.New(cfg.OCRLanguage)
	renderer := pdfrender.New(pdfrender.Options{
		BinaryPath: cfg.PDFToPPMPath,
		DPI:        cfg.PDFRenderDPI,
	})
	dispatcher := extractor.NewDispatcher(engine, renderer, extractor.Options{PDFWorkers: cfg.PDFOCRWorkers})
	classifier := usecase.NewClassifyUseCase(dispatcher, model, opts.Recorder, logger)

	app := &App{
		Config:     cfg,
		Classifier: classifier,
	}
	if !opts.WithJobs {
		return app, nil
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		Guard:  resilience.NewGuard(resilience.DefaultConfig()),
		Logger: logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	app.Queue = queue
	app.Repo = repo
	app.IngestUC = usecase.NewIngestDocumentUseCase(repo, storage, queue)
	app.ProcessUC = usecase.NewProcessDocumentUseCase(repo, storage, classifier)
	app.closeFn = func() {
		queue.Close()
		_ = db.Close()
	}
	return app, nil
}

// NewTrainer wires the offline training pipeline.
func NewTrainer(cfg config.Config, logger *slog.Logger) *usecase.TrainModelUseCase {
	opts := textmodel.DefaultRegressionOptions()
	opts.MaxIter = cfg.MaxIter
	return usecase.NewTrainModelUseCase(
		textmodel.CSVLoader{},
		textmodel.Splitter{TestSize: cfg.TestSize, Seed: cfg.RandomState},
		textmodel.NewTrainer(opts, logger),
		textmodel.NewFileStore(),
		logger,
	)
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
