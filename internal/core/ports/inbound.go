package ports

import (
	"context"
	"io"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// DocumentClassifier is the inbound contract for synchronous classification.
// Implementations never fail: every failure is folded into the result.
type DocumentClassifier interface {
	Classify(ctx context.Context, upload domain.Upload) string
	ClassifyDetailed(ctx context.Context, upload domain.Upload) domain.ClassificationResult
}

// DocumentIngestor is the inbound contract for queued classification jobs.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename string, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for job state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor classifies a previously ingested document.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// ModelTrainer runs the offline training pipeline end to end.
type ModelTrainer interface {
	Run(ctx context.Context, dataPath, modelPath string) (domain.TrainReport, error)
}
