package ports

import (
	"context"
	"image"
	"io"
	"time"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// TextExtractor turns raw upload bytes of a known format into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, format domain.Format) (string, error)
}

// OCREngine recognises text on a single preprocessed bitmap.
type OCREngine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// PageRenderer rasterises every page of a PDF, in page order.
type PageRenderer interface {
	Render(ctx context.Context, data []byte) ([]image.Image, error)
}

// Predictor maps a batch of texts to one label each.
type Predictor interface {
	Predict(ctx context.Context, texts []string) ([]string, error)
}

// Model is a fitted predictor that knows its label set.
type Model interface {
	Predictor
	Classes() []string
}

// ModelFitter fits a fresh model on labelled samples.
type ModelFitter interface {
	Fit(ctx context.Context, texts, labels []string) (Model, error)
}

// ModelStore persists fitted models.
type ModelStore interface {
	Save(ctx context.Context, model Model, path string) error
	Load(ctx context.Context, path string) (Model, error)
}

// DatasetLoader reads labelled training data.
type DatasetLoader interface {
	LoadDataset(ctx context.Context, path string) (domain.Dataset, error)
}

// DatasetSplitter partitions a dataset into train and held-out parts.
type DatasetSplitter interface {
	Split(ds domain.Dataset) (train domain.Dataset, test domain.Dataset, err error)
}

// ClassificationRecorder receives per-request observations.
type ClassificationRecorder interface {
	ObserveExtraction(format string, duration time.Duration)
	ObserveOutcome(format string, outcome domain.Outcome)
}

// DocumentRepository persists and reads job state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveResult(ctx context.Context, id string, result domain.ClassificationResult) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes classification jobs.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}
