package domain

import (
	"io"
	"time"
)

// NoTextExtracted is fed to the model in place of blank extracted text.
const NoTextExtracted = "No text extracted"

const (
	MessageInvalidFile      = "Invalid file type or format"
	MessageFailedToClassify = "Failed to classify"
)

// Upload is a caller-owned file handed to the classifier; Body is read once.
type Upload struct {
	Filename string
	Body     io.Reader
}

type Outcome string

const (
	OutcomeClassified           Outcome = "classified"
	OutcomeInvalidInput         Outcome = "invalid_input"
	OutcomeClassificationFailed Outcome = "classification_failed"
)

type ClassificationResult struct {
	Label      string  `json:"label,omitempty"`
	Outcome    Outcome `json:"outcome"`
	Format     string  `json:"format,omitempty"`
	TextLength int     `json:"text_length"`
	Err        error   `json:"-"`
}

// Message renders the caller-facing string for the result.
func (r ClassificationResult) Message() string {
	switch r.Outcome {
	case OutcomeClassified:
		return r.Label
	case OutcomeClassificationFailed:
		return MessageFailedToClassify
	default:
		return MessageInvalidFile
	}
}

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	Extension   string         `json:"extension"`
	StoragePath string         `json:"storage_path"`
	Label       string         `json:"label,omitempty"`
	Outcome     Outcome        `json:"outcome,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
