package httpadapter

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/core/domain"
)

type classifierFake struct {
	result   domain.ClassificationResult
	filename string
	body     string
}

func (f *classifierFake) Classify(ctx context.Context, upload domain.Upload) string {
	return f.ClassifyDetailed(ctx, upload).Message()
}

func (f *classifierFake) ClassifyDetailed(_ context.Context, upload domain.Upload) domain.ClassificationResult {
	raw, _ := io.ReadAll(upload.Body)
	f.filename = upload.Filename
	f.body = string(raw)
	return f.result
}

type ingestSuccessFake struct{}

func (f ingestSuccessFake) Upload(_ context.Context, filename string, body io.Reader) (*domain.Document, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", io.EOF)
	}

	now := time.Now().UTC()
	return &domain.Document{
		ID:          "doc-1",
		Filename:    filename,
		Extension:   domain.ExtensionFromFilename(filename),
		StoragePath: "doc-1_" + filename,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

type ingestErrFake struct {
	err error
}

func (f ingestErrFake) Upload(context.Context, string, io.Reader) (*domain.Document, error) {
	return nil, f.err
}

type docsFake struct {
	err error
}

func (f docsFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{
		ID:       id,
		Filename: "a.txt",
		Label:    "memo",
		Outcome:  domain.OutcomeClassified,
		Status:   domain.StatusReady,
	}, nil
}

func classifiedFake(label string) *classifierFake {
	return &classifierFake{result: domain.ClassificationResult{Label: label, Outcome: domain.OutcomeClassified, Format: "txt"}}
}

func newTestHandler(cfg config.Config) http.Handler {
	return NewRouter(cfg, classifiedFake("memo"), ingestSuccessFake{}, docsFake{}).Handler()
}

func multipartRequest(t *testing.T, target, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
