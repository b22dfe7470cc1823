package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

// ClassifyUseCase turns an uploaded file into a single label. It never fails:
// every error is folded into the returned ClassificationResult.
type ClassifyUseCase struct {
	extractor ports.TextExtractor
	predictor ports.Predictor
	recorder  ports.ClassificationRecorder
	logger    *slog.Logger
}

func NewClassifyUseCase(
	extractor ports.TextExtractor,
	predictor ports.Predictor,
	recorder ports.ClassificationRecorder,
	logger *slog.Logger,
) *ClassifyUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassifyUseCase{
		extractor: extractor,
		predictor: predictor,
		recorder:  recorder,
		logger:    logger,
	}
}

func (uc *ClassifyUseCase) Classify(ctx context.Context, upload domain.Upload) string {
	return uc.ClassifyDetailed(ctx, upload).Message()
}

func (uc *ClassifyUseCase) ClassifyDetailed(ctx context.Context, upload domain.Upload) domain.ClassificationResult {
	result := uc.classify(ctx, upload)

	if uc.recorder != nil {
		uc.recorder.ObserveOutcome(result.Format, result.Outcome)
	}
	if result.Err != nil {
		uc.logger.Error("classify_failed",
			"filename", upload.Filename,
			"format", result.Format,
			"outcome", result.Outcome,
			"error", result.Err,
		)
	} else {
		uc.logger.Info("classify_done",
			"filename", upload.Filename,
			"format", result.Format,
			"label", result.Label,
			"text_length", result.TextLength,
		)
	}
	return result
}

func (uc *ClassifyUseCase) classify(ctx context.Context, upload domain.Upload) domain.ClassificationResult {
	data, readErr := readUpload(upload)
	format, err := domain.ParseFormat(domain.ExtensionFromFilename(upload.Filename))
	if err != nil {
		return invalidInput(errors.Join(readErr, err))
	}
	result := domain.ClassificationResult{Format: format.String()}
	if readErr != nil {
		result.Outcome = domain.OutcomeInvalidInput
		result.Err = readErr
		return result
	}

	text, err := uc.extract(ctx, data, format)
	if err != nil {
		result.Outcome = domain.OutcomeInvalidInput
		result.Err = err
		return result
	}
	result.TextLength = len(text)
	if strings.TrimSpace(text) == "" {
		text = domain.NoTextExtracted
	}

	label, err := uc.predict(ctx, text)
	if err != nil {
		result.Outcome = domain.OutcomeClassificationFailed
		result.Err = err
		return result
	}
	result.Outcome = domain.OutcomeClassified
	result.Label = label
	return result
}

func (uc *ClassifyUseCase) extract(ctx context.Context, data []byte, format domain.Format) (string, error) {
	started := time.Now()
	text, err := uc.extractor.Extract(ctx, data, format)
	if uc.recorder != nil {
		uc.recorder.ObserveExtraction(format.String(), time.Since(started))
	}
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return text, nil
}

func (uc *ClassifyUseCase) predict(ctx context.Context, text string) (string, error) {
	if uc.predictor == nil {
		return "", domain.WrapError(domain.ErrPrediction, "predict", errors.New("no model loaded"))
	}
	labels, err := uc.predictor.Predict(ctx, []string{text})
	if err != nil {
		return "", fmt.Errorf("predict: %w", err)
	}
	if len(labels) == 0 {
		return "", domain.WrapError(domain.ErrPrediction, "predict", errors.New("model returned no labels"))
	}
	return labels[0], nil
}

func readUpload(upload domain.Upload) ([]byte, error) {
	if upload.Body == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read upload", errors.New("empty body"))
	}
	data, err := io.ReadAll(upload.Body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read upload", err)
	}
	return data, nil
}

func invalidInput(err error) domain.ClassificationResult {
	return domain.ClassificationResult{
		Outcome: domain.OutcomeInvalidInput,
		Format:  domain.FormatUnknown.String(),
		Err:     err,
	}
}
