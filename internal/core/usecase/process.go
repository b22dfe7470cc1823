package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	repo       ports.DocumentRepository
	storage    ports.ObjectStorage
	classifier ports.DocumentClassifier
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	classifier ports.DocumentClassifier,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:       repo,
		storage:    storage,
		classifier: classifier,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	result, err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.persistResult(ctx, documentID, result); err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if result.Outcome != domain.OutcomeClassified {
		classifyErr := classificationError(result)
		if failErr := uc.markFailed(ctx, documentID, classifyErr); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", classifyErr, failErr)
		}
		return classifyErr
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}

	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) (domain.ClassificationResult, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("fetch document by id: %w", err)
	}

	body, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("open stored document: %w", err)
	}
	defer body.Close()

	return uc.classifier.ClassifyDetailed(ctx, domain.Upload{Filename: doc.Filename, Body: body}), nil
}

func (uc *ProcessDocumentUseCase) persistResult(ctx context.Context, documentID string, result domain.ClassificationResult) error {
	if err := uc.repo.SaveResult(ctx, documentID, result); err != nil {
		return fmt.Errorf("save classification result: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.markStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
}

func classificationError(result domain.ClassificationResult) error {
	kind := domain.ErrInvalidInput
	if result.Outcome == domain.OutcomeClassificationFailed {
		kind = domain.ErrPrediction
	}
	cause := result.Err
	if cause == nil {
		cause = errors.New(result.Message())
	}
	return domain.WrapError(kind, result.Message(), cause)
}
