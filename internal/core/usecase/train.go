package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

type TrainModelUseCase struct {
	loader   ports.DatasetLoader
	splitter ports.DatasetSplitter
	fitter   ports.ModelFitter
	store    ports.ModelStore
	logger   *slog.Logger
}

func NewTrainModelUseCase(
	loader ports.DatasetLoader,
	splitter ports.DatasetSplitter,
	fitter ports.ModelFitter,
	store ports.ModelStore,
	logger *slog.Logger,
) *TrainModelUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrainModelUseCase{
		loader:   loader,
		splitter: splitter,
		fitter:   fitter,
		store:    store,
		logger:   logger,
	}
}

// Run loads the dataset, fits on the train split, reports held-out accuracy
// and saves the model to modelPath.
func (uc *TrainModelUseCase) Run(ctx context.Context, dataPath, modelPath string) (domain.TrainReport, error) {
	ds, err := uc.loader.LoadDataset(ctx, dataPath)
	if err != nil {
		return domain.TrainReport{}, fmt.Errorf("load dataset: %w", err)
	}
	uc.logger.Info("dataset_loaded", "path", dataPath, "records", ds.Len())

	train, test, err := uc.splitter.Split(ds)
	if err != nil {
		return domain.TrainReport{}, fmt.Errorf("split dataset: %w", err)
	}

	model, err := uc.fitter.Fit(ctx, train.Texts, train.Labels)
	if err != nil {
		return domain.TrainReport{}, fmt.Errorf("fit model: %w", err)
	}

	predicted, err := model.Predict(ctx, test.Texts)
	if err != nil {
		return domain.TrainReport{}, fmt.Errorf("evaluate model: %w", err)
	}
	accuracy := Accuracy(predicted, test.Labels)
	uc.logger.Info("model_evaluated",
		"train_size", train.Len(),
		"test_size", test.Len(),
		"accuracy", fmt.Sprintf("%.2f%%", accuracy*100),
	)

	if err := uc.store.Save(ctx, model, modelPath); err != nil {
		return domain.TrainReport{}, fmt.Errorf("save model: %w", err)
	}
	uc.logger.Info("model_saved", "path", modelPath)

	return domain.TrainReport{
		TrainSize: train.Len(),
		TestSize:  test.Len(),
		Accuracy:  accuracy,
		Classes:   model.Classes(),
		ModelPath: modelPath,
	}, nil
}

// Accuracy is the fraction of positions where predicted equals truth.
func Accuracy(predicted, truth []string) float64 {
	if len(truth) == 0 || len(predicted) != len(truth) {
		return 0
	}
	hits := 0
	for i := range truth {
		if predicted[i] == truth[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(truth))
}
