package textmodel

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

// Pipeline chains the TF-IDF vectorizer and the logistic regression head.
type Pipeline struct {
	vectorizer *Vectorizer
	classifier *LogisticRegression
	classes    []string
}

var _ ports.Model = (*Pipeline)(nil)

func (p *Pipeline) Classes() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.classes))
	copy(out, p.classes)
	return out
}

func (p *Pipeline) Predict(ctx context.Context, texts []string) ([]string, error) {
	if p == nil || p.vectorizer == nil || p.classifier == nil {
		return nil, domain.WrapError(domain.ErrPrediction, "predict", fmt.Errorf("model is not fitted"))
	}
	if len(texts) == 0 {
		return nil, domain.WrapError(domain.ErrPrediction, "predict", fmt.Errorf("empty batch"))
	}

	buf := make([]float64, len(p.classes))
	labels := make([]string, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, domain.WrapError(domain.ErrPrediction, "predict", err)
		}
		labels[i] = p.classes[p.classifier.predict(p.vectorizer.Transform(text), buf)]
	}
	return labels, nil
}

type Trainer struct {
	opts   RegressionOptions
	logger *slog.Logger
}

var _ ports.ModelFitter = (*Trainer)(nil)

func NewTrainer(opts RegressionOptions, logger *slog.Logger) *Trainer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trainer{opts: opts.normalize(), logger: logger}
}

func (t *Trainer) Fit(ctx context.Context, texts, labels []string) (ports.Model, error) {
	if len(texts) != len(labels) {
		return nil, domain.WrapError(domain.ErrInvalidDataset, "fit", fmt.Errorf("%d texts but %d labels", len(texts), len(labels)))
	}
	if len(texts) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidDataset, "fit", fmt.Errorf("no training samples"))
	}

	classes := uniqueSorted(labels)
	if len(classes) < 2 {
		return nil, domain.WrapError(domain.ErrInvalidDataset, "fit", fmt.Errorf("need at least 2 classes, got %d", len(classes)))
	}
	classIndex := make(map[string]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}

	vectorizer := FitVectorizer(texts)
	if vectorizer.Size() == 0 {
		return nil, domain.WrapError(domain.ErrInvalidDataset, "fit", fmt.Errorf("empty vocabulary"))
	}

	xs := make([]SparseVector, len(texts))
	ys := make([]int, len(texts))
	for i, text := range texts {
		xs[i] = vectorizer.Transform(text)
		ys[i] = classIndex[labels[i]]
	}

	classifier, stats, err := fitLogistic(ctx, xs, ys, len(classes), vectorizer.Size(), t.opts)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidDataset, "fit", err)
	}
	if !stats.converged {
		t.logger.Warn("logistic regression did not converge", "max_iter", t.opts.MaxIter)
	}
	t.logger.Info("model fitted",
		"samples", len(texts),
		"classes", len(classes),
		"features", vectorizer.Size(),
		"iterations", stats.iterations,
	)

	return &Pipeline{vectorizer: vectorizer, classifier: classifier, classes: classes}, nil
}

func uniqueSorted(values []string) []string {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
