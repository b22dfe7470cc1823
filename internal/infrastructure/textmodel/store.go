package textmodel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/kirillkom/document-classifier/internal/core/ports"
)

const artifactVersion = 1

type artifact struct {
	Version int         `msgpack:"version"`
	Terms   []string    `msgpack:"terms"`
	IDF     []float64   `msgpack:"idf"`
	Classes []string    `msgpack:"classes"`
	Weights [][]float64 `msgpack:"weights"`
	Bias    []float64   `msgpack:"bias"`
}

// FileStore persists fitted pipelines as msgpack files.
type FileStore struct{}

var _ ports.ModelStore = FileStore{}

func NewFileStore() FileStore {
	return FileStore{}
}

func (FileStore) Save(ctx context.Context, model ports.Model, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, ok := model.(*Pipeline)
	if !ok || p == nil || p.vectorizer == nil || p.classifier == nil {
		return fmt.Errorf("save model: unsupported model type %T", model)
	}

	data, err := msgpack.Marshal(artifact{
		Version: artifactVersion,
		Terms:   p.vectorizer.terms,
		IDF:     p.vectorizer.idf,
		Classes: p.classes,
		Weights: p.classifier.weights,
		Bias:    p.classifier.bias,
	})
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create model dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit model: %w", err)
	}
	return nil
}

func (FileStore) Load(ctx context.Context, path string) (ports.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("model file not found: %s: %w", path, err)
		}
		return nil, fmt.Errorf("read model: %w", err)
	}

	var a artifact
	if err := msgpack.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}

	return &Pipeline{
		vectorizer: newVectorizer(a.Terms, a.IDF),
		classifier: &LogisticRegression{weights: a.Weights, bias: a.Bias},
		classes:    a.Classes,
	}, nil
}

func (a artifact) validate() error {
	if a.Version != artifactVersion {
		return fmt.Errorf("unsupported artifact version %d", a.Version)
	}
	if len(a.Terms) == 0 || len(a.Terms) != len(a.IDF) {
		return fmt.Errorf("vocabulary has %d terms and %d idf weights", len(a.Terms), len(a.IDF))
	}
	if len(a.Classes) < 2 || len(a.Weights) != len(a.Classes) || len(a.Bias) != len(a.Classes) {
		return fmt.Errorf("classifier shape mismatch: %d classes", len(a.Classes))
	}
	for k, row := range a.Weights {
		if len(row) != len(a.Terms) {
			return fmt.Errorf("class %q has %d weights, want %d", a.Classes[k], len(row), len(a.Terms))
		}
	}
	return nil
}
