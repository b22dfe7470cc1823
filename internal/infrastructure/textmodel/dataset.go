package textmodel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"math/rand"
	"os"
	"strings"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

const (
	textColumn  = "Text"
	labelColumn = "Label"
)

// CSVLoader reads a headered CSV with Text and Label columns.
type CSVLoader struct{}

var _ ports.DatasetLoader = CSVLoader{}

func (CSVLoader) LoadDataset(ctx context.Context, path string) (domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Dataset{}, domain.WrapError(domain.ErrInvalidDataset, "load dataset", fmt.Errorf("file not found: %s: %w", path, err))
		}
		return domain.Dataset{}, domain.WrapError(domain.ErrInvalidDataset, "load dataset", err)
	}
	defer f.Close()
	return ReadDataset(ctx, f)
}

func ReadDataset(ctx context.Context, r io.Reader) (domain.Dataset, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Dataset{}, domain.WrapError(domain.ErrInvalidDataset, "read dataset", fmt.Errorf("missing header"))
		}
		return domain.Dataset{}, domain.WrapError(domain.ErrInvalidDataset, "read dataset", err)
	}

	textIdx, labelIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case textColumn:
			textIdx = i
		case labelColumn:
			labelIdx = i
		}
	}
	if textIdx < 0 || labelIdx < 0 {
		return domain.Dataset{}, domain.WrapError(domain.ErrInvalidDataset, "read dataset", fmt.Errorf("header must contain %q and %q columns", textColumn, labelColumn))
	}

	var ds domain.Dataset
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return domain.Dataset{}, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Dataset{}, domain.WrapError(domain.ErrInvalidDataset, "read dataset", err)
		}
		label := strings.TrimSpace(record[labelIdx])
		if label == "" {
			return domain.Dataset{}, domain.WrapError(domain.ErrInvalidDataset, "read dataset", fmt.Errorf("line %d: empty label", line))
		}
		ds.Texts = append(ds.Texts, record[textIdx])
		ds.Labels = append(ds.Labels, label)
	}
	return ds, nil
}

// Splitter performs a seeded shuffle split. The test partition receives
// ceil(n*TestSize) samples.
type Splitter struct {
	TestSize float64
	Seed     int64
}

var _ ports.DatasetSplitter = Splitter{}

func (s Splitter) Split(ds domain.Dataset) (domain.Dataset, domain.Dataset, error) {
	if len(ds.Texts) != len(ds.Labels) {
		return domain.Dataset{}, domain.Dataset{}, domain.WrapError(domain.ErrInvalidDataset, "split", fmt.Errorf("%d texts but %d labels", len(ds.Texts), len(ds.Labels)))
	}
	if s.TestSize <= 0 || s.TestSize >= 1 {
		return domain.Dataset{}, domain.Dataset{}, domain.WrapError(domain.ErrInvalidDataset, "split", fmt.Errorf("test size must be in (0, 1), got %v", s.TestSize))
	}
	n := ds.Len()
	nTest := int(math.Ceil(float64(n) * s.TestSize))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return domain.Dataset{}, domain.Dataset{}, domain.WrapError(domain.ErrInvalidDataset, "split", fmt.Errorf("%d samples cannot be split with test size %v", n, s.TestSize))
	}

	perm := rand.New(rand.NewSource(s.Seed)).Perm(n)
	pick := func(indices []int) domain.Dataset {
		out := domain.Dataset{
			Texts:  make([]string, len(indices)),
			Labels: make([]string, len(indices)),
		}
		for i, idx := range indices {
			out.Texts[i] = ds.Texts[idx]
			out.Labels[i] = ds.Labels[idx]
		}
		return out
	}
	return pick(perm[nTest:]), pick(perm[:nTest]), nil
}
