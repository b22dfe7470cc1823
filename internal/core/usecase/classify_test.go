package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

type extractorFake struct {
	text   string
	err    error
	calls  int
	format domain.Format
	data   string
}

func (f *extractorFake) Extract(_ context.Context, data []byte, format domain.Format) (string, error) {
	f.calls++
	f.format = format
	f.data = string(data)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type predictorFake struct {
	labels []string
	err    error
	inputs [][]string
}

func (f *predictorFake) Predict(_ context.Context, texts []string) ([]string, error) {
	f.inputs = append(f.inputs, append([]string(nil), texts...))
	if f.err != nil {
		return nil, f.err
	}
	return f.labels, nil
}

type outcomeObservation struct {
	format  string
	outcome domain.Outcome
}

type recorderFake struct {
	mu          sync.Mutex
	outcomes    []outcomeObservation
	extractions []string
}

func (f *recorderFake) ObserveExtraction(format string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extractions = append(f.extractions, format)
}

func (f *recorderFake) ObserveOutcome(format string, outcome domain.Outcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, outcomeObservation{format: format, outcome: outcome})
}

type countingReader struct {
	r    io.Reader
	read int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += n
	return n, err
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func upload(name, body string) domain.Upload {
	return domain.Upload{Filename: name, Body: strings.NewReader(body)}
}

func TestClassifyReturnsPredictedLabel(t *testing.T) {
	extractor := &extractorFake{text: "Invoice total due"}
	predictor := &predictorFake{labels: []string{"invoice"}}
	recorder := &recorderFake{}
	uc := NewClassifyUseCase(extractor, predictor, recorder, nil)

	result := uc.ClassifyDetailed(context.Background(), upload("Scan.PDF", "%PDF-1.4"))
	if result.Outcome != domain.OutcomeClassified || result.Label != "invoice" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Format != "pdf" || extractor.format != domain.FormatPDF {
		t.Fatalf("expected pdf format, got %s / %s", result.Format, extractor.format)
	}
	if extractor.data != "%PDF-1.4" {
		t.Fatalf("extractor received %q", extractor.data)
	}
	if len(predictor.inputs) != 1 || len(predictor.inputs[0]) != 1 || predictor.inputs[0][0] != "Invoice total due" {
		t.Fatalf("expected single-element batch with the extracted text, got %+v", predictor.inputs)
	}
	if result.TextLength != len("Invoice total due") {
		t.Fatalf("expected text length %d, got %d", len("Invoice total due"), result.TextLength)
	}
	if len(recorder.outcomes) != 1 || recorder.outcomes[0].outcome != domain.OutcomeClassified || recorder.outcomes[0].format != "pdf" {
		t.Fatalf("unexpected outcome observations: %+v", recorder.outcomes)
	}
	if len(recorder.extractions) != 1 || recorder.extractions[0] != "pdf" {
		t.Fatalf("unexpected extraction observations: %+v", recorder.extractions)
	}
	if got := uc.Classify(context.Background(), upload("scan.pdf", "x")); got != "invoice" {
		t.Fatalf("Classify() = %q", got)
	}
}

func TestClassifyFeedsSentinelForBlankText(t *testing.T) {
	for _, text := range []string{"", "   \n\t "} {
		predictor := &predictorFake{labels: []string{"other"}}
		uc := NewClassifyUseCase(&extractorFake{text: text}, predictor, nil, nil)

		if got := uc.Classify(context.Background(), upload("blank.png", "png")); got != "other" {
			t.Fatalf("Classify() = %q, want other", got)
		}
		if len(predictor.inputs) != 1 || predictor.inputs[0][0] != domain.NoTextExtracted {
			t.Fatalf("expected sentinel input, got %+v", predictor.inputs)
		}
	}
}

func TestClassifyUnsupportedExtensionBypassesModel(t *testing.T) {
	extractor := &extractorFake{text: "x"}
	predictor := &predictorFake{labels: []string{"never"}}
	recorder := &recorderFake{}
	uc := NewClassifyUseCase(extractor, predictor, recorder, nil)

	for _, name := range []string{"archive.zip", "no_extension", "image.gif", ""} {
		result := uc.ClassifyDetailed(context.Background(), upload(name, "data"))
		if result.Outcome != domain.OutcomeInvalidInput || result.Message() != domain.MessageInvalidFile {
			t.Fatalf("%q: unexpected result %+v", name, result)
		}
		if !domain.IsKind(result.Err, domain.ErrUnsupportedFormat) {
			t.Fatalf("%q: expected unsupported format error, got %v", name, result.Err)
		}
		if result.Format != "unknown" {
			t.Fatalf("%q: expected unknown format label, got %s", name, result.Format)
		}
	}
	if extractor.calls != 0 || len(predictor.inputs) != 0 {
		t.Fatalf("extractor/model must be bypassed, got %d/%d calls", extractor.calls, len(predictor.inputs))
	}
	if len(recorder.extractions) != 0 {
		t.Fatalf("no extraction should be observed, got %+v", recorder.extractions)
	}
}

func TestClassifyExtractionFailureIsInvalidInput(t *testing.T) {
	predictor := &predictorFake{labels: []string{"never"}}
	uc := NewClassifyUseCase(&extractorFake{err: domain.WrapError(domain.ErrExtraction, "open xlsx", errors.New("zip: not a valid zip file"))}, predictor, nil, nil)

	result := uc.ClassifyDetailed(context.Background(), upload("book.xlsx", "Invalid content"))
	if result.Outcome != domain.OutcomeInvalidInput {
		t.Fatalf("expected invalid input, got %+v", result)
	}
	if got := uc.Classify(context.Background(), upload("book.xlsx", "Invalid content")); got != "Invalid file type or format" {
		t.Fatalf("Classify() = %q", got)
	}
	if len(predictor.inputs) != 0 {
		t.Fatalf("model must be bypassed on extraction failure")
	}
}

func TestClassifyReadFailureIsInvalidInput(t *testing.T) {
	extractor := &extractorFake{text: "x"}
	uc := NewClassifyUseCase(extractor, &predictorFake{labels: []string{"never"}}, nil, nil)

	result := uc.ClassifyDetailed(context.Background(), domain.Upload{Filename: "a.txt", Body: failingReader{}})
	if result.Outcome != domain.OutcomeInvalidInput || !domain.IsKind(result.Err, domain.ErrInvalidInput) {
		t.Fatalf("unexpected result %+v", result)
	}

	result = uc.ClassifyDetailed(context.Background(), domain.Upload{Filename: "a.txt"})
	if result.Outcome != domain.OutcomeInvalidInput {
		t.Fatalf("expected invalid input for nil body, got %+v", result)
	}
	if extractor.calls != 0 {
		t.Fatalf("extractor must not run when the upload cannot be read")
	}
}

func TestClassifyPredictionFailures(t *testing.T) {
	cases := map[string]*predictorFake{
		"error":        {err: errors.New("model exploded")},
		"empty result": {labels: []string{}},
	}
	for name, predictor := range cases {
		recorder := &recorderFake{}
		uc := NewClassifyUseCase(&extractorFake{text: "hello"}, predictor, recorder, nil)

		result := uc.ClassifyDetailed(context.Background(), upload("a.txt", "hello"))
		if result.Outcome != domain.OutcomeClassificationFailed || result.Message() != "Failed to classify" {
			t.Fatalf("%s: unexpected result %+v", name, result)
		}
		if recorder.outcomes[0].outcome != domain.OutcomeClassificationFailed {
			t.Fatalf("%s: unexpected observation %+v", name, recorder.outcomes)
		}
	}

	uc := NewClassifyUseCase(&extractorFake{text: "hello"}, nil, nil, nil)
	if got := uc.Classify(context.Background(), upload("a.txt", "hello")); got != domain.MessageFailedToClassify {
		t.Fatalf("Classify() without model = %q", got)
	}
}

func TestClassifyFailureStringsAreDistinct(t *testing.T) {
	ok := NewClassifyUseCase(&extractorFake{text: "x"}, &predictorFake{labels: []string{"label"}}, nil, nil)
	bad := NewClassifyUseCase(&extractorFake{text: "x"}, &predictorFake{err: errors.New("boom")}, nil, nil)

	got := map[string]bool{
		ok.Classify(context.Background(), upload("a.exe", "x")): true,
		bad.Classify(context.Background(), upload("a.txt", "x")): true,
		ok.Classify(context.Background(), upload("a.txt", "x")):  true,
	}
	if len(got) != 3 {
		t.Fatalf("expected three distinct results, got %v", got)
	}
}

func TestClassifyConsumesBodyOnce(t *testing.T) {
	extractor := &extractorFake{text: "x"}
	uc := NewClassifyUseCase(extractor, &predictorFake{labels: []string{"l"}}, nil, nil)
	body := strings.NewReader("payload")

	uc.Classify(context.Background(), domain.Upload{Filename: "a.txt", Body: body})
	if rest, _ := io.ReadAll(body); len(rest) != 0 {
		t.Fatalf("expected body to be fully consumed, %d bytes left", len(rest))
	}
}

func TestClassifyReadsBodyBeforeCheckingFormat(t *testing.T) {
	extractor := &extractorFake{text: "x"}
	uc := NewClassifyUseCase(extractor, &predictorFake{labels: []string{"never"}}, nil, nil)
	body := &countingReader{r: strings.NewReader("GIF89a")}

	result := uc.ClassifyDetailed(context.Background(), domain.Upload{Filename: "image.gif", Body: body})
	if result.Outcome != domain.OutcomeInvalidInput {
		t.Fatalf("expected invalid input, got %+v", result)
	}
	if body.read != len("GIF89a") {
		t.Fatalf("expected the whole body to be read, got %d bytes", body.read)
	}
	if extractor.calls != 0 {
		t.Fatalf("extractor must not run for an unsupported format")
	}
}

func TestClassifyReadFailureKeepsKnownFormatLabel(t *testing.T) {
	recorder := &recorderFake{}
	uc := NewClassifyUseCase(&extractorFake{text: "x"}, &predictorFake{labels: []string{"never"}}, recorder, nil)

	result := uc.ClassifyDetailed(context.Background(), domain.Upload{Filename: "scan.PDF", Body: failingReader{}})
	if result.Format != "pdf" || result.Outcome != domain.OutcomeInvalidInput {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(recorder.outcomes) != 1 || recorder.outcomes[0].format != "pdf" {
		t.Fatalf("unexpected observations %+v", recorder.outcomes)
	}
}
