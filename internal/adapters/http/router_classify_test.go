package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/observability/metrics"
)

func decodeClassify(t *testing.T, res *httptest.ResponseRecorder) classifyResponse {
	t.Helper()
	var out classifyResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestClassifyReturnsLabel(t *testing.T) {
	classifier := classifiedFake("invoice")
	handler := NewRouter(config.Config{}, classifier, nil, nil).Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, multipartRequest(t, "/v1/classify", "file", "bill.txt", []byte("total due")))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	out := decodeClassify(t, res)
	if out.Result != "invoice" || out.Label != "invoice" || out.Outcome != domain.OutcomeClassified {
		t.Fatalf("unexpected response %+v", out)
	}
	if classifier.filename != "bill.txt" || classifier.body != "total due" {
		t.Fatalf("classifier received %q/%q", classifier.filename, classifier.body)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestClassifyReportsFailureStringsWith200(t *testing.T) {
	cases := map[domain.Outcome]string{
		domain.OutcomeInvalidInput:         "Invalid file type or format",
		domain.OutcomeClassificationFailed: "Failed to classify",
	}
	for outcome, want := range cases {
		classifier := &classifierFake{result: domain.ClassificationResult{Outcome: outcome, Err: errors.New("boom")}}
		handler := NewRouter(config.Config{}, classifier, nil, nil).Handler()

		res := httptest.NewRecorder()
		handler.ServeHTTP(res, multipartRequest(t, "/v1/classify", "file", "x.bin", []byte("x")))
		if res.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", outcome, res.Code)
		}
		if out := decodeClassify(t, res); out.Result != want || out.Outcome != outcome {
			t.Fatalf("%s: unexpected response %+v", outcome, out)
		}
	}
}

func TestClassifyRequiresFileField(t *testing.T) {
	handler := newTestHandler(config.Config{})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, multipartRequest(t, "/v1/classify", "document", "a.txt", []byte("x")))
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing file field, got %d", res.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/classify", strings.NewReader(`{"file":"a"}`))
	req.Header.Set("Content-Type", "application/json")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-multipart body, got %d", res.Code)
	}
}

func TestClassifyRejectsWrongMethod(t *testing.T) {
	res := httptest.NewRecorder()
	newTestHandler(config.Config{}).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/classify", nil))
	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}

func TestClassifyRejectsOversizedUpload(t *testing.T) {
	classifier := classifiedFake("never")
	handler := NewRouter(config.Config{MaxUploadBytes: 64}, classifier, nil, nil).Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, multipartRequest(t, "/v1/classify", "file", "big.txt", []byte(strings.Repeat("a", 1024))))
	if res.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", res.Code)
	}
	if classifier.filename != "" {
		t.Fatalf("classifier must not run for oversized uploads")
	}
}

func TestAsyncEndpointsAbsentWhenDisabled(t *testing.T) {
	handler := NewRouter(config.Config{}, classifiedFake("memo"), nil, nil).Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, multipartRequest(t, "/v1/documents", "file", "a.txt", []byte("x")))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when async ingest is disabled, got %d", res.Code)
	}
}

func TestMetricsEndpointExposesClassifierSeries(t *testing.T) {
	m := metrics.NewHTTPServerMetrics("api")
	m.ObserveOutcome("txt", domain.OutcomeClassified)
	handler := NewRouter(config.Config{}, classifiedFake("memo"), nil, nil).WithMetrics(m).Handler()

	handler.ServeHTTP(httptest.NewRecorder(), multipartRequest(t, "/v1/classify", "file", "a.txt", []byte("x")))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	body := res.Body.String()
	for _, want := range []string{"dcl_classify_total", "dcl_http_requests_total"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in metrics output", want)
		}
	}
}
