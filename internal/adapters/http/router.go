package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
	"github.com/kirillkom/document-classifier/internal/observability/metrics"
)

const (
	serviceName         = "api"
	defaultMaxUpload    = 32 << 20
	backpressureWait    = 100 * time.Millisecond
	multipartMemoryHint = 8 << 20
)

type Router struct {
	cfg        config.Config
	classifier ports.DocumentClassifier
	ingestor   ports.DocumentIngestor
	docs       ports.DocumentReader
	metrics    *metrics.HTTPServerMetrics
}

// NewRouter wires the HTTP surface. ingestor and docs may be nil, in which case
// the async document endpoints are not mounted.
func NewRouter(
	cfg config.Config,
	classifier ports.DocumentClassifier,
	ingestor ports.DocumentIngestor,
	docs ports.DocumentReader,
) *Router {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUpload
	}
	return &Router{
		cfg:        cfg,
		classifier: classifier,
		ingestor:   ingestor,
		docs:       docs,
	}
}

func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/classify", rt.classify)
	if rt.ingestor != nil {
		mux.HandleFunc("/v1/documents", rt.uploadDocument)
	}
	if rt.docs != nil {
		mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	}

	var onLimited func(string)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		onLimited = func(path string) { rt.metrics.RecordRateLimited(serviceName, path) }
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, backpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, onLimited)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type classifyResponse struct {
	Result  string         `json:"result"`
	Label   string         `json:"label,omitempty"`
	Outcome domain.Outcome `json:"outcome"`
	Format  string         `json:"format"`
}

func (rt *Router) classify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	upload, closeFn, ok := rt.readUpload(w, r)
	if !ok {
		return
	}
	defer closeFn()

	result := rt.classifier.ClassifyDetailed(r.Context(), upload)
	writeJSON(w, http.StatusOK, classifyResponse{
		Result:  result.Message(),
		Label:   result.Label,
		Outcome: result.Outcome,
		Format:  result.Format,
	})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	upload, closeFn, ok := rt.readUpload(w, r)
	if !ok {
		return
	}
	defer closeFn()

	doc, err := rt.ingestor.Upload(r.Context(), upload.Filename, upload.Body)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// readUpload extracts the multipart "file" field, enforcing the upload cap.
// On failure it writes the response itself and returns ok=false.
func (rt *Router) readUpload(w http.ResponseWriter, r *http.Request) (domain.Upload, func(), bool) {
	if r.ContentLength > rt.cfg.MaxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload exceeds size limit"})
		return domain.Upload{}, nil, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemoryHint); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload exceeds size limit"})
			return domain.Upload{}, nil, false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return domain.Upload{}, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return domain.Upload{}, nil, false
	}
	closeFn := func() {
		_ = file.Close()
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}
	return domain.Upload{Filename: header.Filename, Body: file}, closeFn, true
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
