// Package server exposes the summarization pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ragsum/internal/domain"
	"ragsum/internal/logger"
	"ragsum/internal/pipeline"
)

// maxBodyBytes caps request bodies well above the largest accepted text.
const maxBodyBytes = 4 << 20

// Runner is the part of the pipeline the handler needs.
type Runner interface {
	Run(ctx context.Context, text string, params pipeline.Params) (*pipeline.Result, error)
	Defaults() pipeline.Params
}

// SummarizeRequest is the body of POST /api/v1/summarize. Omitted tunables
// take the server defaults.
type SummarizeRequest struct {
	Text         string `json:"text"`
	ChunkSize    *int   `json:"chunk_size,omitempty"`
	ChunkOverlap *int   `json:"chunk_overlap,omitempty"`
	TopK         *int   `json:"top_k,omitempty"`
	MaxSentences *int   `json:"max_sentences,omitempty"`
}

func (r SummarizeRequest) params(def pipeline.Params) pipeline.Params {
	p := def
	if r.ChunkSize != nil {
		p.ChunkSize = *r.ChunkSize
	}
	if r.ChunkOverlap != nil {
		p.ChunkOverlap = *r.ChunkOverlap
	}
	if r.TopK != nil {
		p.TopK = *r.TopK
	}
	if r.MaxSentences != nil {
		p.MaxSentences = *r.MaxSentences
	}
	return p
}

// Handler serves the summarization API.
type Handler struct {
	runner  Runner
	metrics http.Handler
	logger  *slog.Logger
}

// New creates a handler. metricsHandler may be nil, which disables /metrics.
func New(runner Runner, metricsHandler http.Handler) *Handler {
	return &Handler{
		runner:  runner,
		metrics: metricsHandler,
		logger:  logger.WithComponent("server"),
	}
}

// Routes returns the route table:
//
//	POST /api/v1/summarize  run the pipeline on a JSON body
//	GET  /healthz           liveness
//	GET  /metrics           Prometheus scrape endpoint
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/summarize", h.Summarize)
	mux.HandleFunc("GET /healthz", h.Health)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
	return mux
}

// Summarize handles POST /api/v1/summarize.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req SummarizeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.runner.Run(r.Context(), req.Text, req.params(h.runner.Defaults()))
	if err != nil {
		if msg := domain.UserMessage(err); msg != "" {
			h.writeError(w, http.StatusBadRequest, msg)
			return
		}
		if errors.Is(err, context.Canceled) {
			h.logger.Info("summarize request canceled")
			return
		}
		h.logger.Error("summarize failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "summarization failed")
		return
	}

	h.logger.Info("summarize completed",
		"chunks", len(res.Chunks),
		"source", res.Source,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, res)
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
