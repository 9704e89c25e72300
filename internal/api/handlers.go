// Package api exposes the pipeline over HTTP: question answering, ingestion
// triggering and health. Handlers translate internal errors into generic
// failure responses; raw retrieval or completion errors never reach clients.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/bull/docqa-server/internal/qa"
)

// AnswerService answers validated questions from the indexed corpus.
type AnswerService interface {
	Ask(ctx context.Context, question string) (string, error)
}

// AskRequest is the /ask request body.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the /ask success body.
type AskResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse is the uniform failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler serves the JSON API.
type Handler struct {
	answers AnswerService
	runner  *Runner
	ready   *atomic.Bool
	logger  *slog.Logger
}

// NewHandler creates the API handler. The ready flag is flipped by the
// bootstrap step once the index is usable; until then /ask responds 503.
func NewHandler(answers AnswerService, runner *Runner, ready *atomic.Bool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		answers: answers,
		runner:  runner,
		ready:   ready,
		logger:  logger,
	}
}

// Register mounts all API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/ask", h.Ask)
	mux.HandleFunc("/ingest", h.Ingest)
	mux.HandleFunc("/ingest/status", h.IngestStatus)
}

// Ask answers a question. Empty questions are rejected with 400 before any
// retrieval work; downstream failures become a generic 502.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	if !h.ready.Load() {
		writeError(w, http.StatusServiceUnavailable, "index not ready yet, try again shortly")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.answers.Ask(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, qa.ErrEmptyQuestion) {
			writeError(w, http.StatusBadRequest, "please provide a question")
			return
		}
		h.logger.Error("failed to answer question", "error", err)
		writeError(w, http.StatusBadGateway, "failed to answer question")
		return
	}

	writeJSON(w, http.StatusOK, AskResponse{Answer: answer})
}

// Ingest triggers an ingestion run. By default it blocks and returns the run
// result; with ?wait=false it starts a background run and returns 202, with
// progress available at /ingest/status.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	if r.URL.Query().Get("wait") == "false" {
		h.runner.Trigger()
		writeJSON(w, http.StatusAccepted, h.runner.Status())
		return
	}

	result, err := h.runner.RunNow(r.Context())
	if err != nil {
		h.logger.Error("ingestion failed", "error", err)
		writeError(w, http.StatusBadGateway, "ingestion failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// IngestStatus reports the state of the most recent ingestion run.
func (h *Handler) IngestStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "use GET")
		return
	}
	writeJSON(w, http.StatusOK, h.runner.Status())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
