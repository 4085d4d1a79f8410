package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kozaktomas/face-morph/internal/database"
)

const defaultRunsLimit = 20

// RunsHandler serves stored chain runs.
type RunsHandler struct {
	runs   database.RunRepository
	logger *slog.Logger
}

// NewRunsHandler creates a runs handler.
func NewRunsHandler(runs database.RunRepository, logger *slog.Logger) *RunsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunsHandler{runs: runs, logger: logger}
}

// RunResponse is a stored run as returned by the API.
type RunResponse struct {
	ID        uuid.UUID `json:"id"`
	Reference string    `json:"reference"`
	AgeWeight float64   `json:"age_weight"`
	CreatedAt time.Time `json:"created_at"`
	Entries   any       `json:"entries,omitempty"`
}

func toRunResponse(run database.Run) RunResponse {
	resp := RunResponse{
		ID:        run.ID,
		Reference: run.Reference,
		AgeWeight: run.AgeWeight,
		CreatedAt: run.CreatedAt,
	}
	if run.Entries != nil {
		resp.Entries = run.Entries
	}
	return resp
}

// Get handles GET /api/v1/runs/{id}.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := h.runs.GetRun(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load run", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	if run == nil {
		respondError(w, http.StatusNotFound, "run not found")
		return
	}
	respondJSON(w, http.StatusOK, toRunResponse(*run))
}

// List handles GET /api/v1/runs?limit=N.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 1000 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	out := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunResponse(run))
	}
	respondJSON(w, http.StatusOK, out)
}
