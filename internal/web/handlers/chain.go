package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-morph/internal/chain"
	"github.com/kozaktomas/face-morph/internal/database"
)

// ChainHandler builds similarity chains on request.
type ChainHandler struct {
	runs      database.RunRepository
	logger    *slog.Logger
	ageWeight float64
	workers   int
}

// NewChainHandler creates a chain handler. runs may be nil, in which case
// results are not persisted.
func NewChainHandler(runs database.RunRepository, ageWeight float64, workers int, logger *slog.Logger) *ChainHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChainHandler{runs: runs, logger: logger, ageWeight: ageWeight, workers: workers}
}

// BuildRequest is the body of POST /api/v1/chain.
type BuildRequest struct {
	Reference  chain.Vector      `json:"reference"`
	Candidates []chain.Candidate `json:"candidates"`
	// AgeWeight falls back to the server default when omitted.
	AgeWeight *float64 `json:"age_weight,omitempty"`
	// Label names the reference in the stored run.
	Label string `json:"label,omitempty"`
}

// BuildResponse is the result of POST /api/v1/chain.
type BuildResponse struct {
	Entries []chain.Entry `json:"entries"`
	RunID   *uuid.UUID    `json:"run_id,omitempty"`
}

// Build handles POST /api/v1/chain.
func (h *ChainHandler) Build(w http.ResponseWriter, r *http.Request) {
	var req BuildRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	weight := h.ageWeight
	if req.AgeWeight != nil {
		weight = *req.AgeWeight
	}

	entries, err := chain.Build(req.Reference, req.Candidates, chain.Options{
		AgeWeight: weight,
		Workers:   h.workers,
	})
	if err != nil {
		if isChainInputError(err) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("chain build failed", "error", err)
		respondError(w, http.StatusInternalServerError, "chain build failed")
		return
	}

	resp := BuildResponse{Entries: entries}
	if h.runs != nil {
		run := database.Run{
			ID:        uuid.New(),
			Reference: req.Label,
			AgeWeight: weight,
			Entries:   entries,
		}
		if err := h.runs.SaveRun(r.Context(), run); err != nil {
			h.logger.Error("failed to save run", "error", err, "label", sanitizeForLog(req.Label))
			respondError(w, http.StatusInternalServerError, "failed to save run")
			return
		}
		resp.RunID = &run.ID
	}

	h.logger.Debug("built chain", "candidates", len(req.Candidates), "age_weight", weight)
	respondJSON(w, http.StatusOK, resp)
}

func isChainInputError(err error) bool {
	return errors.Is(err, chain.ErrInvalidReference) ||
		errors.Is(err, chain.ErrInvalidCandidate) ||
		errors.Is(err, chain.ErrDimensionMismatch) ||
		errors.Is(err, chain.ErrNegativeAgeWeight) ||
		errors.Is(err, chain.ErrDuplicateID)
}
