package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kozaktomas/face-morph/internal/chain"
	"github.com/kozaktomas/face-morph/internal/database"
	"github.com/kozaktomas/face-morph/internal/database/mock"
	"github.com/kozaktomas/face-morph/internal/logger"
)

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestRunsGet(t *testing.T) {
	store := mock.NewRunStore()
	run := database.Run{ID: uuid.New(), Reference: "me.jpg", Entries: []chain.Entry{{ID: "a", Distance: 1}}}
	_ = store.SaveRun(context.Background(), run)
	h := NewRunsHandler(store, logger.Discard())

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"found", run.ID.String(), http.StatusOK},
		{"not found", uuid.New().String(), http.StatusNotFound},
		{"invalid id", "not-a-uuid", http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+tc.id, nil), map[string]string{"id": tc.id})
			recorder := httptest.NewRecorder()
			h.Get(recorder, req)
			if recorder.Code != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, recorder.Code)
			}
		})
	}

	req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": run.ID.String()})
	recorder := httptest.NewRecorder()
	h.Get(recorder, req)
	var resp struct {
		Reference string        `json:"reference"`
		Entries   []chain.Entry `json:"entries"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Reference != "me.jpg" || len(resp.Entries) != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestRunsGetStoreError(t *testing.T) {
	store := mock.NewRunStore()
	store.GetError = errors.New("db down")
	h := NewRunsHandler(store, logger.Discard())

	id := uuid.New().String()
	req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": id})
	recorder := httptest.NewRecorder()
	h.Get(recorder, req)
	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", recorder.Code)
	}
}

func TestRunsList(t *testing.T) {
	store := mock.NewRunStore()
	for range 3 {
		_ = store.SaveRun(context.Background(), database.Run{ID: uuid.New()})
	}
	h := NewRunsHandler(store, logger.Discard())

	tests := []struct {
		name   string
		query  string
		status int
		count  int
	}{
		{"default limit", "", http.StatusOK, 3},
		{"limit", "?limit=2", http.StatusOK, 2},
		{"bad limit", "?limit=zero", http.StatusBadRequest, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			h.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/runs"+tc.query, nil))
			if recorder.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, recorder.Code)
			}
			if tc.status != http.StatusOK {
				return
			}
			var runs []RunResponse
			if err := json.Unmarshal(recorder.Body.Bytes(), &runs); err != nil {
				t.Fatalf("failed to unmarshal: %v", err)
			}
			if len(runs) != tc.count {
				t.Errorf("expected %d runs, got %d", tc.count, len(runs))
			}
		})
	}
}
