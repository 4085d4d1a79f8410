package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/face-morph/internal/database/mock"
	"github.com/kozaktomas/face-morph/internal/logger"
)

func postChain(t *testing.T, h *ChainHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chain", strings.NewReader(body))
	recorder := httptest.NewRecorder()
	h.Build(recorder, req)
	return recorder
}

func TestChainBuild(t *testing.T) {
	h := NewChainHandler(nil, 0.015, 1, logger.Discard())
	body := `{
		"reference": [0, 0],
		"candidates": [
			{"id": "far", "vector": [10, 0]},
			{"id": "near", "vector": [1, 0]},
			{"id": "mid", "vector": [4, 0]}
		]
	}`

	recorder := postChain(t, h, body)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var resp BuildResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	wantIDs := []string{"near", "mid", "far"}
	wantDist := []float64{1, 3, 6}
	if len(resp.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %+v", resp.Entries)
	}
	for i := range wantIDs {
		if resp.Entries[i].ID != wantIDs[i] || resp.Entries[i].Distance != wantDist[i] {
			t.Errorf("entry %d = %+v, want %s at %v", i, resp.Entries[i], wantIDs[i], wantDist[i])
		}
	}
	if resp.RunID != nil {
		t.Error("run_id should be absent without a run repository")
	}
}

func TestChainBuildEmptyPool(t *testing.T) {
	h := NewChainHandler(nil, 0.015, 1, logger.Discard())
	recorder := postChain(t, h, `{"reference":[1,2],"candidates":[]}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `"entries":[]`) {
		t.Errorf("expected empty entries array, got %s", recorder.Body.String())
	}
}

func TestChainBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"invalid json", `{"reference":`, http.StatusBadRequest},
		{"missing reference", `{"candidates":[{"id":"a","vector":[1]}]}`, http.StatusUnprocessableEntity},
		{"dimension mismatch", `{"reference":[0,0],"candidates":[{"id":"a","vector":[1]}]}`, http.StatusUnprocessableEntity},
		{"negative weight", `{"reference":[0],"candidates":[],"age_weight":-1}`, http.StatusUnprocessableEntity},
		{"duplicate id", `{"reference":[0],"candidates":[{"id":"a","vector":[1]},{"id":"a","vector":[2]}]}`, http.StatusUnprocessableEntity},
	}

	h := NewChainHandler(nil, 0.015, 1, logger.Discard())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := postChain(t, h, tc.body)
			if recorder.Code != tc.status {
				t.Errorf("expected status %d, got %d: %s", tc.status, recorder.Code, recorder.Body.String())
			}
		})
	}
}

func TestChainBuildPersistsRun(t *testing.T) {
	store := mock.NewRunStore()
	h := NewChainHandler(store, 0.015, 1, logger.Discard())

	recorder := postChain(t, h, `{"reference":[0],"candidates":[{"id":"a","vector":[1]}],"age_weight":0.05,"label":"me.jpg"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	var resp BuildResponse
	_ = json.Unmarshal(recorder.Body.Bytes(), &resp)
	if resp.RunID == nil {
		t.Fatal("expected run_id")
	}

	run, _ := store.GetRun(t.Context(), *resp.RunID)
	if run == nil {
		t.Fatal("run was not stored")
	}
	if run.Reference != "me.jpg" || run.AgeWeight != 0.05 || len(run.Entries) != 1 {
		t.Errorf("stored run = %+v", run)
	}
}

func TestChainBuildSaveFailure(t *testing.T) {
	store := mock.NewRunStore()
	store.SaveError = errors.New("db down")
	h := NewChainHandler(store, 0.015, 1, logger.Discard())

	recorder := postChain(t, h, `{"reference":[0],"candidates":[{"id":"a","vector":[1]}]}`)
	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", recorder.Code)
	}
}
