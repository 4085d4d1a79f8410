package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		data     any
		expected string
	}{
		{"OK with map", http.StatusOK, map[string]int{"count": 42}, "{\"count\":42}\n"},
		{"Created with array", http.StatusCreated, []string{"one", "two"}, "[\"one\",\"two\"]\n"},
		{"empty map", http.StatusOK, map[string]string{}, "{}\n"},
		{"nil data has empty body", http.StatusNoContent, nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondJSON(recorder, tc.status, tc.data)

			if recorder.Code != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, recorder.Code)
			}
			if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected Content-Type 'application/json', got '%s'", ct)
			}
			if recorder.Body.String() != tc.expected {
				t.Errorf("expected body %q, got %q", tc.expected, recorder.Body.String())
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	recorder := httptest.NewRecorder()
	respondError(recorder, http.StatusUnprocessableEntity, "something went wrong")

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", recorder.Code)
	}
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if result["error"] != "something went wrong" {
		t.Errorf("expected error message, got '%s'", result["error"])
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"label":"x"}`, false},
		{"malformed", `{"label":`, true},
		{"unknown field", `{"nope":1}`, true},
		{"trailing document", `{"label":"x"} {"label":"y"}`, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dst struct {
				Label string `json:"label"`
			}
			err := decodeJSON(httptest.NewRecorder(), req, &dst)
			if (err != nil) != tc.wantErr {
				t.Errorf("decodeJSON err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestSanitizeForLog(t *testing.T) {
	if got := sanitizeForLog("a\nb\rc"); got != "abc" {
		t.Errorf("sanitizeForLog = %q, want abc", got)
	}
}

func TestHealthCheck(t *testing.T) {
	recorder := httptest.NewRecorder()
	HealthCheck(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if recorder.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body %s", recorder.Body.String())
	}
}
