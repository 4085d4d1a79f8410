package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/face-morph/internal/config"
	"github.com/kozaktomas/face-morph/internal/database/mock"
	"github.com/kozaktomas/face-morph/internal/logger"
)

func TestRoutes(t *testing.T) {
	srv := NewServer(config.Defaults(), "127.0.0.1", 0, mock.NewRunStore(), logger.Discard())
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}

	body := `{"reference":[0],"candidates":[{"id":"a","vector":[2]},{"id":"b","vector":[1]}]}`
	resp, err = http.Post(ts.URL+"/api/v1/chain", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("chain status = %d", resp.StatusCode)
	}
	var out struct {
		Entries []struct {
			ID string `json:"id"`
		} `json:"entries"`
		RunID string `json:"run_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Entries) != 2 || out.Entries[0].ID != "b" {
		t.Errorf("entries = %+v, want b first", out.Entries)
	}

	runResp, err := http.Get(ts.URL + "/api/v1/runs/" + out.RunID)
	if err != nil {
		t.Fatal(err)
	}
	runResp.Body.Close()
	if runResp.StatusCode != http.StatusOK {
		t.Errorf("run status = %d", runResp.StatusCode)
	}
}

func TestRoutesWithoutRunHistory(t *testing.T) {
	srv := NewServer(config.Defaults(), "127.0.0.1", 0, nil, logger.Discard())

	recorder := httptest.NewRecorder()
	srv.Router().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))
	if recorder.Code != http.StatusNotFound {
		t.Errorf("runs status = %d, want 404", recorder.Code)
	}
}
