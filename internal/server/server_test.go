package server

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return New(Config{Store: s}), s
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want %q", body["status"], "ok")
	}
}

func TestServer_Health_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestServer_CurrentGesture(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	a := app.New(app.Config{Store: s, Classifier: classify.DefaultConfig()})
	srv := New(Config{Store: s, App: a})

	req := httptest.NewRequest(http.MethodGet, "/api/gesture", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Gesture string `json:"gesture"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Gesture != classify.LabelNoHand {
		t.Errorf("gesture = %q, want %q", body.Gesture, classify.LabelNoHand)
	}
}

func TestServer_RulesRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// Create.
	resp, err := client.Post(
		ts.URL+"/api/rules",
		"application/json",
		strings.NewReader(`{"label": "Call Me", "pattern": "10001"}`),
	)
	if err != nil {
		t.Fatalf("create rule error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var created struct {
		ID string `json:"id"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	if created.ID == "" {
		t.Fatal("created rule has no id")
	}

	// List.
	resp, err = client.Get(ts.URL + "/api/rules")
	if err != nil {
		t.Fatalf("list rules error = %v", err)
	}
	var list struct {
		Rules []struct {
			Label   string `json:"label"`
			Pattern string `json:"pattern"`
		} `json:"rules"`
	}
	json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()

	if len(list.Rules) != 1 || list.Rules[0].Pattern != "10001" {
		t.Errorf("list = %+v, want one rule with pattern 10001", list.Rules)
	}
}

func TestServer_Settings(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/settings",
		strings.NewReader(`{"extractor_strategy": "position", "smoothing_window": "7"}`))
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("put settings error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var settings map[string]string
	json.NewDecoder(resp.Body).Decode(&settings)
	if settings["extractor_strategy"] != "position" {
		t.Errorf("extractor_strategy = %q, want %q", settings["extractor_strategy"], "position")
	}
}

func TestServer_Settings_InvalidStrategy(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPut, "/api/settings",
		strings.NewReader(`{"extractor_strategy": "telepathy"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestServer_RulesChanged_LogsReloadFailure(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}

	a := app.New(app.Config{Store: s})
	srv := New(Config{Store: s, App: a})

	// A closed store makes the reload fail; the failure must be visible
	// in the log rather than silently dropped.
	s.Close()

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	srv.onRulesChanged()

	if !strings.Contains(buf.String(), "Failed to reload rules") {
		t.Errorf("log output = %q, want reload failure message", buf.String())
	}
}
