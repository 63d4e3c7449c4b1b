package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cmdjob/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		RunDataRoot:   t.TempDir(),
		CMDRelPath:    "CMD",
		WebBuildSlots: 1,
	}
	return NewServer(cfg, nil, slog.New(slog.NewJSONHandler(io.Discard, nil)), nil)
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Job Folder Builder") {
		t.Fatalf("body=%q", rec.Body.String())
	}
}

func TestStartValidation(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/start", strings.NewReader("{}")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/start", strings.NewReader("not json")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code=%d", rec.Code)
	}
}

func TestStartAndProgressFailure(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/start",
		strings.NewReader(`{"job_folder_name":"J-404 (Missing)"}`)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var started struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &started); err != nil {
		t.Fatal(err)
	}
	if started.JobID == "" {
		t.Fatal("empty job_id")
	}

	// The job folder does not exist, so the build must end up failed.
	deadline := time.Now().Add(3 * time.Second)
	for {
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/progress?job_id="+started.JobID, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("code=%d", rec.Code)
		}
		var p struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
			t.Fatal(err)
		}
		if p.Status == "failed" {
			if p.Error == "" {
				t.Fatal("failed without error text")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("status=%q after deadline", p.Status)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestProgressUnknownJob(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/progress?job_id=nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code=%d", rec.Code)
	}
}

func TestDownloadUnknownJob(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download?job_id=nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code=%d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "cmdjob-web") {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
}
