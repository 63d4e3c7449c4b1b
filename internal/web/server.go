package web

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cmdjob/internal/config"
	"cmdjob/internal/job"
	"cmdjob/internal/observability/metrics"
	"cmdjob/internal/storage"
)

const serviceName = "cmdjob-web"

type buildJob struct {
	mu        sync.Mutex
	status    string // queued, running, done, failed
	percent   int
	errText   string
	workspace string
	zipPath   string
}

func (j *buildJob) set(status string, percent int, errText string) {
	j.mu.Lock()
	j.status = status
	j.percent = percent
	j.errText = errText
	j.mu.Unlock()
}

func (j *buildJob) snapshot() (string, int, string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status, j.percent, j.errText
}

// Server serves the build-a-job-folder page and runs builds in isolated
// temp workspaces so concurrent builds never touch the live job folders.
type Server struct {
	cfg     config.Config
	db      *storage.DB
	log     *slog.Logger
	metrics *metrics.ServerMetrics
	slots   chan struct{}

	mu   sync.Mutex
	jobs map[string]*buildJob
}

func NewServer(cfg config.Config, db *storage.DB, log *slog.Logger, m *metrics.ServerMetrics) *Server {
	slots := cfg.WebBuildSlots
	if slots < 1 {
		slots = 1
	}
	return &Server{
		cfg:     cfg,
		db:      db,
		log:     log,
		metrics: m,
		slots:   make(chan struct{}, slots),
		jobs:    map[string]*buildJob{},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleIndex)
	r.Post("/start", s.handleStart)
	r.Get("/progress", s.handleProgress)
	r.Get("/download", s.handleDownload)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": serviceName})
	})
	if s.metrics != nil {
		r.Get("/metrics", s.metrics.Handler().ServeHTTP)
		return s.metrics.Middleware(serviceName, r)
	}
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = indexPage.Execute(w, nil)
}

type startRequest struct {
	JobFolderName string `json:"job_folder_name"`
	Sterile       bool   `json:"sterile"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.JobFolderName == "" {
		http.Error(w, "job_folder_name is required", http.StatusBadRequest)
		return
	}

	id := uuid.NewString()
	bj := &buildJob{status: "queued"}
	s.mu.Lock()
	s.jobs[id] = bj
	s.mu.Unlock()

	go s.build(id, bj, req)

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": id})
}

func (s *Server) build(id string, bj *buildJob, req startRequest) {
	s.slots <- struct{}{}
	defer func() { <-s.slots }()

	log := s.log.With("webJobId", id, "jobFolder", req.JobFolderName)
	bj.set("running", 5, "")

	workspace, err := os.MkdirTemp("", "cmdjob-web-*")
	if err != nil {
		bj.set("failed", 100, fmt.Sprintf("create workspace: %v", err))
		return
	}
	bj.mu.Lock()
	bj.workspace = workspace
	bj.mu.Unlock()

	fail := func(msg string) {
		bj.set("failed", 100, msg)
		_ = os.RemoveAll(workspace)
	}

	srcDir, err := job.ResolveJobDir(s.cfg.RunDataRoot, req.JobFolderName)
	if err != nil {
		fail(err.Error())
		return
	}
	workDir := filepath.Join(workspace, filepath.Base(srcDir))
	if err := job.CopyTree(srcDir, workDir); err != nil {
		fail(fmt.Sprintf("copy into workspace: %v", err))
		return
	}
	bj.set("running", 10, "")

	cfg := s.cfg
	cfg.RunDataRoot = workspace
	cfg.OutputRoot = "" // zip stays in the workspace for download

	runner := &job.Runner{
		Cfg:     cfg,
		DB:      s.db,
		Log:     log,
		Metrics: s.metrics,
		Service: serviceName,
		Progress: func(done, total int) {
			bj.set("running", 10+done*85/total, "")
		},
	}
	out, err := runner.Run(context.Background(), job.RunRequest{
		JobFolderName: req.JobFolderName,
		Sterile:       req.Sterile,
	})
	if err != nil {
		log.Error("web build failed", "error", err)
		fail(err.Error())
		return
	}

	bj.mu.Lock()
	bj.zipPath = out.ZipPath
	bj.mu.Unlock()
	bj.set("done", 100, "")
	log.Info("web build done", "zip", out.ZipPath)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	bj, ok := s.job(r.URL.Query().Get("job_id"))
	if !ok {
		http.Error(w, "unknown job_id", http.StatusNotFound)
		return
	}
	status, percent, errText := bj.snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"percent": percent,
		"error":   errText,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("job_id")
	bj, ok := s.job(id)
	if !ok {
		http.Error(w, "unknown job_id", http.StatusNotFound)
		return
	}
	status, _, _ := bj.snapshot()
	if status != "done" {
		http.Error(w, "build not finished", http.StatusConflict)
		return
	}

	bj.mu.Lock()
	zipPath := bj.zipPath
	workspace := bj.workspace
	bj.mu.Unlock()
	if zipPath == "" {
		http.Error(w, "no archive produced", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(zipPath)))
	http.ServeFile(w, r, zipPath)

	s.mu.Lock()
	delete(s.jobs, id)
	s.mu.Unlock()
	if workspace != "" {
		if err := os.RemoveAll(workspace); err != nil {
			s.log.Error("remove workspace failed", "workspace", workspace, "error", err)
		}
	}
}

func (s *Server) job(id string) (*buildJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bj, ok := s.jobs[id]
	return bj, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var indexPage = template.Must(template.New("index").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Job Folder Builder</title>
<style>
body { font-family: sans-serif; max-width: 640px; margin: 40px auto; }
#bar { width: 100%; background: #eee; height: 24px; border-radius: 4px; }
#fill { width: 0; background: #4a90d9; height: 100%; border-radius: 4px; transition: width .3s; }
#error { color: #b00; }
</style>
</head>
<body>
<h1>Job Folder Builder</h1>
<p>
  <label>Job folder name <input id="name" size="40" placeholder="J-1042 (Acme Widgets PO5521)"></label>
</p>
<p>
  <label><input type="checkbox" id="sterile"> Sterile</label>
</p>
<p><button id="start">Build</button></p>
<div id="bar"><div id="fill"></div></div>
<p id="status"></p>
<p id="error"></p>
<p><a id="download" style="display:none">Download job folder zip</a></p>
<script>
const start = document.getElementById("start");
start.onclick = async () => {
  start.disabled = true;
  document.getElementById("error").textContent = "";
  document.getElementById("download").style.display = "none";
  const resp = await fetch("/start", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({
      job_folder_name: document.getElementById("name").value,
      sterile: document.getElementById("sterile").checked,
    }),
  });
  if (!resp.ok) {
    document.getElementById("error").textContent = await resp.text();
    start.disabled = false;
    return;
  }
  const {job_id} = await resp.json();
  const timer = setInterval(async () => {
    const p = await (await fetch("/progress?job_id=" + job_id)).json();
    document.getElementById("fill").style.width = p.percent + "%";
    document.getElementById("status").textContent = p.status;
    if (p.status === "done") {
      clearInterval(timer);
      const a = document.getElementById("download");
      a.href = "/download?job_id=" + job_id;
      a.style.display = "inline";
      start.disabled = false;
    } else if (p.status === "failed") {
      clearInterval(timer);
      document.getElementById("error").textContent = p.error;
      start.disabled = false;
    }
  }, 750);
};
</script>
</body>
</html>
`))
