package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"cmdjob/internal"
	"cmdjob/internal/config"
	"cmdjob/internal/observability/metrics"
	"cmdjob/internal/storage"
	"cmdjob/internal/templates"
)

// Runner drives a full job build: discovery, per-PO assembly, report,
// packaging, and run history. DB and Metrics may be nil.
type Runner struct {
	Cfg      config.Config
	DB       *storage.DB
	Log      *slog.Logger
	Metrics  *metrics.ServerMetrics
	Service  string
	Progress func(done, total int)
}

type RunResult struct {
	TraceID   string
	JobDir    string
	JobNumber string
	Status    string
	Results   []POResult
	ZipPath   string
}

type RunRequest struct {
	JobFolderName string
	JobNumber     string
	Sterile       bool
	DryRun        bool
}

// JobNumberFromFolderName derives the job number from a folder named like
// "J-1042 (Acme Widgets PO5521)".
func JobNumberFromFolderName(name string) string {
	if idx := strings.Index(name, " ("); idx > 0 {
		return strings.TrimSpace(name[:idx])
	}
	return strings.TrimSpace(name)
}

func (r *Runner) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	start := time.Now()
	out := RunResult{TraceID: uuid.NewString()}

	out.JobNumber = req.JobNumber
	if out.JobNumber == "" {
		out.JobNumber = JobNumberFromFolderName(req.JobFolderName)
	}
	log := r.Log.With("traceId", out.TraceID, "jobNumber", out.JobNumber)

	jobDir, err := ResolveJobDir(r.Cfg.RunDataRoot, req.JobFolderName)
	if err != nil {
		return out, err
	}
	out.JobDir = jobDir

	cmdRoot := filepath.Join(jobDir, r.Cfg.CMDRelPath)
	if err := EnsureFlatCMD(cmdRoot); err != nil {
		return out, err
	}

	tm, err := templates.Load(r.Cfg.TemplatesMapPath)
	if err != nil {
		return out, err
	}
	if !req.DryRun {
		if err := tm.Validate(r.Cfg.TemplateRoot); err != nil {
			return out, err
		}
	}

	dirs, err := FindSourcePODirs(cmdRoot)
	if err != nil {
		return out, err
	}
	if len(dirs) == 0 {
		return out, fmt.Errorf("no PO source folders under %s", cmdRoot)
	}
	log.Info("job build started", "jobDir", jobDir, "pos", len(dirs), "dryRun", req.DryRun)

	builder := &Builder{Cfg: r.Cfg, Map: tm, Log: log}
	for i, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("build canceled: %w", err)
		}
		result := builder.ProcessPO(dir, out.JobNumber, req.Sterile, req.DryRun)
		if result.OK() {
			log.Info("po built", "source", result.SourceDir, "po", result.PONumber, "lot", result.LotNumber, "items", len(result.Items))
		} else {
			log.Error("po failed", "source", result.SourceDir, "error", result.Err)
		}
		out.Results = append(out.Results, result)
		if r.Progress != nil {
			r.Progress(i+1, len(dirs))
		}
	}

	allOK := true
	warnings := 0
	for _, result := range out.Results {
		warnings += len(result.Warnings)
		if !result.OK() {
			allOK = false
		}
	}
	out.Status = "ok"
	if !allOK {
		out.Status = "failed"
	}
	if req.DryRun {
		out.Status = "dry-run"
	}

	if !req.DryRun {
		if err := WriteRunReport(filepath.Join(jobDir, "run_report.txt"), out.Results); err != nil {
			return out, err
		}
		if allOK {
			zipPath, err := ZipJobDir(jobDir)
			if err != nil {
				return out, err
			}
			if r.Cfg.OutputRoot != "" {
				zipPath, err = MoveZip(zipPath, r.Cfg.OutputRoot)
				if err != nil {
					return out, err
				}
			}
			out.ZipPath = zipPath
		}
	}

	elapsed := time.Since(start)
	r.record(req, out, warnings, elapsed)
	if r.Metrics != nil {
		r.Metrics.RecordBuild(r.Service, out.Status, elapsed, len(out.Results), warnings)
	}

	log.Info("job build finished", "status", out.Status, "pos", len(out.Results), "warnings", warnings, "zip", out.ZipPath, "elapsed", elapsed.Round(time.Millisecond).String())
	if !allOK && !req.DryRun {
		return out, fmt.Errorf("%d of %d po folders failed", failedCount(out.Results), len(out.Results))
	}
	return out, nil
}

func failedCount(results []POResult) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}

func (r *Runner) record(req RunRequest, out RunResult, warnings int, elapsed time.Duration) {
	if r.DB == nil {
		return
	}

	counts, _ := json.Marshal(map[string]int{
		"pos":      len(out.Results),
		"failed":   failedCount(out.Results),
		"warnings": warnings,
	})
	timings, _ := json.Marshal(map[string]float64{
		"total_s": elapsed.Seconds(),
	})

	runID, err := r.DB.InsertRun(internal.RunRow{
		TraceID:     out.TraceID,
		JobNumber:   out.JobNumber,
		JobFolder:   req.JobFolderName,
		Status:      out.Status,
		CountsJSON:  string(counts),
		TimingsJSON: string(timings),
	})
	if err != nil {
		r.Log.Error("insert run failed", "error", err)
		return
	}

	for _, result := range out.Results {
		row := internal.PORow{
			RunID:     runID,
			SourceDir: result.SourceDir,
			PONumber:  result.PONumber,
			LotNumber: result.LotNumber,
			Status:    "ok",
			ItemCount: len(result.Items),
		}
		if !result.OK() {
			row.Status = "error"
			row.ErrorText = result.Err.Error()
		}
		warnsJSON, _ := json.Marshal(result.Warnings)
		row.WarningsJSON = string(warnsJSON)
		if err := r.DB.InsertPOResult(row); err != nil {
			r.Log.Error("insert po result failed", "error", err)
		}
	}
}
