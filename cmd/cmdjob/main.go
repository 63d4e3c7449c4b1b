package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"cmdjob/internal/config"
	"cmdjob/internal/job"
	"cmdjob/internal/observability/logging"
	"cmdjob/internal/pdfread"
	"cmdjob/internal/pipeline"
	"cmdjob/internal/storage"
	"cmdjob/internal/templates"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger := logging.NewJSONLogger("cmdjob", cfg.LogLevel)

	cmd := os.Args[1]
	switch cmd {
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		jobName := fs.String("job", cfg.JobFolderName, "job folder name")
		jobNumber := fs.String("job-number", cfg.JobNumber, "job number (defaults to folder name before first \" (\")")
		sterile := fs.Bool("sterile", cfg.Sterile, "use the sterile CofC template")
		dryRun := fs.Bool("dry-run", false, "extract and report only, write nothing")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*jobName) == "" {
			must(fmt.Errorf("--job (or JOB_FOLDER_NAME) is required"))
		}
		must(cfg.Require("RUN_DATA_ROOT", cfg.RunDataRoot))
		must(cfg.Require("TEMPLATES_MAP_PATH", cfg.TemplatesMapPath))

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		runner := &job.Runner{Cfg: cfg, DB: db, Log: logger, Service: "cmdjob"}
		out, err := runner.Run(context.Background(), job.RunRequest{
			JobFolderName: *jobName,
			JobNumber:     *jobNumber,
			Sterile:       *sterile,
			DryRun:        *dryRun,
		})
		if out.TraceID != "" {
			fmt.Printf("run %s status=%s pos=%d zip=%s\n", out.TraceID, out.Status, len(out.Results), out.ZipPath)
		}
		must(err)
	case "po:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dir := fs.String("dir", "", "PO source folder path")
		jobNumber := fs.String("job-number", cfg.JobNumber, "job number")
		sterile := fs.Bool("sterile", cfg.Sterile, "use the sterile CofC template")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*dir) == "" {
			must(fmt.Errorf("--dir is required"))
		}
		must(cfg.Require("TEMPLATES_MAP_PATH", cfg.TemplatesMapPath))

		tm, err := templates.Load(cfg.TemplatesMapPath)
		must(err)
		must(tm.Validate(cfg.TemplateRoot))

		builder := &job.Builder{Cfg: cfg, Map: tm, Log: logger}
		result := builder.ProcessPO(*dir, *jobNumber, *sterile, false)
		must(result.Err)
		fmt.Printf("po processed %s lot=%s items=%d warnings=%d\n", result.PONumber, result.LotNumber, len(result.Items), len(result.Warnings))
	case "extract":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		pdfPath := fs.String("pdf", "", "source pdf path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*pdfPath) == "" {
			must(fmt.Errorf("--pdf is required"))
		}

		raw, err := pdfread.Text(*pdfPath)
		must(err)
		extraction, err := pipeline.Extract(raw)
		must(err)
		encoded, err := json.MarshalIndent(extraction, "", "  ")
		must(err)
		fmt.Println(string(encoded))
	case "templates:check":
		must(cfg.Require("TEMPLATES_MAP_PATH", cfg.TemplatesMapPath))
		tm, err := templates.Load(cfg.TemplatesMapPath)
		must(err)
		must(tm.Validate(cfg.TemplateRoot))
		fmt.Printf("templates map ok: %d prefixes, cofc non-sterile=%s sterile=%s\n",
			len(tm.Prefixes), tm.CoCNonSterile, tm.CoCSterile)
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs to list")
		_ = fs.Parse(os.Args[2:])

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		runs, err := db.ListRuns(*limit)
		must(err)
		for _, run := range runs {
			fmt.Printf("%s  %-8s  job=%s  folder=%q  counts=%s\n", run.CreatedAt, run.Status, run.JobNumber, run.JobFolder, run.CountsJSON)
			fmt.Printf("  trace=%s\n", run.TraceID)
		}
	case "runs:show":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		trace := fs.String("trace", "", "run trace id")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*trace) == "" {
			must(fmt.Errorf("--trace is required"))
		}

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		run, err := db.GetRunByTrace(*trace)
		must(err)
		if run == nil {
			must(fmt.Errorf("run not found: trace=%s", *trace))
		}
		fmt.Printf("run %s status=%s job=%s folder=%q at=%s\n", run.TraceID, run.Status, run.JobNumber, run.JobFolder, run.CreatedAt)
		rows, err := db.ListPOResults(run.ID)
		must(err)
		for _, row := range rows {
			if row.Status == "ok" {
				fmt.Printf("  OK  %s -> %s (%s) items=%d warnings=%s\n", row.SourceDir, row.PONumber, row.LotNumber, row.ItemCount, row.WarningsJSON)
			} else {
				fmt.Printf("  ERR %s: %s\n", row.SourceDir, row.ErrorText)
			}
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: cmdjob <command>")
	fmt.Println("commands:")
	fmt.Println("  run --job=\"J-1042 (Acme)\" [--job-number=J-1042] [--sterile] [--dry-run]")
	fmt.Println("  po:process --dir=/path/to/PO5521 [--job-number=...] [--sterile]")
	fmt.Println("  extract --pdf=/path/to/order.pdf")
	fmt.Println("  templates:check")
	fmt.Println("  runs:list [--limit=20]")
	fmt.Println("  runs:show --trace=<uuid>")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
