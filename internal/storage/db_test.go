package storage

import (
	"path/filepath"
	"testing"

	"cmdjob/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInsertAndListRuns(t *testing.T) {
	db := openTestDB(t)

	id, err := db.InsertRun(internal.RunRow{
		TraceID:     "trace-1",
		JobNumber:   "J-77",
		JobFolder:   "J-77 (Acme)",
		Status:      "ok",
		CountsJSON:  `{"pos":2}`,
		TimingsJSON: `{"total_s":1.5}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Fatalf("id=%d", id)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].TraceID != "trace-1" || runs[0].JobNumber != "J-77" {
		t.Fatalf("runs=%+v", runs)
	}
	if runs[0].CreatedAt == "" {
		t.Fatalf("createdAt empty")
	}
}

func TestGetRunByTrace(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.InsertRun(internal.RunRow{TraceID: "t1", JobNumber: "J1", JobFolder: "J1", Status: "ok", CountsJSON: "{}", TimingsJSON: "{}"}); err != nil {
		t.Fatal(err)
	}

	run, err := db.GetRunByTrace("t1")
	if err != nil {
		t.Fatal(err)
	}
	if run == nil || run.JobNumber != "J1" {
		t.Fatalf("run=%+v", run)
	}

	missing, err := db.GetRunByTrace("nope")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatalf("missing=%+v", missing)
	}
}

func TestPOResults(t *testing.T) {
	db := openTestDB(t)

	runID, err := db.InsertRun(internal.RunRow{TraceID: "t1", JobNumber: "J1", JobFolder: "J1", Status: "failed", CountsJSON: "{}", TimingsJSON: "{}"})
	if err != nil {
		t.Fatal(err)
	}

	for _, row := range []internal.PORow{
		{RunID: runID, SourceDir: "PO5521 Widgets", PONumber: "PO5521", LotNumber: "A7X9", Status: "ok", ItemCount: 2, WarningsJSON: "[]"},
		{RunID: runID, SourceDir: "PO1234 Bolts", Status: "error", WarningsJSON: "[]", ErrorText: "no source pdf"},
	} {
		if err := db.InsertPOResult(row); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := db.ListPOResults(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%+v", rows)
	}
	// sorted by sourceDir
	if rows[0].SourceDir != "PO1234 Bolts" || rows[0].ErrorText != "no source pdf" {
		t.Fatalf("row0=%+v", rows[0])
	}
	if rows[1].PONumber != "PO5521" || rows[1].ItemCount != 2 {
		t.Fatalf("row1=%+v", rows[1])
	}
}
