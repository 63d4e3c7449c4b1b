package job

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestZipJobDir(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "J-1042 (Acme)")
	mkdirs(t, dir, "CMD")
	writeFile(t, dir, "run_report.txt", 16)
	writeFile(t, filepath.Join(dir, "CMD"), "order.pdf", 32)

	zipPath, err := ZipJobDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if zipPath != filepath.Join(parent, "J-1042 (Acme).zip") {
		t.Fatalf("zipPath=%q", zipPath)
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	names := map[string]bool{}
	for _, f := range r.File {
		names[f.Name] = true
	}
	if !names["J-1042 (Acme)/run_report.txt"] || !names["J-1042 (Acme)/CMD/order.pdf"] {
		t.Fatalf("names=%v", names)
	}
}

func TestMoveZip(t *testing.T) {
	parent := t.TempDir()
	zipPath := filepath.Join(parent, "job.zip")
	if err := os.WriteFile(zipPath, []byte("zipdata"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "finished")
	moved, err := MoveZip(zipPath, out)
	if err != nil {
		t.Fatal(err)
	}
	if moved != filepath.Join(out, "job.zip") {
		t.Fatalf("moved=%q", moved)
	}
	if _, err := os.Stat(zipPath); !os.IsNotExist(err) {
		t.Fatalf("original still present: %v", err)
	}
	data, err := os.ReadFile(moved)
	if err != nil || string(data) != "zipdata" {
		t.Fatalf("data=%q err=%v", data, err)
	}
}
