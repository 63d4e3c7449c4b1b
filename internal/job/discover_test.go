package job

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func mkdirs(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.MkdirAll(filepath.Join(root, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestResolveJobDirDirect(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "J-1042 (Acme)")

	dir, err := ResolveJobDir(root, "J-1042 (Acme)")
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join(root, "J-1042 (Acme)") {
		t.Fatalf("dir=%q", dir)
	}
}

func TestResolveJobDirNested(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, filepath.Join("2026 Q1", "J-1042 (Acme)"))

	dir, err := ResolveJobDir(root, "J-1042 (Acme)")
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join(root, "2026 Q1", "J-1042 (Acme)") {
		t.Fatalf("dir=%q", dir)
	}
}

func TestResolveJobDirAmbiguous(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, filepath.Join("a", "J-1"), filepath.Join("b", "J-1"))

	_, err := ResolveJobDir(root, "J-1")
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Fatalf("err=%v", err)
	}
}

func TestResolveJobDirMissing(t *testing.T) {
	if _, err := ResolveJobDir(t.TempDir(), "nope"); err == nil {
		t.Fatal("expected error")
	}
}

func TestEnsureFlatCMD(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "PO5521 Widgets")
	if err := EnsureFlatCMD(root); err != nil {
		t.Fatal(err)
	}

	mkdirs(t, root, "MBR")
	if err := EnsureFlatCMD(root); err == nil {
		t.Fatal("expected error for generic MBR dir")
	}
}

func TestFindSourcePODirs(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root,
		"PO5521 Widgets",
		"PO123 Bolts",
		"notes",
		"PO5521_A7X9_VSR MBR",
		"PO5521_A7X9_VSR S&C",
	)
	if err := os.WriteFile(filepath.Join(root, "PO999 readme.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	dirs, err := FindSourcePODirs(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) != 2 {
		t.Fatalf("dirs=%v", dirs)
	}
	if filepath.Base(dirs[0]) != "PO123 Bolts" || filepath.Base(dirs[1]) != "PO5521 Widgets" {
		t.Fatalf("dirs=%v", dirs)
	}
}

func TestPOTokenFromName(t *testing.T) {
	cases := map[string]string{
		"PO5521 Widget Order":  "PO5521",
		"acme po-123 brackets": "PO123",
		"PO_9876":              "PO9876",
	}
	for name, want := range cases {
		got, ok := POTokenFromName(name)
		if !ok || got != want {
			t.Fatalf("%s: got=%q ok=%v", name, got, ok)
		}
	}
	if _, ok := POTokenFromName("no purchase order here"); ok {
		t.Fatal("unexpected match")
	}
}
