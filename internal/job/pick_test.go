package job

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cmdjob/internal"
)

func TestScorePDFText(t *testing.T) {
	text := "Item Details Quantity Version\n" +
		"C100 Widget bracket 10\n" +
		"F200 Frame 4\n"

	withPO := scorePDFText(text, "PO5521 order.pdf", "PO5521")
	withoutPO := scorePDFText(text, "scan.pdf", "PO5521")
	if withPO-withoutPO != scoreFilenamePO {
		t.Fatalf("withPO=%d withoutPO=%d", withPO, withoutPO)
	}
	if withoutPO < scoreHeaders {
		t.Fatalf("score=%d", withoutPO)
	}
	if got := scorePDFText("", "scan.pdf", ""); got != 0 {
		t.Fatalf("score=%d", got)
	}
}

func TestPickItemsPDFLargestFallback(t *testing.T) {
	dir := t.TempDir()
	// Unreadable stand-ins: zero text score, so size decides.
	writeFile(t, dir, "a.pdf", 100)
	writeFile(t, dir, "b.pdf", 300)
	writeFile(t, dir, "FORM-019 lot.pdf", 500)

	picked, err := PickItemsPDF(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(picked) != "b.pdf" {
		t.Fatalf("picked=%q", picked)
	}
}

func TestPickItemsPDFNone(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "FORM-019.pdf", 10)

	_, err := PickItemsPDF(dir, "")
	if !errors.Is(err, internal.ErrNoSourcePDF) {
		t.Fatalf("err=%v", err)
	}
}

func TestFindForm019(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "order.pdf", 10)
	writeFile(t, dir, "form_019 250114.AB.01.pdf", 10)

	path, ok := FindForm019(dir)
	if !ok || filepath.Base(path) != "form_019 250114.AB.01.pdf" {
		t.Fatalf("path=%q ok=%v", path, ok)
	}

	if _, ok := FindForm019(t.TempDir()); ok {
		t.Fatal("unexpected form019")
	}
}

func TestLotFromFilename(t *testing.T) {
	lot, ok := LotFromFilename("FORM-019 250114.AB.01.pdf")
	if !ok || lot != "250114.AB.01" {
		t.Fatalf("lot=%q ok=%v", lot, ok)
	}
	if _, ok := LotFromFilename("order.pdf"); ok {
		t.Fatal("unexpected lot")
	}
}

func writeFile(t *testing.T, dir, name string, size int) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), bytes.Repeat([]byte("x"), size), 0o644); err != nil {
		t.Fatal(err)
	}
}
