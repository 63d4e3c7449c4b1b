package templates

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"cmdjob/internal"
)

func writeWorkbook(t *testing.T, cells map[string]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for axis, value := range cells {
		if err := f.SetCellValue("Sheet1", axis, value); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "template.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFillWorkbook(t *testing.T) {
	src := writeWorkbook(t, map[string]string{
		"A1": "Job: {{Job Number}}",
		"B1": "{{Total Quantity}}",
		"A2": "{{Item 1}}",
		"A3": "{{Item 2}}",
	})
	dst := filepath.Join(t.TempDir(), "out.xlsx")

	err := FillWorkbook(src, dst, map[string]string{
		"Job Number":     "J-77",
		"Total Quantity": "12",
		"Item 1":         "C100",
	})
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if got, _ := f.GetCellValue("Sheet1", "A1"); got != "Job: J-77" {
		t.Fatalf("a1=%q", got)
	}
	if got, _ := f.GetCellValue("Sheet1", "B1"); got != "12" {
		t.Fatalf("b1=%q", got)
	}
	if got, _ := f.GetCellValue("Sheet1", "A2"); got != "C100" {
		t.Fatalf("a2=%q", got)
	}
	if got, _ := f.GetCellValue("Sheet1", "A3"); got != "" {
		t.Fatalf("a3=%q", got)
	}
	if err := CheckWorkbookPlaceholders(dst); err != nil {
		t.Fatal(err)
	}
}

func TestCheckWorkbookPlaceholders(t *testing.T) {
	src := writeWorkbook(t, map[string]string{"A1": "{{Lot Number}}"})
	if err := CheckWorkbookPlaceholders(src); !errors.Is(err, internal.ErrPlaceholderLeft) {
		t.Fatalf("err=%v", err)
	}
}
