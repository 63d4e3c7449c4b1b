package templates

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"cmdjob/internal"
)

// FillWorkbook copies an .xlsx/.xlsm template to dst with every `{{key}}`
// token replaced. Unmatched tokens are stripped like in FillDocx.
func FillWorkbook(src, dst string, values map[string]string) error {
	f, err := excelize.OpenFile(src)
	if err != nil {
		return fmt.Errorf("open workbook %s: %w", src, err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		for rowIdx, row := range rows {
			for colIdx, value := range row {
				if !strings.Contains(value, "{{") {
					continue
				}
				axis, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
				if err != nil {
					return fmt.Errorf("cell name (%d,%d): %w", colIdx+1, rowIdx+1, err)
				}
				if err := f.SetCellValue(sheet, axis, fillCell(value, values)); err != nil {
					return fmt.Errorf("set cell %s!%s: %w", sheet, axis, err)
				}
			}
		}
	}

	if err := f.SaveAs(dst); err != nil {
		return fmt.Errorf("save workbook %s: %w", dst, err)
	}
	return nil
}

func fillCell(s string, values map[string]string) string {
	for key, value := range values {
		s = strings.ReplaceAll(s, "{{"+key+"}}", value)
	}
	return reLeftoverBraces.ReplaceAllString(s, "")
}

// CheckWorkbookPlaceholders fails when any `{{` token survived filling.
func CheckWorkbookPlaceholders(path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		for _, row := range rows {
			for _, value := range row {
				if strings.Contains(value, "{{") {
					return fmt.Errorf("%w: sheet %s in %s", internal.ErrPlaceholderLeft, sheet, path)
				}
			}
		}
	}
	return nil
}
