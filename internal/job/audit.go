package job

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"cmdjob/internal"
)

var auditHeader = []string{"Part #", "Description", "Version", "Qty", "Documents"}

// WriteAuditCSV writes item_audit.csv with one row per retained item.
func WriteAuditCSV(path string, items []internal.ItemRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create audit csv %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(auditHeader); err != nil {
		return fmt.Errorf("write audit header: %w", err)
	}
	for _, item := range items {
		row := []string{
			item.Code,
			item.Description,
			item.Version,
			item.Quantity,
			strings.Join(item.Tags.Strings(), "|"),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write audit row %s: %w", item.Code, err)
		}
	}
	w.Flush()
	return w.Error()
}
