package job

import (
	"fmt"
	"os"
	"strings"

	"cmdjob/internal"
)

// POResult is the outcome of building one PO source folder.
type POResult struct {
	SourceDir string
	PONumber  string
	LotNumber string
	Items     []internal.ItemRecord
	Warnings  []internal.Warning
	Err       error
}

func (r POResult) OK() bool {
	return r.Err == nil
}

// WriteRunReport writes run_report.txt: one line per PO in the order given,
// then every accumulated warning, then a summary.
func WriteRunReport(path string, results []POResult) error {
	var b strings.Builder

	ok, failed, warnings := 0, 0, 0
	for _, r := range results {
		if r.OK() {
			ok++
			fmt.Fprintf(&b, "OK: %s -> %s (%s) items=%d\n", r.SourceDir, r.PONumber, r.LotNumber, len(r.Items))
		} else {
			failed++
			fmt.Fprintf(&b, "ERR: %s: %v\n", r.SourceDir, r.Err)
		}
		warnings += len(r.Warnings)
	}

	if warnings > 0 {
		b.WriteString("\nWarnings:\n")
		for _, r := range results {
			for _, w := range r.Warnings {
				name := r.PONumber
				if name == "" {
					name = r.SourceDir
				}
				fmt.Fprintf(&b, "  %s: [%s] %s\n", name, w.Kind, w.Message)
			}
		}
	}

	fmt.Fprintf(&b, "\nSummary: %d ok, %d failed, %d warnings\n", ok, failed, warnings)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write run report %s: %w", path, err)
	}
	return nil
}
