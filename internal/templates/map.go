package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"cmdjob/internal"
)

var (
	reItemStartsWith = regexp.MustCompile(`(?i)item\s+starts?\s+with\s+([A-Za-z0-9]+)`)
	// Non-sterile must be tried first or "CofC for non-sterile" matches the
	// sterile rule.
	reCoCNonSterile = regexp.MustCompile(`(?i)cofc\s+for\s+non[-\s]?sterile`)
	reCoCSterile    = regexp.MustCompile(`(?i)cofc\s+for\s+sterile`)
)

type PrefixTemplates struct {
	FinalQC   string
	Dimension string
}

type Map struct {
	Prefixes      map[string]PrefixTemplates
	CoCNonSterile string
	CoCSterile    string
}

// Load reads the templates-map workbook. Rows are matched by their first
// column: "Item starts with X" rows carry the Final QC template in column B
// and the Dimension template in column C; "CofC for ..." rows carry the CoC
// docx in column B.
func Load(path string) (Map, error) {
	m := Map{Prefixes: map[string]PrefixTemplates{}}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return m, fmt.Errorf("open templates map %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return m, fmt.Errorf("read templates map sheet %s: %w", sheet, err)
	}

	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		label := strings.TrimSpace(row[0])
		if label == "" {
			continue
		}

		if match := reItemStartsWith.FindStringSubmatch(label); match != nil {
			prefix := strings.ToUpper(match[1])
			m.Prefixes[prefix] = PrefixTemplates{
				FinalQC:   cell(row, 1),
				Dimension: cell(row, 2),
			}
			continue
		}
		if reCoCNonSterile.MatchString(label) {
			m.CoCNonSterile = cell(row, 1)
			continue
		}
		if reCoCSterile.MatchString(label) {
			m.CoCSterile = cell(row, 1)
		}
	}

	return m, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// CoCFor returns the CoC template for the run's sterility mode.
func (m Map) CoCFor(sterile bool) string {
	if sterile {
		return m.CoCSterile
	}
	return m.CoCNonSterile
}

// Lookup returns the QC/Dimension templates for an item-code prefix.
func (m Map) Lookup(prefix string) (PrefixTemplates, bool) {
	pt, ok := m.Prefixes[strings.ToUpper(prefix)]
	return pt, ok
}

// SortedPrefixes returns the mapped prefixes in lexical order.
func (m Map) SortedPrefixes() []string {
	out := make([]string, 0, len(m.Prefixes))
	for p := range m.Prefixes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Validate checks that every referenced template exists under root and has
// the right extension: .docx for CoC, .xlsx/.xlsm for QC and Dimension.
func (m Map) Validate(root string) error {
	var problems []string

	checkWorkbook := func(kind, prefix, name string) {
		if name == "" {
			problems = append(problems, fmt.Sprintf("prefix %s: no %s template", prefix, kind))
			return
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".xlsx" && ext != ".xlsm" {
			problems = append(problems, fmt.Sprintf("prefix %s: %s template %s is not .xlsx/.xlsm", prefix, kind, name))
			return
		}
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			problems = append(problems, fmt.Sprintf("prefix %s: %s template %s not found", prefix, kind, name))
		}
	}
	checkDocx := func(kind, name string) {
		if name == "" {
			problems = append(problems, fmt.Sprintf("no %s template", kind))
			return
		}
		if strings.ToLower(filepath.Ext(name)) != ".docx" {
			problems = append(problems, fmt.Sprintf("%s template %s is not .docx", kind, name))
			return
		}
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			problems = append(problems, fmt.Sprintf("%s template %s not found", kind, name))
		}
	}

	for _, prefix := range m.SortedPrefixes() {
		pt := m.Prefixes[prefix]
		checkWorkbook("final qc", prefix, pt.FinalQC)
		checkWorkbook("dimension", prefix, pt.Dimension)
	}
	checkDocx("non-sterile cofc", m.CoCNonSterile)
	checkDocx("sterile cofc", m.CoCSterile)

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", internal.ErrTemplateMissing, strings.Join(problems, "; "))
	}
	return nil
}
