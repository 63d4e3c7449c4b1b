package job

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"cmdjob/internal"
	"cmdjob/internal/pdfread"
	"cmdjob/internal/pipeline"
)

var (
	reForm019  = regexp.MustCompile(`(?i)FORM[-_ ]?019`)
	reLotToken = regexp.MustCompile(`\d{6}\.[A-Z]{2}\.\d{2}`)
)

const (
	scoreHeaders     = 100
	scorePerRow      = 5
	scoreRowCap      = 20
	scoreFilenamePO  = 5
	scorePagesToRead = 3
)

// PickItemsPDF selects the main PO document in a source folder. Candidates
// are scored by the text of their first pages; FORM-019 lot sheets are never
// candidates. Ties break by file size, and when nothing scores the largest
// PDF wins.
func PickItemsPDF(dir, poToken string) (string, error) {
	pdfs, err := listPDFs(dir)
	if err != nil {
		return "", err
	}

	type candidate struct {
		path  string
		score int
		size  int64
	}
	var candidates []candidate
	for _, path := range pdfs {
		if reForm019.MatchString(filepath.Base(path)) {
			continue
		}
		text, err := pdfread.TextFirstPages(path, scorePagesToRead)
		if err != nil {
			text = ""
		}
		candidates = append(candidates, candidate{
			path:  path,
			score: scorePDFText(text, filepath.Base(path), poToken),
			size:  pdfread.FileSize(path),
		})
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w in %s", internal.ErrNoSourcePDF, dir)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].size != candidates[j].size {
			return candidates[i].size > candidates[j].size
		}
		return candidates[i].path < candidates[j].path
	})
	return candidates[0].path, nil
}

func scorePDFText(text, filename, poToken string) int {
	score := 0
	lower := strings.ToLower(text)
	hasQty := strings.Contains(lower, "quantity") || strings.Contains(lower, "qty")
	hasVersion := strings.Contains(lower, "version")
	hasItems := strings.Contains(lower, "item") || strings.Contains(lower, "details")
	if hasQty && hasVersion && hasItems {
		score += scoreHeaders
	}

	rows := pipeline.CountItemRows(text)
	if rows > scoreRowCap {
		rows = scoreRowCap
	}
	score += scorePerRow * rows

	if poToken != "" {
		if token, ok := POTokenFromName(filename); ok && token == poToken {
			score += scoreFilenamePO
		}
	}
	return score
}

// FindForm019 returns the first FORM-019 PDF in the folder, in name order.
func FindForm019(dir string) (string, bool) {
	pdfs, err := listPDFs(dir)
	if err != nil {
		return "", false
	}
	for _, path := range pdfs {
		if reForm019.MatchString(filepath.Base(path)) {
			return path, true
		}
	}
	return "", false
}

// LotFromFilename extracts a lot token of the form 250114.AB.01 from a file
// name. FORM-019 scans are often saved with the lot as the name.
func LotFromFilename(name string) (string, bool) {
	token := reLotToken.FindString(name)
	return token, token != ""
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source dir %s: %w", dir, err)
	}
	var pdfs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			pdfs = append(pdfs, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(pdfs)
	return pdfs, nil
}
