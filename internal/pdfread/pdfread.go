package pdfread

import (
	"fmt"
	"os"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// Text returns the plain text of every page joined with newlines. Pages that
// fail to decode are skipped rather than failing the whole document.
func Text(path string) (string, error) {
	return textPages(path, 0)
}

// TextFirstPages reads at most n pages; used for scoring candidate PDFs
// without decoding whole documents.
func TextFirstPages(path string, n int) (string, error) {
	return textPages(path, n)
}

func textPages(path string, limit int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		if limit > 0 && i > limit {
			break
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}

func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
