package templates

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"cmdjob/internal"
)

var reLeftoverBraces = regexp.MustCompile(`\{\{[^{}]*\}\}`)

// FillDocx copies a .docx template to dst, replacing every `{{key}}` token
// in the word/*.xml parts with its value. Tokens with no value are stripped:
// CoC templates carry more numbered rows than most POs have items.
func FillDocx(src, dst string, values map[string]string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open docx %s: %w", src, err)
	}
	defer r.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create docx %s: %w", dst, err)
	}
	defer out.Close()

	w := zip.NewWriter(out)
	for _, entry := range r.File {
		rc, err := entry.Open()
		if err != nil {
			return fmt.Errorf("read docx entry %s: %w", entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("read docx entry %s: %w", entry.Name, err)
		}

		if isDocxTextPart(entry.Name) {
			data = []byte(replaceTokens(string(data), values))
		}

		fw, err := w.CreateHeader(&zip.FileHeader{Name: entry.Name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("write docx entry %s: %w", entry.Name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("write docx entry %s: %w", entry.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close docx %s: %w", dst, err)
	}
	return nil
}

func isDocxTextPart(name string) bool {
	return strings.HasPrefix(name, "word/") && strings.HasSuffix(name, ".xml")
}

func replaceTokens(s string, values map[string]string) string {
	for key, value := range values {
		s = strings.ReplaceAll(s, "{{"+key+"}}", xmlEscape(value))
	}
	return reLeftoverBraces.ReplaceAllString(s, "")
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func xmlEscape(s string) string {
	return xmlEscaper.Replace(s)
}

// CheckDocxPlaceholders fails when any `{{` token survived filling.
func CheckDocxPlaceholders(path string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open docx %s: %w", path, err)
	}
	defer r.Close()

	for _, entry := range r.File {
		if !isDocxTextPart(entry.Name) {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return fmt.Errorf("read docx entry %s: %w", entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("read docx entry %s: %w", entry.Name, err)
		}
		if strings.Contains(string(data), "{{") {
			return fmt.Errorf("%w: %s in %s", internal.ErrPlaceholderLeft, entry.Name, path)
		}
	}
	return nil
}
