package pipeline

import (
	"regexp"
	"strings"
)

var (
	reControl    = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
	reSpaceRun   = regexp.MustCompile(`[ \t\p{Zs}]+`)
	reHyphenWrap = regexp.MustCompile(`-\n([a-z])`)
	reBlankRun   = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText turns raw extracted PDF text into one logical row per line:
// control characters stripped, bullets rewritten, whitespace runs collapsed,
// and hyphenated line wraps rejoined. Idempotent.
func NormalizeText(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = reControl.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "•", "- ")
	s = strings.ReplaceAll(s, "�", "")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(reSpaceRun.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")

	s = reHyphenWrap.ReplaceAllString(s, "$1")
	s = reBlankRun.ReplaceAllString(s, "\n\n")
	return strings.Trim(s, "\n")
}
