package util

import (
	"regexp"
	"strings"
)

var reCodeShape = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]*$`)

func NormalizeCode(input string) string {
	s := strings.ToUpper(strings.TrimSpace(input))
	out := strings.Builder{}
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' || r == '/' {
			out.WriteRune(r)
		}
	}
	return out.String()
}

func LooksLikeCode(input string) bool {
	s := strings.TrimSpace(input)
	if len(s) < 2 {
		return false
	}
	return reCodeShape.MatchString(s)
}
