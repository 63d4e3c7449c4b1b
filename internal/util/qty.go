package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reNumericToken = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$|^\d+$`)
)

func NumericLooking(token string) bool {
	return reNumericToken.MatchString(strings.TrimSpace(token))
}

// ParseQuantity reads an integer part quantity, tolerating thousands commas.
func ParseQuantity(token string) (int, bool) {
	compact := strings.TrimSpace(token)
	if !reNumericToken.MatchString(compact) {
		return 0, false
	}
	parsed, err := strconv.Atoi(strings.ReplaceAll(compact, ",", ""))
	if err != nil {
		return 0, false
	}
	return parsed, true
}
