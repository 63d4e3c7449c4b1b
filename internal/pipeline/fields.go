package pipeline

import (
	"fmt"
	"regexp"

	"cmdjob/internal"
)

// Each extraction rule is its own pattern so a bad document can be diagnosed
// rule by rule. Rules run in order; first match in document order wins.
type fieldRule struct {
	name string
	re   *regexp.Regexp
}

var poRules = []fieldRule{
	{"po strict token", regexp.MustCompile(`\bPO(\d{4,})\b`)},
	{"po tolerant", regexp.MustCompile(`(?i)\bP\.?\s?O\.?[\s#:.\-]{0,4}(\d{4,})`)},
}

var lotRules = []fieldRule{
	{"lot number label", regexp.MustCompile(`(?i)\bLot\s*Number\s*[:#]?\s*([A-Za-z0-9.\-]+)`)},
	{"lot hash label", regexp.MustCompile(`(?i)\bLot\s*#\s*:?\s*([A-Za-z0-9.\-]+)`)},
	{"lot bare label", regexp.MustCompile(`(?i)\bLot\s*[:#]\s*([A-Za-z0-9.\-]+)`)},
}

// ExtractPONumber returns the PO number as "PO" plus digits, separators
// dropped ("PO-5521" resolves to "PO5521").
func ExtractPONumber(text string) (string, bool) {
	for _, rule := range poRules {
		if m := rule.re.FindStringSubmatch(text); m != nil {
			return "PO" + m[1], true
		}
	}
	return "", false
}

func ExtractLotNumber(text string) (string, bool) {
	for _, rule := range lotRules {
		if m := rule.re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func missingFieldWarning(field string) internal.Warning {
	return internal.Warning{
		Kind:    internal.WarnMissingField,
		Message: fmt.Sprintf("%s not found in source text", field),
	}
}
