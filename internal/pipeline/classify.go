package pipeline

import (
	"regexp"
	"strings"

	"cmdjob/internal"
)

var reAprevo = regexp.MustCompile(`(?i)^aprevo\d+$`)

// Classify returns the document tags for an item code:
// aprevo rows are excluded entirely, digit-leading codes go to the CoC only,
// everything else gets all three documents. QC/Dimension inclusion is still
// gated later by whether a template mapping exists for the code's prefix.
func Classify(code string) internal.TagSet {
	code = strings.TrimSpace(code)
	if code == "" || reAprevo.MatchString(code) {
		return nil
	}
	if code[0] >= '0' && code[0] <= '9' {
		return internal.TagSet{internal.TagCoC}
	}
	return internal.TagSet{internal.TagCoC, internal.TagQC, internal.TagDimension}
}
