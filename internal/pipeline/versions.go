package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"cmdjob/internal"
	"cmdjob/internal/util"
)

const versionSectionWindow = 80

var (
	rePrimaryHeading = regexp.MustCompile(`(?i)primary part versions`)
	reDerivedHeading = regexp.MustCompile(`(?i)derived part versions`)

	// "<code> ... <version>" with colon, dash or whitespace between; version
	// tokens look like "3", "v2.1", "2.1.0".
	reVersionPair = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._\-]*[A-Za-z0-9])(?:\s*[:\-]\s*|\s+)(v?\d+(?:\.\d+)*)$`)
)

// ResolveVersions scans "Primary Part Versions" and "Derived Part Versions"
// sections and attaches a version to each item. Primary sections are read
// first and the first value recorded for a code wins, so a Primary entry beats
// a Derived one. Items absent from both fall back to the version column of
// their table row; with neither, the version stays blank and a warning is
// recorded. Output depends only on document order, never map iteration.
func ResolveVersions(text string, items []internal.ItemRecord) ([]internal.ItemRecord, []internal.Warning) {
	lines := strings.Split(text, "\n")

	versions := map[string]string{}
	collect := func(heading *regexp.Regexp) {
		for i, line := range lines {
			if !heading.MatchString(line) {
				continue
			}
			end := i + 1 + versionSectionWindow
			if end > len(lines) {
				end = len(lines)
			}
			for _, sectionLine := range lines[i+1 : end] {
				if rePrimaryHeading.MatchString(sectionLine) || reDerivedHeading.MatchString(sectionLine) {
					break
				}
				code, ver, ok := parseVersionPair(sectionLine)
				if !ok {
					continue
				}
				key := util.NormalizeCode(code)
				if _, exists := versions[key]; !exists {
					versions[key] = ver
				}
			}
		}
	}
	collect(rePrimaryHeading)
	collect(reDerivedHeading)

	var warns []internal.Warning
	out := make([]internal.ItemRecord, len(items))
	for i, it := range items {
		if ver, ok := versions[util.NormalizeCode(it.Code)]; ok {
			it.Version = ver
		} else if it.VersionTable != "" {
			it.Version = it.VersionTable
		} else {
			warns = append(warns, internal.Warning{
				Kind:    internal.WarnUnresolvedVersion,
				Message: fmt.Sprintf("no version found for %s", it.Code),
			})
		}
		out[i] = it
	}
	return out, warns
}

func parseVersionPair(line string) (code, version string, ok bool) {
	m := reVersionPair.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
