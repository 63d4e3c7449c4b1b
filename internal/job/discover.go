package job

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var rePOFolder = regexp.MustCompile(`(?i)PO[-_ ]?(\d{3,5})`)

// ResolveJobDir finds the job folder under root: an exact child first, then
// one level down. Several matches one level down is ambiguous and an error.
func ResolveJobDir(root, name string) (string, error) {
	direct := filepath.Join(root, name)
	if info, err := os.Stat(direct); err == nil && info.IsDir() {
		return direct, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("read run data root %s: %w", root, err)
	}

	var candidates []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		nested := filepath.Join(root, entry.Name(), name)
		if info, err := os.Stat(nested); err == nil && info.IsDir() {
			candidates = append(candidates, nested)
		}
	}
	sort.Strings(candidates)

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("job folder %q not found under %s", name, root)
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("job folder %q is ambiguous: %s", name, strings.Join(candidates, ", "))
	}
}

// EnsureFlatCMD verifies the CMD root uses one folder per PO. Generic mbr /
// s&c children mean the old hand-built layout, which the builder refuses.
func EnsureFlatCMD(cmdRoot string) error {
	entries, err := os.ReadDir(cmdRoot)
	if err != nil {
		return fmt.Errorf("read cmd root %s: %w", cmdRoot, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		switch strings.ToLower(entry.Name()) {
		case "mbr", "s&c":
			return fmt.Errorf("cmd root %s contains generic %q directory; expected one folder per PO", cmdRoot, entry.Name())
		}
	}
	return nil
}

// FindSourcePODirs lists the PO source folders under the CMD root, sorted by
// name. Already-built `*_VSR MBR` / `*_VSR S&C` outputs are skipped.
func FindSourcePODirs(cmdRoot string) ([]string, error) {
	entries, err := os.ReadDir(cmdRoot)
	if err != nil {
		return nil, fmt.Errorf("read cmd root %s: %w", cmdRoot, err)
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if isOutputDir(name) {
			continue
		}
		if !rePOFolder.MatchString(name) {
			continue
		}
		dirs = append(dirs, filepath.Join(cmdRoot, name))
	}
	sort.Strings(dirs)
	return dirs, nil
}

func isOutputDir(name string) bool {
	return strings.HasSuffix(name, "_VSR MBR") || strings.HasSuffix(name, "_VSR S&C")
}

// POTokenFromName extracts a normalized PO number ("PO" + digits) from a
// folder or file name.
func POTokenFromName(name string) (string, bool) {
	match := rePOFolder.FindStringSubmatch(name)
	if match == nil {
		return "", false
	}
	return "PO" + match[1], true
}
