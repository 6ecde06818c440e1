package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// ExpandGlobs expands export paths and glob patterns into a sorted,
// deduplicated list of files. Directories matched by a glob are skipped.
// Patterns that match nothing are returned as-is so the caller reports a
// file-not-found error for them.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			result = append(result, path)
		}
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			add(pattern)
			continue
		}

		for _, match := range matches {
			if info, err := os.Stat(match); err == nil && info.IsDir() {
				continue
			}
			add(match)
		}
	}

	sort.Strings(result)
	return result, nil
}

// ReadExport reads an export file. The content must be valid UTF-8; a
// leading byte order mark is removed.
func ReadExport(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return "", fmt.Errorf("reading export %s: %w", path, err)
	}
	return DecodeExport(data)
}

// DecodeExport validates raw export bytes as UTF-8 and strips a BOM.
func DecodeExport(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("export is not valid UTF-8: %w", ErrInvalidExport)
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}
