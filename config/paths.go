package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolveFiles expands a document path to the regular files it names,
// sorted. Relative paths are taken from baseDir. A plain path is returned
// as is, without checking that it exists; a glob matching nothing yields an
// empty slice.
func ResolveFiles(path, baseDir string) ([]string, error) {
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}

	if !containsGlob(path) {
		return []string{path}, nil
	}

	absPattern, err := makeAbsolutePattern(path)
	if err != nil {
		return nil, err
	}

	matches, err := doublestar.FilepathGlob(absPattern)
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	files := make([]string, 0, len(matches))
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			files = append(files, match)
		}
	}
	slices.Sort(files)

	return files, nil
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// makeAbsolutePattern converts a relative pattern to absolute, preserving
// the glob part.
func makeAbsolutePattern(pattern string) (string, error) {
	if filepath.IsAbs(pattern) {
		return pattern, nil
	}

	globIdx := strings.IndexAny(pattern, "*?[{")
	if globIdx == -1 {
		return filepath.Abs(pattern)
	}

	dirPart, globPart := ".", string(filepath.Separator)+pattern
	if lastSep := strings.LastIndexAny(pattern[:globIdx], "/"+string(filepath.Separator)); lastSep >= 0 {
		dirPart, globPart = pattern[:lastSep], pattern[lastSep:]
	}

	absDir, err := filepath.Abs(dirPart)
	if err != nil {
		return "", err
	}

	return absDir + filepath.FromSlash(globPart), nil
}

// GlobRoot returns the directory part of path before its first glob
// character, or the directory of path when it has none.
func GlobRoot(path string) string {
	globIdx := strings.IndexAny(path, "*?[{")
	if globIdx == -1 {
		return filepath.Dir(path)
	}
	if lastSep := strings.LastIndexAny(path[:globIdx], "/"+string(filepath.Separator)); lastSep >= 0 {
		if lastSep == 0 {
			return string(filepath.Separator)
		}
		return path[:lastSep]
	}
	return "."
}
