package operation

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// expandTargets turns paths and globs into a list of files. Plain paths are
// kept even when they do not exist so that loading them reports the error.
// Globs expand to regular files only, sorted. Duplicates keep their first
// position.
func expandTargets(baseDir string, patterns, exclude []string) ([]string, error) {
	for _, ex := range exclude {
		if !doublestar.ValidatePattern(filepath.ToSlash(ex)) {
			return nil, errors.Errorf("invalid exclude pattern %q", ex)
		}
	}

	seen := map[string]bool{}
	var out []string
	add := func(path string) error {
		path = filepath.Clean(path)
		excluded, err := isExcluded(path, exclude)
		if err != nil {
			return err
		}
		if excluded || seen[path] {
			return nil
		}
		seen[path] = true
		out = append(out, path)
		return nil
	}

	for _, pattern := range patterns {
		if !hasMeta(pattern) {
			if err := add(pattern); err != nil {
				return nil, err
			}
			continue
		}

		matches, err := glob(baseDir, pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if err := add(m); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

func glob(baseDir, pattern string) ([]string, error) {
	var matches []string
	var err error
	if filepath.IsAbs(pattern) {
		matches, err = doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	} else {
		matches, err = doublestar.Glob(os.DirFS(baseDir), filepath.ToSlash(pattern), doublestar.WithFilesOnly())
		for i, m := range matches {
			matches[i] = filepath.FromSlash(m)
		}
	}
	if err != nil {
		return nil, errors.Errorf("expanding %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

func isExcluded(path string, exclude []string) (bool, error) {
	slashed := filepath.ToSlash(path)
	for _, ex := range exclude {
		ok, err := doublestar.Match(filepath.ToSlash(ex), slashed)
		if err != nil {
			return false, errors.Errorf("matching exclude %q: %w", ex, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
