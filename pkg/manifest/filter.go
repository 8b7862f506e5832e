package manifest

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/moby/patternmatcher"
)

// Exclude returns the entries whose path, or any parent of it, does not match
// patterns. Patterns follow .dockerignore syntax, including "!" exceptions.
// Entry paths are matched relative to the specification root, so a leading
// "./" is ignored.
func Exclude(entries []Entry, patterns []string) ([]Entry, error) {
	if len(patterns) == 0 {
		return entries, nil
	}
	pm, err := patternmatcher.New(patterns)
	if err != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", err)
	}

	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		excluded, err := pm.MatchesOrParentMatches(matchPath(e.Path))
		if err != nil {
			return nil, fmt.Errorf("matching %q: %w", e.Path, err)
		}
		if !excluded {
			kept = append(kept, e)
		}
	}
	return kept, nil
}

// matchPath converts a specification path into the cleaned, OS-specific
// relative form patternmatcher expects.
func matchPath(p string) string {
	p = strings.TrimPrefix(path.Clean(p), "/")
	return filepath.FromSlash(p)
}
