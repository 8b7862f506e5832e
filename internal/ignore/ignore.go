// Package ignore loads exclusion patterns applied to manifest entry paths.
package ignore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ndisidore/mtreespec/pkg/manifest"
)

// ErrNoIgnoreFile indicates no .mtreeignore was found.
var ErrNoIgnoreFile = errors.New("no ignore file found")

// FileName is the ignore file looked up next to the specification.
const FileName = ".mtreeignore"

// LoadPatterns reads .mtreeignore from dir. Returns ErrNoIgnoreFile when it
// does not exist.
func LoadPatterns(dir string) ([]string, error) {
	path := filepath.Join(dir, FileName)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoIgnoreFile
		}
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}
	defer func() { _ = f.Close() }()

	// Same line rules as a specification: blank lines and # comments skipped.
	patterns := []string{}
	err = manifest.ScanLines(f, func(l manifest.Line) error {
		patterns = append(patterns, strings.TrimSpace(l.Text))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}
	return patterns, nil
}
