package manifest

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// _maxLineBytes bounds a single specification line.
const _maxLineBytes = 1 << 20

// Line is one non-blank, non-comment line with its terminator and leading
// indentation removed.
type Line struct {
	// Number is 1-based.
	Number int
	// Indent is the number of bytes of leading white space stripped from Text.
	Indent int
	Text   string
}

// ScanLines calls fn for every content line in r. Blank lines and lines whose
// first non-blank character is '#' are skipped. Scanning stops at the first
// error returned by fn.
func ScanLines(r io.Reader, fn func(Line) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), _maxLineBytes)

	n := 0
	for scanner.Scan() {
		n++
		raw := strings.TrimSuffix(scanner.Text(), "\r")
		text := strings.TrimLeftFunc(raw, unicode.IsSpace)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := fn(Line{Number: n, Indent: len(raw) - len(text), Text: text}); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanning line %d: %w", n+1, err)
	}
	return nil
}
