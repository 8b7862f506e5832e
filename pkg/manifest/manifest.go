// Package manifest reads mtree-style specifications line by line and applies
// the decoded directives to build a list of entries with resolved metadata.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ndisidore/mtreespec/pkg/directive"
	"github.com/ndisidore/mtreespec/pkg/slogctx"
)

// Record is one decoded line. Exactly one of Command and Entry is non-nil.
type Record struct {
	Line    int
	Command directive.Command
	Entry   *directive.Entry
}

// String renders the record in canonical form.
func (r Record) String() string {
	if r.Entry != nil {
		return r.Entry.String()
	}
	if r.Command != nil {
		return r.Command.String()
	}
	return ""
}

// ParseLine decodes a directive line ("/set", "/unset") or an entry line.
func ParseLine(l Line) (Record, error) {
	if strings.HasPrefix(l.Text, "/") {
		cmd, err := directive.ParseCommand(l.Text)
		if err != nil {
			return Record{}, newLineError(l, err)
		}
		return Record{Line: l.Number, Command: cmd}, nil
	}
	e, err := directive.ParseEntry(l.Text)
	if err != nil {
		return Record{}, newLineError(l, err)
	}
	return Record{Line: l.Number, Entry: &e}, nil
}

// LineError is a decode failure confined to a single line.
type LineError struct {
	Line int
	// Column is 1-based, counted in bytes; 0 when unknown.
	Column int
	Err    error
}

func newLineError(l Line, err error) *LineError {
	le := &LineError{Line: l.Number, Err: err}
	var pe *directive.ParseError
	if errors.As(err, &pe) {
		le.Column = l.Indent + pe.Offset + 1
	}
	return le
}

func (e *LineError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Entry is a path with the keywords in effect for it: the /set defaults at
// the time it was read, overridden by its own keywords.
type Entry struct {
	Path     string
	Line     int
	Keywords []directive.Keyword
}

// Attributes resolves the entry's keywords into typed fields.
func (e Entry) Attributes() Attributes {
	return Resolve(e.Keywords)
}

// Manifest is the result of applying a whole specification.
type Manifest struct {
	Entries []Entry
	// Sets and Unsets count the directives applied.
	Sets   int
	Unsets int
	// Errors holds one entry per rejected line, in line order.
	Errors []*LineError
}

// Err joins every line error, or returns nil when all lines were accepted.
func (m *Manifest) Err() error {
	errs := make([]error, len(m.Errors))
	for i, le := range m.Errors {
		errs[i] = le
	}
	return errors.Join(errs...)
}

// Applier folds records into a Manifest, tracking the /set defaults.
type Applier struct {
	defaults []directive.Keyword
	m        Manifest
}

// NewApplier returns an Applier with no defaults.
func NewApplier() *Applier {
	return &Applier{}
}

// Apply folds one record into the manifest.
func (a *Applier) Apply(r Record) {
	switch {
	case r.Entry != nil:
		a.m.Entries = append(a.m.Entries, Entry{
			Path:     r.Entry.Path,
			Line:     r.Line,
			Keywords: merge(a.defaults, r.Entry.Keywords),
		})
	case r.Command != nil:
		a.applyCommand(r.Command)
	}
}

func (a *Applier) applyCommand(cmd directive.Command) {
	switch c := cmd.(type) {
	case directive.Set:
		a.defaults = merge(a.defaults, c.Keywords)
		a.m.Sets++
	case directive.Unset:
		a.defaults = nil
		a.m.Unsets++
	default:
		panic(fmt.Sprintf("applyCommand: unexpected command %T", cmd))
	}
}

// Reject records a line that failed to decode.
func (a *Applier) Reject(le *LineError) {
	a.m.Errors = append(a.m.Errors, le)
}

// Defaults returns a copy of the keywords currently set by /set.
func (a *Applier) Defaults() []directive.Keyword {
	return append([]directive.Keyword(nil), a.defaults...)
}

// Manifest returns the manifest built so far.
func (a *Applier) Manifest() *Manifest {
	return &a.m
}

// merge overlays kws onto base. A keyword replaces the earlier one with the
// same name in place; new names are appended. The result never aliases base.
func merge(base, kws []directive.Keyword) []directive.Keyword {
	out := make([]directive.Keyword, len(base), len(base)+len(kws))
	copy(out, base)
	for _, kw := range kws {
		replaced := false
		for i := range out {
			if out[i].Name() == kw.Name() {
				out[i] = kw
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, kw)
		}
	}
	return out
}

// Read decodes every line of r and applies it. A line that fails to decode is
// recorded in Manifest.Errors and logged; reading continues with the next
// line. The returned error is non-nil only for I/O failures or cancellation.
func Read(ctx context.Context, r io.Reader) (*Manifest, error) {
	log := slogctx.FromContext(ctx)
	a := NewApplier()

	err := ScanLines(r, func(l Line) error {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("reading manifest: %w", err)
		}
		rec, err := ParseLine(l)
		if err != nil {
			var le *LineError
			if !errors.As(err, &le) {
				return err
			}
			a.Reject(le)
			log.LogAttrs(ctx, slog.LevelWarn, "rejected line",
				slog.Int("line", le.Line),
				slog.Int("column", le.Column),
				slog.String("error", le.Err.Error()),
			)
			return nil
		}
		a.Apply(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m := a.Manifest()
	log.LogAttrs(ctx, slog.LevelDebug, "manifest read",
		slog.Int("entries", len(m.Entries)),
		slog.Int("rejected", len(m.Errors)),
	)
	return m, nil
}

// ReadFile opens path and reads it with Read.
func ReadFile(ctx context.Context, path string) (m *Manifest, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	m, err = Read(slogctx.With(ctx, slog.String("file", path)), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
