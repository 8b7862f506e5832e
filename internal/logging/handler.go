// Package logging builds the slog handlers used by the CLI.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ErrUnknownFormat is returned when an unrecognized log format is requested.
var ErrUnknownFormat = errors.New("unknown log format")

// Output formats accepted by NewLogger and ResolveFormat.
const (
	FormatAuto   = "auto"
	FormatPretty = "pretty"
	FormatJSON   = "json"
	FormatText   = "text"
)

// Compile-time interface check.
var _ slog.Handler = (*PrettyHandler)(nil)

// PrettyHandler writes compiler-style diagnostics: "file:line:column: msg:
// error". The file comes from a "file" attribute bound with WithAttrs; line,
// column and error come from the record. Other attributes bound with
// WithAttrs are rendered as a "key=val " prefix, other record attributes are
// dropped.
type PrettyHandler struct {
	out    io.Writer
	level  slog.Leveler
	mu     *sync.Mutex
	file   string
	prefix string // accumulated "group.key=val " fragments
}

// NewPrettyHandler returns a PrettyHandler that writes to out at the given level.
func NewPrettyHandler(out io.Writer, level slog.Leveler) *PrettyHandler {
	return &PrettyHandler{
		out:   out,
		level: level,
		mu:    &sync.Mutex{},
	}
}

var (
	_warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	_errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	_debugStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // dim
	_locationStyle = lipgloss.NewStyle().Bold(true)
)

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes one diagnostic line coloured by level.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var line, column int64
	var cause string
	r.Attrs(func(a slog.Attr) bool {
		switch {
		case a.Key == "line" && a.Value.Kind() == slog.KindInt64:
			line = a.Value.Int64()
		case a.Key == "column" && a.Value.Kind() == slog.KindInt64:
			column = a.Value.Int64()
		case a.Key == "error":
			cause = a.Value.String()
		}
		return true
	})

	msg := h.prefix + r.Message
	if cause != "" {
		msg += ": " + cause
	}

	switch {
	case r.Level >= slog.LevelError:
		msg = _errorStyle.Render(msg)
	case r.Level >= slog.LevelWarn:
		msg = _warnStyle.Render(msg)
	case r.Level < slog.LevelInfo:
		msg = _debugStyle.Render(msg)
	}

	if loc := location(h.file, line, column); loc != "" {
		msg = _locationStyle.Render(loc) + " " + msg
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, msg+"\n")
	return err
}

// location renders "file:line:column:", omitting parts that are unknown.
func location(file string, line, column int64) string {
	if file == "" && line <= 0 {
		return ""
	}
	loc := file
	if line > 0 {
		if loc != "" {
			loc += ":"
		}
		loc += strconv.FormatInt(line, 10)
		if column > 0 {
			loc += ":" + strconv.FormatInt(column, 10)
		}
	}
	return loc + ":"
}

// WithAttrs returns a new handler carrying the given attributes.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	nh := *h
	buf := make([]byte, 0, len(h.prefix)+len(attrs)*16)
	buf = append(buf, h.prefix...)
	for _, a := range attrs {
		if a.Key == "file" {
			nh.file = a.Value.String()
			continue
		}
		buf = append(buf, a.Key...)
		buf = append(buf, '=')
		buf = append(buf, a.Value.String()...)
		buf = append(buf, ' ')
	}
	nh.prefix = string(buf)
	return &nh
}

// WithGroup returns a new handler that prepends the group name to messages.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.prefix = h.prefix + name + "."
	return &nh
}

// NewLogger creates a logger for the given format and level.
// Supported formats: "pretty", "json", "text".
func NewLogger(out io.Writer, format string, level slog.Level) (*slog.Logger, error) {
	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	case FormatText:
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	case FormatPretty:
		handler = NewPrettyHandler(out, level)
	default:
		return nil, fmt.Errorf("unknown format %q: %w", format, ErrUnknownFormat)
	}
	return slog.New(handler), nil
}

// ResolveFormat maps "auto" to pretty on a terminal and text elsewhere.
// Other values are returned unchanged.
func ResolveFormat(format string, isTTY bool) string {
	if format != FormatAuto {
		return format
	}
	if isTTY {
		return FormatPretty
	}
	return FormatText
}
