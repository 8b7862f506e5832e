// Package config loads CLI settings from a KDL file.
//
// A configuration file looks like:
//
//	log-level "debug"
//	format "text"
//	parallelism 4
//	exclude "var/cache" "**/*.tmp"
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/containerd/errdefs"
	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = ".mtreespec.kdl"

// Sentinel errors for configuration failures.
var (
	ErrUnknownNode    = errors.New("unknown node type")
	ErrMissingField   = errors.New("missing required field")
	ErrDuplicateField = errors.New("duplicate field")
	ErrExtraArgs      = errors.New("too many arguments")
	ErrTypeMismatch   = errors.New("argument type mismatch")
)

// Node names.
const (
	NodeLogLevel    = "log-level"
	NodeFormat      = "format"
	NodeParallelism = "parallelism"
	NodeExclude     = "exclude"
)

var _formats = []string{"auto", "pretty", "json", "text"}

// Config holds settings read from a file. Zero values mean "not set".
type Config struct {
	LogLevel    string
	Format      string
	Parallelism int
	Exclude     []string
}

// Load reads and parses the KDL file at path. A missing file yields an error
// satisfying errdefs.IsNotFound.
func Load(path string) (c Config, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config %s: %w", path, errdefs.ErrNotFound)
		}
		return Config{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	return Parse(f, path)
}

// Parse parses KDL content from the reader into a Config and validates it.
// Invalid values yield an error satisfying errdefs.IsInvalidArgument.
func Parse(r io.Reader, filename string) (Config, error) {
	doc, err := kdl.Parse(r)
	if err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", filename, err)
	}

	var c Config
	seen := make(map[string]struct{}, len(doc.Nodes))
	for _, node := range doc.Nodes {
		name := node.Name.ValueString()
		if _, dup := seen[name]; dup && name != NodeExclude {
			return Config{}, fmt.Errorf("%s: %w: %q", filename, ErrDuplicateField, name)
		}
		seen[name] = struct{}{}

		if err := applyField(&c, node, name); err != nil {
			return Config{}, fmt.Errorf("%s: %w", filename, err)
		}
	}

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", filename, err)
	}
	return c, nil
}

// ParseString parses KDL content from a string into a Config.
func ParseString(content string) (Config, error) {
	return Parse(strings.NewReader(content), "<string>")
}

func applyField(c *Config, node *document.Node, name string) error {
	switch name {
	case NodeLogLevel, NodeFormat:
		v, err := singleArg(node, name, stringArg)
		if err != nil {
			return err
		}
		if name == NodeLogLevel {
			c.LogLevel = v
		} else {
			c.Format = v
		}
	case NodeParallelism:
		n, err := singleArg(node, name, intArg)
		if err != nil {
			return err
		}
		c.Parallelism = n
	case NodeExclude:
		if len(node.Arguments) == 0 {
			return fmt.Errorf("%q requires at least one pattern: %w", name, ErrMissingField)
		}
		for i := range node.Arguments {
			p, err := stringArg(node, i)
			if err != nil {
				return fmt.Errorf("%q: %w", name, err)
			}
			c.Exclude = append(c.Exclude, p)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownNode, name)
	}
	return nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return fmt.Errorf("%s %q: %w: %w", NodeLogLevel, c.LogLevel, errdefs.ErrInvalidArgument, err)
		}
	}
	if c.Format != "" && !contains(_formats, c.Format) {
		return fmt.Errorf("%s %q (valid: %s): %w",
			NodeFormat, c.Format, strings.Join(_formats, ", "), errdefs.ErrInvalidArgument)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("%s %d: must be >= 0: %w", NodeParallelism, c.Parallelism, errdefs.ErrInvalidArgument)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// singleArg extracts exactly one argument from a node using get.
func singleArg[T any](node *document.Node, field string, get func(*document.Node, int) (T, error)) (T, error) {
	var zero T
	switch {
	case len(node.Arguments) == 0:
		return zero, fmt.Errorf("%q requires a value: %w", field, ErrMissingField)
	case len(node.Arguments) > 1:
		return zero, fmt.Errorf("%q requires exactly one argument, got %d: %w",
			field, len(node.Arguments), ErrExtraArgs)
	}
	v, err := get(node, 0)
	if err != nil {
		return zero, fmt.Errorf("%q: %w", field, err)
	}
	return v, nil
}

// stringArg returns the string value at the given argument index, or an error.
func stringArg(node *document.Node, idx int) (string, error) {
	v, ok := node.Arguments[idx].ResolvedValue().(string)
	if !ok {
		return "", fmt.Errorf("argument %d: not a string: %w", idx, ErrTypeMismatch)
	}
	return v, nil
}

// intArg returns the integer value at the given argument index, or an error.
func intArg(node *document.Node, idx int) (int, error) {
	switch v := node.Arguments[idx].ResolvedValue().(type) {
	case int64:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return 0, fmt.Errorf("argument %d: %d out of range: %w", idx, v, ErrTypeMismatch)
		}
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("argument %d: not an integer: %w", idx, ErrTypeMismatch)
	}
}
