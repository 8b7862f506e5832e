// Package main provides the CLI entry point for mtreespec.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/containerd/errdefs"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/ndisidore/mtreespec/internal/config"
	"github.com/ndisidore/mtreespec/internal/ignore"
	"github.com/ndisidore/mtreespec/internal/logging"
	"github.com/ndisidore/mtreespec/pkg/manifest"
	"github.com/ndisidore/mtreespec/pkg/slogctx"
)

// errInvalidSpec indicates at least one specification line was rejected.
var errInvalidSpec = errors.New("specification has invalid lines")

// app bundles dependencies so CLI action handlers become testable methods.
type app struct {
	read   func(ctx context.Context, path string) (*manifest.Manifest, error)
	open   func(path string) (io.ReadCloser, error)
	load   func(path string) (config.Config, error)
	getwd  func() (string, error)
	stdout io.Writer
	stderr io.Writer
	isTTY  bool
	cfg    config.Config
}

func main() {
	a := &app{
		read:   manifest.ReadFile,
		open:   func(path string) (io.ReadCloser, error) { return os.Open(path) },
		load:   config.Load,
		getwd:  os.Getwd,
		stdout: os.Stdout,
		stderr: os.Stderr,
		isTTY:  term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("CI") == "",
	}

	if err := a.command().Run(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:  "mtreespec",
		Usage: "check and summarise mtree-style file specifications",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "KDL configuration file",
				Value:   config.DefaultFile,
				Sources: cli.EnvVars("MTREESPEC_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "format",
				Usage:   "log output format (auto, pretty, json, text)",
				Value:   logging.FormatAuto,
				Sources: cli.EnvVars("MTREESPEC_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("MTREESPEC_LOG_LEVEL"),
			},
			&cli.IntFlag{
				Name:    "parallelism",
				Aliases: []string{"j"},
				Usage:   "max files checked concurrently (0 = unlimited)",
				Sources: cli.EnvVars("MTREESPEC_PARALLELISM"),
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "check that every line of each specification decodes",
				ArgsUsage: "<file>...",
				Action:    a.validateAction,
			},
			{
				Name:      "fmt",
				Usage:     "print a specification in canonical form",
				ArgsUsage: "<file>",
				Action:    a.fmtAction,
			},
			{
				Name:      "stat",
				Usage:     "summarise the entries of a specification",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "exclude",
						Usage: "skip entries matching a .dockerignore-style pattern",
					},
				},
				Action: a.statAction,
			},
		},
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if err != nil {
				_, _ = fmt.Fprintf(a.stderr, "error: %v\n", err)
			}
		},
	}
}

// before loads configuration, merges it under explicitly set flags and
// installs the logger.
func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := a.load(cmd.String("config"))
	switch {
	case err == nil:
	case errdefs.IsNotFound(err) && !cmd.IsSet("config"):
		cfg = config.Config{}
	default:
		return ctx, fmt.Errorf("loading config: %w", err)
	}

	if cmd.IsSet("format") || cfg.Format == "" {
		cfg.Format = cmd.String("format")
	}
	if cmd.IsSet("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("parallelism") {
		cfg.Parallelism = int(cmd.Int("parallelism"))
	}
	if err := cfg.Validate(); err != nil {
		return ctx, fmt.Errorf("invalid settings: %w", err)
	}
	a.cfg = cfg

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return ctx, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger, err := logging.NewLogger(a.stderr, logging.ResolveFormat(cfg.Format, a.isTTY), level)
	if err != nil {
		return ctx, fmt.Errorf("initializing logger: %w", err)
	}
	slog.SetDefault(logger)
	return slogctx.ContextWithLogger(ctx, logger), nil
}

func (a *app) validateAction(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return errors.New("usage: mtreespec validate <file>...")
	}

	// Each goroutine writes only its own index.
	results := make([]*manifest.Manifest, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if a.cfg.Parallelism > 0 {
		g.SetLimit(a.cfg.Parallelism)
	}
	for i, path := range paths {
		g.Go(func() error {
			slogctx.FromContext(gctx).LogAttrs(gctx, slog.LevelDebug, "validating", slog.String("file", path))
			m, err := a.read(gctx, path)
			if err != nil {
				return err
			}
			results[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	invalid := 0
	for i, m := range results {
		if len(m.Errors) == 0 {
			continue
		}
		invalid++
		for _, le := range m.Errors {
			_, _ = fmt.Fprintf(a.stdout, "%s:%d:%d: %v\n", paths[i], le.Line, le.Column, le.Err)
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d file(s)", errInvalidSpec, invalid, len(paths))
	}
	_, _ = fmt.Fprintf(a.stdout, "%d file(s) valid\n", len(paths))
	return nil
}

func (a *app) fmtAction(ctx context.Context, cmd *cli.Command) (err error) {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("usage: mtreespec fmt <file>")
	}

	f, err := a.open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	log := slogctx.FromContext(ctx).With(slog.String("file", path)) //nolint:sloglint // file binds the location prefix
	var lineErrs []error
	err = manifest.ScanLines(f, func(l manifest.Line) error {
		rec, err := manifest.ParseLine(l)
		if err != nil {
			var le *manifest.LineError
			if errors.As(err, &le) {
				log.LogAttrs(ctx, slog.LevelError, "cannot format line",
					slog.Int("line", le.Line),
					slog.Int("column", le.Column),
					slog.String("error", le.Err.Error()),
				)
			}
			lineErrs = append(lineErrs, err)
			return nil
		}
		_, _ = fmt.Fprintln(a.stdout, rec.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("formatting %s: %w", path, err)
	}
	if len(lineErrs) > 0 {
		return fmt.Errorf("%s: %w: %w", path, errInvalidSpec, errors.Join(lineErrs...))
	}
	return nil
}

func (a *app) statAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("usage: mtreespec stat <file>")
	}

	m, err := a.read(ctx, path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	patterns, err := a.excludePatterns(ctx, cmd.StringSlice("exclude"))
	if err != nil {
		return err
	}
	entries, err := manifest.Exclude(m.Entries, patterns)
	if err != nil {
		return fmt.Errorf("filtering %s: %w", path, err)
	}

	manifest.PrintSummary(a.stdout, manifest.Summarize(m, entries))
	return nil
}

// excludePatterns gathers patterns from the config file, .mtreeignore in the
// working directory and --exclude flags, in that order.
func (a *app) excludePatterns(ctx context.Context, flags []string) ([]string, error) {
	cwd, err := a.getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	fromFile, err := ignore.LoadPatterns(cwd)
	if err != nil && !errors.Is(err, ignore.ErrNoIgnoreFile) {
		return nil, fmt.Errorf("loading ignore patterns: %w", err)
	}

	patterns := make([]string, 0, len(a.cfg.Exclude)+len(fromFile)+len(flags))
	patterns = append(patterns, a.cfg.Exclude...)
	patterns = append(patterns, fromFile...)
	patterns = append(patterns, flags...)
	slogctx.FromContext(ctx).LogAttrs(ctx, slog.LevelDebug, "exclude patterns", slog.Int("count", len(patterns)))
	return patterns, nil
}
