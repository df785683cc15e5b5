package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/go-piet/piet/grid"
	"github.com/go-piet/piet/imageio"
	"github.com/go-piet/piet/piet"
	"github.com/rs/zerolog"
)

// newLogger builds the trace logger per SPEC_FULL.md §1.1: console
// writer by default, switched to raw JSON under --json-logs, dropping
// debug-level events unless --verbose was given.
func newLogger(stderr io.Writer, verbose, jsonLogs bool) zerolog.Logger {
	var w io.Writer = stderr
	if !jsonLogs {
		w = zerolog.ConsoleWriter{Out: stderr, TimeFormat: "15:04:05.000"}
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Run loads the image named by opts.ImagePath, builds its codel grid,
// and drives the interpreter to completion or until ctx is cancelled.
func Run(ctx context.Context, opts *Options, stdin io.Reader, stdout, stderr io.Writer) error {
	log := newLogger(stderr, opts.Verbose, opts.JSONLogs)

	img, format, err := imageio.Load(opts.ImagePath)
	if err != nil {
		return fmt.Errorf("loading image: %w", err)
	}
	log.Debug().Str("format", format).Str("path", opts.ImagePath).Msg("decoded image")

	g, err := grid.Build(img, grid.Options{CodelSize: opts.CodelSize, Policy: opts.UnknownPolicy()})
	if err != nil {
		return fmt.Errorf("building codel grid: %w", err)
	}

	if opts.DumpGrid {
		log.Info().Int("rows", g.Rows).Int("cols", g.Cols).Int("codel_size", g.CodelSize).Msg("inferred grid")
	}

	ip := piet.New(g, piet.Options{
		Stdin:   stdin,
		Stdout:  stdout,
		Log:     &log,
		MaxIter: opts.MaxIter,
	})
	return ip.Run(ctx)
}
