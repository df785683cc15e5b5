// Package cli parses command-line flags and wires the image, grid,
// block, and interpreter packages into one run, following the flat
// flag.String/flag.Parse configuration style the teacher uses in its
// own entrypoint.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/go-piet/piet/color"
)

// Version is reported by --version.
const Version = "0.1.0"

// ErrConflictingFlags is returned when both fallback flags are set.
var ErrConflictingFlags = errors.New("--fall-back-to-white and --fall-back-to-black are mutually exclusive")

// Options is the fully parsed and validated configuration for one run.
type Options struct {
	ImagePath string

	CodelSize     int
	FallbackWhite bool
	FallbackBlack bool
	MaxIter       int
	Verbose       bool
	JSONLogs      bool
	DumpGrid      bool
	ShowVersion   bool
}

// UnknownPolicy translates the fallback flags into a color.UnknownPolicy.
func (o *Options) UnknownPolicy() color.UnknownPolicy {
	switch {
	case o.FallbackWhite:
		return color.FallbackWhite
	case o.FallbackBlack:
		return color.FallbackBlack
	default:
		return color.Strict
	}
}

// Parse parses args (typically os.Args[1:]) into Options. Usage and flag
// errors are written to stderr and returned as flag.ErrHelp or a parse
// error; the caller decides the exit code. ShowVersion short-circuits
// all other validation, mirroring the --version contract of spec.md §6.
func Parse(args []string, stderr io.Writer) (*Options, error) {
	fs := flag.NewFlagSet("piet", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &Options{}
	fs.IntVar(&opts.CodelSize, "codel-size", 0, "Force the codel size to N pixels instead of inferring it.")
	fs.BoolVar(&opts.FallbackWhite, "fall-back-to-white", false, "Classify unrecognized pixels as white instead of failing.")
	fs.BoolVar(&opts.FallbackBlack, "fall-back-to-black", false, "Classify unrecognized pixels as black instead of failing.")
	fs.IntVar(&opts.MaxIter, "max-iter", 0, "Terminate after N direction-machine steps (0 means unlimited).")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Emit a per-step trace to standard error.")
	fs.BoolVar(&opts.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&opts.JSONLogs, "json-logs", false, "Emit the trace as JSON instead of a console-formatted line.")
	fs.BoolVar(&opts.DumpGrid, "dump-grid", false, "Print the inferred grid dimensions and codel size on startup.")
	fs.BoolVar(&opts.ShowVersion, "version", false, "Print the version and exit.")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "piet runs a Piet program stored as an image.\n\nUsage: piet [flags] <image>\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.ShowVersion {
		return opts, nil
	}

	if opts.FallbackWhite && opts.FallbackBlack {
		return nil, ErrConflictingFlags
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, fmt.Errorf("expected exactly one image path argument, got %d", fs.NArg())
	}
	opts.ImagePath = fs.Arg(0)
	return opts, nil
}
