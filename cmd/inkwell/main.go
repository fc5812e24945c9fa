// Package main is the entry point for the inkwell document tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshills/inkwell/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, code, ok := parseFlags(args, stdout, stderr)
	if !ok {
		return code
	}
	opts.Stdout = stdout
	opts.Stderr = stderr

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = application.Shutdown(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseFlags returns the options, or ok=false with the exit code when the
// process should stop.
func parseFlags(args []string, stdout, stderr io.Writer) (opts app.Options, code int, ok bool) {
	fs := flag.NewFlagSet("inkwell", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var showVersion bool
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (TOML or YAML)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.Script, "script", "", "Lua script to run against the document")
	fs.StringVar(&opts.Script, "s", "", "Lua script (shorthand)")
	fs.StringVar(&opts.Output, "out", "", "Write the document to this file instead of stdout")
	fs.StringVar(&opts.Output, "o", "", "Output file (shorthand)")
	fs.StringVar(&opts.Format, "format", app.FormatJSON, "Output format (json, text)")
	fs.BoolVar(&opts.Compact, "compact", false, "Write JSON on a single line")
	fs.BoolVar(&opts.Serve, "serve", false, "Run the collaboration relay")
	fs.BoolVar(&opts.Join, "join", false, "Sync the document with the configured relay room")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.ReadOnly, "readonly", false, "Reject edits to the document")
	fs.BoolVar(&opts.ReadOnly, "R", false, "Reject edits (shorthand)")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "inkwell - rich text document engine\n\n")
		fmt.Fprintf(stderr, "Usage: inkwell [options] [document]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  inkwell notes.txt                 Convert text to a document literal\n")
		fmt.Fprintf(stderr, "  inkwell -s bold.lua doc.json      Run a script and print the result\n")
		fmt.Fprintf(stderr, "  inkwell -serve -c inkwell.toml    Run the relay\n")
		fmt.Fprintf(stderr, "  inkwell -join -c inkwell.toml     Follow a shared document\n")
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return opts, 0, false
		}
		return opts, 2, false
	}

	if showVersion {
		fmt.Fprintf(stdout, "inkwell %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, 0, false
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		return opts, 1, false
	}
	switch opts.Format {
	case app.FormatJSON, app.FormatText:
	default:
		fmt.Fprintf(stderr, "Error: invalid format %q (must be json or text)\n", opts.Format)
		return opts, 1, false
	}
	if opts.Serve && opts.Join {
		fmt.Fprintln(stderr, "Error: -serve and -join are exclusive")
		return opts, 1, false
	}

	switch fs.NArg() {
	case 0:
	case 1:
		opts.Input = fs.Arg(0)
	default:
		fmt.Fprintln(stderr, "Error: at most one document may be given")
		return opts, 1, false
	}
	return opts, 0, true
}
