// Package app wires configuration, logging, the event bus, the document
// engine, scripting, and collaboration into the inkwell command.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/event"
	"github.com/dshills/inkwell/internal/logging"
)

// Document formats for input and output.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to a TOML or YAML configuration file.
	ConfigPath string

	// Input is a document to load. Files ending in .json are read as
	// document literals, anything else as plain text. Empty starts with
	// an empty document.
	Input string

	// Script is a Lua file run against the document.
	Script string

	// Output receives the document. Empty writes to Stdout.
	Output string

	// Format is the output format, json or text.
	Format string

	// Compact disables JSON pretty printing.
	Compact bool

	// Serve runs the collaboration relay instead of editing.
	Serve bool

	// Join connects the document to the relay room from the config and
	// keeps it in sync until the context ends.
	Join bool

	// LogLevel overrides the configured level when set.
	LogLevel string

	// ReadOnly rejects local edits, including those made by scripts.
	ReadOnly bool

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Application owns every long-lived component.
type Application struct {
	opts   Options
	cfg    *config.Config
	logger *zap.Logger
	level  zap.AtomicLevel
	bus    *event.Bus
	engine *engine.Engine

	running atomic.Bool
}

// New bootstraps an application. Components are started in dependency
// order and torn down again when one fails.
func New(opts Options) (*Application, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	a := &Application{opts: opts}
	if err := newBootstrapper(a).bootstrap(); err != nil {
		return nil, err
	}
	return a, nil
}

// Config returns the effective configuration.
func (a *Application) Config() *config.Config { return a.cfg }

// Engine returns the document engine.
func (a *Application) Engine() *engine.Engine { return a.engine }

// Logger returns the application logger.
func (a *Application) Logger() *zap.Logger { return a.logger }

// Run executes the mode selected by the options until it finishes or ctx
// ends.
func (a *Application) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	ctx = logging.NewContext(ctx, a.logger)
	if a.opts.Serve {
		return a.serve(ctx)
	}
	return a.edit(ctx)
}

// Shutdown stops the event bus and releases the engine.
func (a *Application) Shutdown(ctx context.Context) error {
	a.engine.Close()
	err := a.bus.Stop(ctx)
	_ = a.logger.Sync()
	if errors.Is(err, event.ErrBusNotRunning) {
		return nil
	}
	return err
}
