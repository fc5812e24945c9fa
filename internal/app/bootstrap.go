package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/event"
	"github.com/dshills/inkwell/internal/logging"
)

// bootstrapper starts components in order and undoes the started ones
// when a later step fails.
type bootstrapper struct {
	app      *Application
	cleanups []func()
}

func newBootstrapper(a *Application) *bootstrapper {
	return &bootstrapper{app: a}
}

func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"config", b.initConfig},
		{"logging", b.initLogging},
		{"event bus", b.initEventBus},
		{"engine", b.initEngine},
		{"document", b.initDocument},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			b.cleanup()
			return &InitError{Component: step.name, Err: err}
		}
	}
	return nil
}

func (b *bootstrapper) cleanup() {
	for i := len(b.cleanups) - 1; i >= 0; i-- {
		b.cleanups[i]()
	}
	b.cleanups = nil
}

func (b *bootstrapper) initConfig() error {
	cfg, err := config.Load(b.app.opts.ConfigPath)
	if err != nil {
		return err
	}
	if b.app.opts.LogLevel != "" {
		cfg.Logging.Level = b.app.opts.LogLevel
	}
	b.app.cfg = cfg
	return nil
}

func (b *bootstrapper) initLogging() error {
	lc := b.app.cfg.Logging
	lc.Output = b.app.opts.Stderr
	logger, level, err := logging.NewLeveled(lc)
	if err != nil {
		return err
	}
	b.app.logger = logger.Named("inkwell")
	b.app.level = level
	b.cleanups = append(b.cleanups, func() { _ = logger.Sync() })
	return nil
}

func (b *bootstrapper) initEventBus() error {
	bus := event.NewBus(event.WithLogger(logging.WithComponent(b.app.logger, "event")))
	if err := bus.Start(); err != nil {
		return err
	}
	b.app.bus = bus
	b.cleanups = append(b.cleanups, func() { _ = bus.Stop(context.Background()) })

	// Trace document activity off the editing path.
	logger := logging.WithComponent(b.app.logger, "trace")
	_, err := bus.SubscribeFunc("document.**", func(_ context.Context, ev any) error {
		if tp, ok := ev.(event.TopicProvider); ok {
			logger.Debug("event", zap.Stringer("topic", tp.EventTopic()))
		}
		return nil
	}, event.Async())
	return err
}

func (b *bootstrapper) initEngine() error {
	cfg := b.app.cfg
	opts := []engine.Option{
		engine.WithBus(b.app.bus),
		engine.WithLogger(b.app.logger),
		engine.WithMaxHistory(cfg.History.MaxSize),
		engine.WithMaxChanges(cfg.Tracking.MaxChanges),
	}
	if b.app.opts.ReadOnly {
		opts = append(opts, engine.WithReadOnly())
	}
	b.app.engine = engine.New(opts...)
	b.cleanups = append(b.cleanups, b.app.engine.Close)
	return nil
}

// initDocument loads the input file, if any.
func (b *bootstrapper) initDocument() error {
	path := b.app.opts.Input
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return &OperationError{Op: "read", Target: path, Err: err}
	}
	e := b.app.engine
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = e.LoadJSON(data)
	} else {
		err = e.LoadText(string(data))
	}
	if err != nil {
		return &OperationError{Op: "load", Target: path, Err: err}
	}
	b.app.logger.Info("document loaded",
		zap.String("path", path),
		zap.Uint64("revision", uint64(e.Revision())))
	return nil
}
