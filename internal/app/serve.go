package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/collab/relay"
	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Handler returns the relay's HTTP routes: the websocket endpoint at /ws
// and a liveness probe at /healthz.
func Handler(hub *relay.Hub) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

// serve runs the relay on the configured address until ctx ends.
func (a *Application) serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Collab.Listen)
	if err != nil {
		return &OperationError{Op: "listen", Target: a.cfg.Collab.Listen, Err: err}
	}
	return a.serveListener(ctx, ln)
}

func (a *Application) serveListener(ctx context.Context, ln net.Listener) error {
	hub := relay.NewHub(
		relay.WithSendBuffer(a.cfg.Collab.SendBuffer),
		relay.WithLogger(a.logger))
	srv := &http.Server{
		Handler:           Handler(hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if a.opts.ConfigPath != "" {
		go a.watchConfig(ctx)
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	a.logger.Info("relay listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		hub.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	a.logger.Info("relay stopped", zap.Any("stats", hub.Stats()))
	return nil
}

// watchConfig applies log level changes from the config file while the
// relay runs. Other settings take effect on restart.
func (a *Application) watchConfig(ctx context.Context) {
	logger := logging.L(ctx)
	w, err := config.NewWatcher(a.opts.ConfigPath)
	if err != nil {
		logger.Warn("config watch unavailable", zap.Error(err))
		return
	}
	_ = w.Run(ctx, func(cfg *config.Config, err error) {
		if err != nil {
			logger.Warn("config reload failed", zap.Error(err))
			return
		}
		level := logging.ParseLevel(cfg.Logging.Level)
		if a.opts.LogLevel != "" {
			level = logging.ParseLevel(a.opts.LogLevel)
		}
		a.level.SetLevel(level)
		logger.Info("config reloaded", zap.Stringer("level", level))
	})
}
