package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/collab"
	"github.com/dshills/inkwell/internal/collab/relay"
	"github.com/dshills/inkwell/internal/script"
)

// edit optionally joins a relay room, runs the script, and writes the
// document. In join mode it keeps following the room until ctx ends.
func (a *Application) edit(ctx context.Context) error {
	var session *collab.Session
	done := make(chan error, 1)
	if a.opts.Join {
		s, err := a.join(ctx)
		if err != nil {
			return err
		}
		session = s
		go func() { done <- s.Run(ctx) }()
	}

	if a.opts.Script != "" {
		if err := a.runScript(ctx, a.opts.Script); err != nil {
			if session != nil {
				session.Close()
				<-done
			}
			return err
		}
	}

	if session != nil {
		a.logger.Info("following room", zap.String("room", a.cfg.Collab.Room))
		var err error
		select {
		case err = <-done:
		case <-ctx.Done():
			err = <-done
		}
		session.Close()
		if err != nil {
			return &OperationError{Op: "collab", Target: a.cfg.Collab.URL, Err: err}
		}
	}
	return a.writeOutput()
}

func (a *Application) join(ctx context.Context) (*collab.Session, error) {
	cc := a.cfg.Collab
	if cc.URL == "" {
		return nil, ErrNoRelay
	}
	client, err := relay.Dial(ctx, cc.URL, cc.Room)
	if err != nil {
		return nil, &OperationError{Op: "join", Target: cc.URL, Err: err}
	}
	s, err := collab.NewSession(a.engine, client,
		collab.WithClientID(cc.ClientID),
		collab.WithSendBuffer(cc.SendBuffer),
		collab.WithLogger(a.logger))
	if err != nil {
		client.Close()
		return nil, err
	}
	a.logger.Info("joined room",
		zap.String("url", cc.URL),
		zap.String("room", cc.Room),
		zap.String("client", s.ClientID()))
	return s, nil
}

func (a *Application) runScript(ctx context.Context, path string) error {
	sc := a.cfg.Script
	s := script.NewState(
		script.WithTimeout(sc.Timeout),
		script.WithCallStackSize(sc.CallStackSize),
		script.WithOutput(a.opts.Stderr))
	defer s.Close()
	script.Bind(s, a.engine)

	if err := s.DoFile(ctx, path); err != nil {
		return &OperationError{Op: "script", Target: path, Err: err}
	}
	a.logger.Debug("script finished",
		zap.String("path", path),
		zap.Uint64("revision", uint64(a.engine.Revision())))
	return nil
}

// Render returns the document in the configured output format.
func (a *Application) Render() ([]byte, error) {
	switch a.opts.Format {
	case FormatJSON:
		data, err := a.engine.MarshalJSON()
		if err != nil {
			return nil, err
		}
		if a.opts.Compact {
			return append(pretty.Ugly(data), '\n'), nil
		}
		return pretty.Pretty(data), nil
	case FormatText:
		return []byte(a.engine.Text()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, a.opts.Format)
	}
}

func (a *Application) writeOutput() error {
	data, err := a.Render()
	if err != nil {
		return err
	}
	var w io.Writer = a.opts.Stdout
	if a.opts.Output != "" {
		if err := os.WriteFile(a.opts.Output, data, 0o644); err != nil {
			return &OperationError{Op: "write", Target: a.opts.Output, Err: err}
		}
		a.logger.Info("document written", zap.String("path", a.opts.Output))
		return nil
	}
	_, err = io.Copy(w, bytes.NewReader(data))
	return err
}
