package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Default limits for a State.
const (
	DefaultTimeout       = 5 * time.Second
	DefaultCallStackSize = 256
)

// Option configures a State.
type Option func(*State)

// WithTimeout bounds every execution. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *State) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// WithCallStackSize limits Lua call depth.
func WithCallStackSize(n int) Option {
	return func(s *State) {
		if n > 0 {
			s.callStackSize = n
		}
	}
}

// WithOutput redirects print. By default output is discarded.
func WithOutput(w io.Writer) Option {
	return func(s *State) {
		if w != nil {
			s.out = w
		}
	}
}

// State is a sandboxed Lua interpreter. A State is safe for concurrent
// use; executions are serialized.
type State struct {
	L  *lua.LState
	mu sync.Mutex

	timeout       time.Duration
	callStackSize int
	out           io.Writer
	closed        bool
}

// NewState creates a sandboxed state.
func NewState(opts ...Option) *State {
	s := &State{
		timeout:       DefaultTimeout,
		callStackSize: DefaultCallStackSize,
		out:           io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.L = lua.NewState(lua.Options{
		SkipOpenLibs:  true,
		CallStackSize: s.callStackSize,
	})
	openSafeLibraries(s.L)
	s.sandbox()
	return s
}

func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes loaders and replaces print.
func (s *State) sandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.L.SetGlobal("print", s.L.NewFunction(s.print))
}

func (s *State) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(s.out, strings.Join(parts, "\t"))
	return 0
}

// Register installs a table of Go functions as global name.
func (s *State) Register(name string, funcs map[string]lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.L.SetGlobal(name, s.L.SetFuncs(s.L.NewTable(), funcs))
}

// DoString executes code. Execution stops when ctx is done or the
// state's timeout elapses.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.exec(ctx, func() error { return s.L.DoString(code) })
}

// DoFile executes the script at path.
func (s *State) DoFile(ctx context.Context, path string) error {
	return s.exec(ctx, func() error { return s.L.DoFile(path) })
}

func (s *State) exec(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStateClosed
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	err := doWithRecovery(fn)
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case ctx.Err() != nil:
		return ctx.Err()
	}
	return err
}

func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Global returns the Go value of a global variable.
func (s *State) Global(name string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toGo(s.L.GetGlobal(name))
}

// Close releases the interpreter.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.L.Close()
		s.closed = true
	}
}
