package script

import (
	"context"
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/engine/builtin"
	"github.com/dshills/inkwell/internal/engine/model"
)

// Bind exposes e to scripts run in s as the global table doc.
func Bind(s *State, e *engine.Engine) {
	a := &api{engine: e}
	s.Register("doc", map[string]lua.LGFunction{
		"insert":        a.insert,
		"image":         a.image,
		"delete":        a.delete,
		"backspace":     a.backspace,
		"format":        a.format,
		"clear_formats": a.clearFormats,
		"select":        a.selectPaths,
		"select_all":    a.selectAll,
		"selection":     a.selection,
		"move":          a.move,
		"text":          a.text,
		"json":          a.json,
		"load_text":     a.loadText,
		"undo":          a.undo,
		"redo":          a.redo,
		"snapshot":      a.snapshot,
		"restore":       a.restore,
		"revision":      a.revision,
	})
}

// Run executes code against e in a fresh state.
func Run(ctx context.Context, e *engine.Engine, code string, opts ...Option) error {
	s := NewState(opts...)
	defer s.Close()
	Bind(s, e)
	return s.DoString(ctx, code)
}

type api struct {
	engine *engine.Engine
}

func raise(L *lua.LState, err error) int {
	L.RaiseError("%s", err.Error())
	return 0
}

// formats reads an optional table of formatter names to values.
func (a *api) formats(L *lua.LState, n int) []model.FormatEntry {
	t := L.OptTable(n, nil)
	if t == nil {
		return nil
	}
	var out []model.FormatEntry
	t.ForEach(func(k, v lua.LValue) {
		f, ok := a.engine.Registry().Formatter(k.String())
		if !ok {
			L.ArgError(n, fmt.Sprintf("unknown format %q", k.String()))
		}
		out = append(out, model.Format(f, toGo(v)))
	})
	return out
}

func (a *api) insert(L *lua.LState) int {
	text := L.CheckString(1)
	if err := a.engine.InsertText(builtin.Normalize(text), a.formats(L, 2)...); err != nil {
		return raise(L, err)
	}
	return 0
}

func (a *api) image(L *lua.LState) int {
	src := L.CheckString(1)
	alt := L.OptString(2, "")
	if err := a.engine.InsertComponent(builtin.NewImage(src, alt)); err != nil {
		return raise(L, err)
	}
	return 0
}

func (a *api) delete(L *lua.LState) int {
	err := a.engine.DeleteSelection()
	if err != nil && !errors.Is(err, engine.ErrNoSelection) {
		return raise(L, err)
	}
	L.Push(lua.LBool(err == nil))
	return 1
}

func (a *api) backspace(L *lua.LState) int {
	if err := a.engine.DeleteBackward(); err != nil {
		return raise(L, err)
	}
	return 0
}

// format applies a formatter, or sets a slot attribute when name is one.
// A nil value removes an attribute.
func (a *api) format(L *lua.LState) int {
	name := L.CheckString(1)
	value := toGo(L.Get(2))
	reg := a.engine.Registry()
	var err error
	if f, ok := reg.Formatter(name); ok {
		err = a.engine.ApplyFormat(f, value)
	} else if attr, ok := reg.Attribute(name); ok {
		err = a.engine.SetAttribute(attr, value)
	} else {
		L.ArgError(1, fmt.Sprintf("unknown format %q", name))
	}
	if err != nil {
		return raise(L, err)
	}
	return 0
}

func (a *api) clearFormats(L *lua.LState) int {
	if err := a.engine.ClearFormats(); err != nil {
		return raise(L, err)
	}
	return 0
}

func (a *api) selectPaths(L *lua.LState) int {
	anchor, err := toPath(L.CheckTable(1))
	if err != nil {
		L.ArgError(1, err.Error())
	}
	focus := anchor
	if L.GetTop() >= 2 {
		if focus, err = toPath(L.CheckTable(2)); err != nil {
			L.ArgError(2, err.Error())
		}
	}
	L.Push(lua.LBool(a.engine.Select(engine.Paths{Anchor: anchor, Focus: focus})))
	return 1
}

func (a *api) selectAll(L *lua.LState) int {
	L.Push(lua.LBool(a.engine.SelectAll()))
	return 1
}

func (a *api) selection(L *lua.LState) int {
	p := a.engine.Selection()
	t := L.NewTable()
	t.RawSetString("anchor", toLua(L, p.Anchor))
	t.RawSetString("focus", toLua(L, p.Focus))
	L.Push(t)
	return 1
}

// move steps the caret n times, backwards when n is negative. It returns
// the number of steps taken.
func (a *api) move(L *lua.LState) int {
	n := L.OptInt(1, 1)
	forward := n > 0
	steps := 0
	for i := 0; i < max(n, -n); i++ {
		if !a.engine.Move(forward) {
			break
		}
		steps++
	}
	L.Push(lua.LNumber(steps))
	return 1
}

func (a *api) text(L *lua.LState) int {
	L.Push(lua.LString(a.engine.Text()))
	return 1
}

func (a *api) json(L *lua.LState) int {
	data, err := a.engine.MarshalJSON()
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LString(data))
	return 1
}

func (a *api) loadText(L *lua.LState) int {
	if err := a.engine.LoadText(L.CheckString(1)); err != nil {
		return raise(L, err)
	}
	return 0
}

func (a *api) undo(L *lua.LState) int {
	return a.step(L, a.engine.Undo(), engine.ErrNothingToUndo)
}

func (a *api) redo(L *lua.LState) int {
	return a.step(L, a.engine.Redo(), engine.ErrNothingToRedo)
}

// step pushes whether a history move happened.
func (a *api) step(L *lua.LState, err, nothing error) int {
	if err != nil && !errors.Is(err, nothing) {
		return raise(L, err)
	}
	L.Push(lua.LBool(err == nil))
	return 1
}

func (a *api) snapshot(L *lua.LState) int {
	id := a.engine.Snapshot(L.CheckString(1))
	L.Push(lua.LString(id))
	return 1
}

func (a *api) restore(L *lua.LState) int {
	if err := a.engine.RestoreSnapshot(L.CheckString(1)); err != nil {
		return raise(L, err)
	}
	return 0
}

func (a *api) revision(L *lua.LState) int {
	L.Push(lua.LNumber(a.engine.Revision()))
	return 1
}
