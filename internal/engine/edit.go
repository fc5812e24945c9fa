package engine

import (
	"github.com/dshills/inkwell/internal/engine/model"
	"github.com/dshills/inkwell/internal/engine/selection"
	"github.com/dshills/inkwell/internal/event/events"
)

// InsertText replaces the selection with text at the caret.
func (e *Engine) InsertText(text string, formats ...model.FormatEntry) error {
	return e.insert(text, formats)
}

// InsertComponent replaces the selection with comp at the caret.
func (e *Engine) InsertComponent(comp *model.Component, formats ...model.FormatEntry) error {
	return e.insert(comp, formats)
}

func (e *Engine) insert(content any, formats []model.FormatEntry) error {
	return e.Update(func(_ *model.Component, sel *selection.Selection) error {
		if !sel.IsSelected() {
			return ErrNoSelection
		}
		deleteScopes(sel)
		p := sel.Focus()
		p.Slot.MoveTo(p.Offset)
		if !p.Slot.Insert(content, formats...) {
			return ErrRejected
		}
		sel.SetPosition(p.Slot, p.Slot.Index())
		return nil
	})
}

// DeleteSelection removes the selected content and collapses the caret to
// where it began. A caret deletes nothing.
func (e *Engine) DeleteSelection() error {
	return e.Update(func(_ *model.Component, sel *selection.Selection) error {
		if !sel.IsSelected() {
			return ErrNoSelection
		}
		deleteScopes(sel)
		return nil
	})
}

// DeleteBackward removes the selection, or the grapheme cluster or
// component before the caret.
func (e *Engine) DeleteBackward() error {
	return e.deleteStep(false)
}

// DeleteForward removes the selection, or the grapheme cluster or
// component after the caret.
func (e *Engine) DeleteForward() error {
	return e.deleteStep(true)
}

func (e *Engine) deleteStep(forward bool) error {
	return e.Update(func(_ *model.Component, sel *selection.Selection) error {
		if !sel.IsSelected() {
			return ErrNoSelection
		}
		if sel.IsCollapsed() {
			caret := sel.Focus()
			moved := sel.ToPrevious
			if forward {
				moved = sel.ToNext
			}
			if !moved() {
				return nil
			}
			// Slots are never merged; at a slot boundary nothing is deleted.
			next := sel.Focus()
			if next.Slot != caret.Slot {
				sel.SetPosition(caret.Slot, caret.Offset)
				return nil
			}
			sel.SetBaseAndExtent(caret.Slot, caret.Offset, next.Slot, next.Offset)
		}
		deleteScopes(sel)
		return nil
	})
}

// deleteScopes removes every selected scope, last first so earlier offsets
// stay valid, and collapses the selection to its start.
func deleteScopes(sel *selection.Selection) {
	if sel.IsCollapsed() {
		return
	}
	start := sel.Start()
	scopes := sel.SelectedScopes()
	for i := len(scopes) - 1; i >= 0; i-- {
		sc := scopes[i]
		sc.Slot.MoveTo(sc.StartIndex)
		sc.Slot.Delete(sc.Len())
	}
	sel.SetPosition(start.Slot, start.Offset)
}

// ApplyFormat applies f with value to every selected text slot. Inline
// formatters cover the selected spans; block formatters cover each touched
// slot. A nil value removes the format.
func (e *Engine) ApplyFormat(f *model.Formatter, value any) error {
	return e.Update(func(_ *model.Component, sel *selection.Selection) error {
		if !sel.IsSelected() {
			return ErrNoSelection
		}
		if f.IsBlock() {
			for _, s := range touchedSlots(sel) {
				s.ApplyFormat(f, model.FormatRange{StartIndex: 0, EndIndex: s.Length(), Value: value})
			}
			return nil
		}
		for _, sc := range sel.DeepScopes() {
			if sc.Slot.Allows(model.Text) {
				sc.Slot.ApplyFormat(f, model.FormatRange{StartIndex: sc.StartIndex, EndIndex: sc.EndIndex, Value: value})
			}
		}
		return nil
	})
}

// ClearFormats removes every inline format from the selected spans.
func (e *Engine) ClearFormats() error {
	return e.Update(func(_ *model.Component, sel *selection.Selection) error {
		if !sel.IsSelected() {
			return ErrNoSelection
		}
		for _, sc := range sel.DeepScopes() {
			sc.Slot.ClearFormats(sc.StartIndex, sc.EndIndex)
		}
		return nil
	})
}

// SetAttribute sets a on every slot the selection touches. A nil value
// removes it.
func (e *Engine) SetAttribute(a *model.Attribute, value any) error {
	return e.Update(func(_ *model.Component, sel *selection.Selection) error {
		if !sel.IsSelected() {
			return ErrNoSelection
		}
		for _, s := range touchedSlots(sel) {
			if value == nil {
				s.RemoveAttribute(a)
				continue
			}
			s.SetAttribute(a, value)
		}
		return nil
	})
}

// touchedSlots lists the text slots holding the caret or part of the
// selection, in document order.
func touchedSlots(sel *selection.Selection) []*model.Slot {
	var out []*model.Slot
	seen := make(map[*model.Slot]bool)
	add := func(s *model.Slot) {
		if s != nil && s.Allows(model.Text) && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	if sel.IsCollapsed() {
		add(sel.Focus().Slot)
		return out
	}
	for _, sc := range sel.DeepScopes() {
		add(sc.Slot)
	}
	return out
}

// Move moves the caret one step forward or back, collapsing a range.
func (e *Engine) Move(forward bool) bool {
	var ok bool
	_ = e.write(events.OriginLocal, func() error {
		if forward {
			ok = e.sel.ToNext()
		} else {
			ok = e.sel.ToPrevious()
		}
		return nil
	})
	return ok
}

// SelectAll selects from the start of the first text slot to the end of
// the last one, or the whole root slot list when no slot takes text.
func (e *Engine) SelectAll() bool {
	var ok bool
	_ = e.write(events.OriginLocal, func() error {
		var first, last *model.Slot
		model.Walk(e.root, func(s *model.Slot) bool {
			if s.Allows(model.Text) {
				if first == nil {
					first = s
				}
				last = s
			}
			return true
		})
		if first == nil {
			ok = e.sel.SelectAll()
			return nil
		}
		ok = e.sel.SetBaseAndExtent(first, 0, last, last.Length())
		return nil
	})
	return ok
}
