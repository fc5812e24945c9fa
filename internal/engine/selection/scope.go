package selection

import "github.com/dshills/inkwell/internal/engine/model"

// Scope is a span [StartIndex, EndIndex) of one slot.
type Scope struct {
	Slot       *model.Slot
	StartIndex int
	EndIndex   int
}

// Len returns the width of the span.
func (sc Scope) Len() int {
	return sc.EndIndex - sc.StartIndex
}

// SelectedScopes returns the spans covered by the selection in document
// order. Empty spans are omitted, so a caret yields no scopes and a
// component merely adjacent to an end is never entered.
func (s *Selection) SelectedScopes() []Scope {
	if !s.IsSelected() || s.IsCollapsed() {
		return nil
	}
	common := s.CommonAncestorSlot()
	if common == nil {
		return nil
	}
	start, end := s.Start(), s.End()

	head, from := climb(start, common, true)
	tail, to := climb(end, common, false)

	out := head
	if from < to {
		out = append(out, Scope{Slot: common, StartIndex: from, EndIndex: to})
	}
	for i := len(tail) - 1; i >= 0; i-- {
		out = append(out, tail[i])
	}
	return nonEmpty(out)
}

// DeepScopes returns the selected scopes together with full scopes for
// every slot nested inside components the selection covers entirely.
// Each scope is followed by the scopes of the components it contains.
func (s *Selection) DeepScopes() []Scope {
	var out []Scope
	for _, sc := range s.SelectedScopes() {
		out = appendDeep(out, sc)
	}
	return out
}

func appendDeep(out []Scope, sc Scope) []Scope {
	out = append(out, sc)
	for _, comp := range sc.Slot.Components() {
		at := sc.Slot.IndexOf(comp)
		if at < sc.StartIndex || at >= sc.EndIndex {
			continue
		}
		for _, child := range comp.Slots() {
			out = appendDeep(out, Scope{Slot: child, StartIndex: 0, EndIndex: child.Length()})
		}
	}
	return out
}

// climb walks from p up to common. It returns the scopes on the way and the
// offset in common where the span between the two ends begins (forward) or
// ends (backward). Scopes come out innermost first.
func climb(p Position, common *model.Slot, forward bool) ([]Scope, int) {
	if p.Slot == common {
		return nil, p.Offset
	}
	var out []Scope
	cur := p.Slot
	if forward {
		out = append(out, Scope{Slot: cur, StartIndex: p.Offset, EndIndex: cur.Length()})
	} else {
		out = append(out, Scope{Slot: cur, StartIndex: 0, EndIndex: p.Offset})
	}
	for {
		comp := cur.Parent()
		slots := comp.Slots()
		at := comp.IndexOfSlot(cur)
		if forward {
			for _, sib := range slots[at+1:] {
				out = append(out, Scope{Slot: sib, StartIndex: 0, EndIndex: sib.Length()})
			}
		} else {
			for i := at - 1; i >= 0; i-- {
				out = append(out, Scope{Slot: slots[i], StartIndex: 0, EndIndex: slots[i].Length()})
			}
		}
		parent := comp.Parent()
		idx := parent.IndexOf(comp)
		if parent == common {
			if forward {
				return out, idx + 1
			}
			return out, idx
		}
		if forward {
			out = append(out, Scope{Slot: parent, StartIndex: idx + 1, EndIndex: parent.Length()})
		} else {
			out = append(out, Scope{Slot: parent, StartIndex: 0, EndIndex: idx})
		}
		cur = parent
	}
}

func nonEmpty(scopes []Scope) []Scope {
	out := scopes[:0]
	for _, sc := range scopes {
		if sc.StartIndex < sc.EndIndex {
			out = append(out, sc)
		}
	}
	return out
}
