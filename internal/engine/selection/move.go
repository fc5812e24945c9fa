package selection

import (
	"github.com/dshills/inkwell/internal/engine/model"
	"github.com/rivo/uniseg"
)

// ToNext moves the caret one grapheme cluster or component forward. A
// range collapses to its end instead. At the end of a slot the caret
// enters the next slot in document order.
func (s *Selection) ToNext() bool {
	if !s.IsSelected() {
		return false
	}
	if !s.IsCollapsed() {
		s.Collapse(true)
		return true
	}
	p := s.focus
	if p.Offset < maxOffset(p.Slot) {
		p.Offset += nextStep(p.Slot, p.Offset)
		s.anchor, s.focus = p, p
		return true
	}
	next, ok := after(p.Slot)
	if !ok {
		return false
	}
	s.anchor, s.focus = next, next
	return true
}

// ToPrevious moves the caret one grapheme cluster or component back. A
// range collapses to its start instead. At the start of a slot the caret
// enters the end of the previous slot in document order.
func (s *Selection) ToPrevious() bool {
	if !s.IsSelected() {
		return false
	}
	if !s.IsCollapsed() {
		s.Collapse(false)
		return true
	}
	p := s.focus
	if p.Offset > 0 {
		p.Offset -= prevStep(p.Slot, p.Offset)
		s.anchor, s.focus = p, p
		return true
	}
	prev, ok := before(p.Slot)
	if !ok {
		return false
	}
	s.anchor, s.focus = prev, prev
	return true
}

// after is the caret position following the end of slot: the start of the
// next sibling slot, or the offset behind the owning component.
func after(slot *model.Slot) (Position, bool) {
	comp := slot.Parent()
	if comp == nil {
		return Position{}, false
	}
	if next := comp.SlotAt(comp.IndexOfSlot(slot) + 1); next != nil {
		return Position{Slot: next}, true
	}
	if parent := comp.Parent(); parent != nil {
		return Position{Slot: parent, Offset: parent.IndexOf(comp) + 1}, true
	}
	return Position{}, false
}

// before is the caret position preceding the start of slot: the end of the
// previous sibling slot, or the offset in front of the owning component.
func before(slot *model.Slot) (Position, bool) {
	comp := slot.Parent()
	if comp == nil {
		return Position{}, false
	}
	if prev := comp.SlotAt(comp.IndexOfSlot(slot) - 1); prev != nil {
		return Position{Slot: prev, Offset: maxOffset(prev)}, true
	}
	if parent := comp.Parent(); parent != nil {
		return Position{Slot: parent, Offset: parent.IndexOf(comp)}, true
	}
	return Position{}, false
}

// runAt returns the text run containing offset and offset's position in it
// in UTF-16 units. ok is false when offset sits on a component.
func runAt(slot *model.Slot, offset int) (run string, local int, ok bool) {
	pos := 0
	for _, piece := range slot.Content() {
		text, isText := piece.(string)
		n := 1
		if isText {
			n = model.TextLen(text)
		}
		if offset < pos+n {
			return text, offset - pos, isText
		}
		pos += n
	}
	return "", 0, false
}

// nextStep is the width of the grapheme cluster or component at offset.
func nextStep(slot *model.Slot, offset int) int {
	run, local, ok := runAt(slot, offset)
	if !ok {
		return 1
	}
	rest := model.TextSlice(run, local, model.TextLen(run))
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(rest, -1)
	if cluster == "" {
		return 1
	}
	return model.TextLen(cluster)
}

// prevStep is the width of the grapheme cluster or component ending at
// offset.
func prevStep(slot *model.Slot, offset int) int {
	run, local, ok := runAt(slot, offset-1)
	if !ok {
		return 1
	}
	head := model.TextSlice(run, 0, local+1)
	last := ""
	g := uniseg.NewGraphemes(head)
	for g.Next() {
		last = g.Str()
	}
	if last == "" {
		return 1
	}
	return model.TextLen(last)
}
