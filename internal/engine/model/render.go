package model

import "sort"

// Fragment is one rendered piece of a slot: a text run or a component with
// the inline formats active across it.
type Fragment struct {
	Start   int
	End     int
	Content any
	Formats []FormatEntry
}

// SlotRenderer turns a slot's fragments into view nodes.
type SlotRenderer interface {
	RenderSlot(s *Slot, fragments []Fragment) error
}

// SlotRendererFunc adapts a function to SlotRenderer.
type SlotRendererFunc func(s *Slot, fragments []Fragment) error

// RenderSlot calls f.
func (f SlotRendererFunc) RenderSlot(s *Slot, fragments []Fragment) error {
	return f(s, fragments)
}

// Fragments returns the slot content split at every component and format
// boundary. Formats are ordered by formatter priority.
func (s *Slot) Fragments() []Fragment {
	offset := 0
	var out []Fragment
	for _, item := range s.Delta(0, s.Length()) {
		n := itemLen(item.Insert)
		formats := append([]FormatEntry(nil), item.Formats...)
		sort.SliceStable(formats, func(i, j int) bool {
			return formats[i].Formatter.Priority() < formats[j].Formatter.Priority()
		})
		out = append(out, Fragment{Start: offset, End: offset + n, Content: item.Insert, Formats: formats})
		offset += n
	}
	return out
}

// BlockFormats returns the block formats of the slot.
func (s *Slot) BlockFormats() []FormatEntry {
	var out []FormatEntry
	for _, f := range s.format.Formatters() {
		if f.IsBlock() {
			out = append(out, FormatEntry{Formatter: f, Value: s.blockValue(f)})
		}
	}
	return out
}

// Render hands the fragments to r and marks the slot rendered on success.
func (s *Slot) Render(r SlotRenderer) error {
	if err := r.RenderSlot(s, s.Fragments()); err != nil {
		return err
	}
	s.marker.Rendered()
	return nil
}
