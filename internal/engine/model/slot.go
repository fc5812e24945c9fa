package model

import (
	"reflect"
	"slices"
	"sort"

	"github.com/dshills/inkwell/internal/engine/literal"
	"github.com/dshills/inkwell/internal/engine/marker"
	"github.com/dshills/inkwell/internal/engine/operation"
)

// ContentType classifies slot content.
type ContentType = literal.ContentType

// Content types accepted in a slot schema.
const (
	Text            = literal.Text
	InlineComponent = literal.InlineComponent
	BlockComponent  = literal.BlockComponent
)

// Placeholder is the single unit held by an empty slot.
const Placeholder = "\n"

// Slot is an editable sequence of text and components with formats and
// attributes. It is never truly empty: with no content it holds Placeholder,
// so Length is always at least 1.
//
// All mutations go through a cursor (Index) and record an operation on the
// slot's marker.
type Slot struct {
	schema []ContentType
	state  any

	content *Content
	format  *FormatMap

	attrOrder []*Attribute
	attrs     map[*Attribute]any

	index  int
	parent *Component
	marker *marker.ChangeMarker
}

// SlotOption configures a Slot.
type SlotOption func(*Slot)

// WithState attaches opaque data carried by the slot.
func WithState(state any) SlotOption {
	return func(s *Slot) {
		s.state = state
	}
}

// NewSlot creates an empty slot accepting the given content types.
func NewSlot(schema []ContentType, opts ...SlotOption) *Slot {
	s := &Slot{
		schema:  slices.Clone(schema),
		content: NewContent(),
		format:  NewFormatMap(),
		attrs:   make(map[*Attribute]any),
		marker:  marker.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.content.Append(Placeholder)
	return s
}

// Schema returns the accepted content types.
func (s *Slot) Schema() []ContentType { return slices.Clone(s.schema) }

// State returns the opaque data carried by the slot.
func (s *Slot) State() any { return s.state }

// Allows reports whether the schema accepts t.
func (s *Slot) Allows(t ContentType) bool { return slices.Contains(s.schema, t) }

// Length returns the content length in UTF-16 units.
func (s *Slot) Length() int { return s.content.Length() }

// Index returns the cursor position.
func (s *Slot) Index() int { return s.index }

// Parent returns the owning component, or nil.
func (s *Slot) Parent() *Component { return s.parent }

// Marker returns the slot's change marker.
func (s *Slot) Marker() *marker.ChangeMarker { return s.marker }

// IsEmpty reports whether the slot holds only the placeholder.
func (s *Slot) IsEmpty() bool {
	if s.content.Length() != 1 {
		return false
	}
	text, ok := s.content.data[0].(string)
	return ok && text == Placeholder
}

// Content returns the text runs and components in order.
func (s *Slot) Content() []any { return s.content.Pieces() }

// At returns the item at index: a one-character string or a *Component.
func (s *Slot) At(index int) any { return s.content.At(index) }

// IndexOf returns the offset of comp in the slot, or -1.
func (s *Slot) IndexOf(comp *Component) int { return s.content.IndexOf(comp) }

// Components returns the components held directly by the slot.
func (s *Slot) Components() []*Component { return s.content.Components() }

// MoveTo places the cursor at index, clamped to [0, Length]. An index
// inside a surrogate pair moves forward past the character.
func (s *Slot) MoveTo(index int) {
	s.index = s.content.Boundary(index)
}

// Boundary returns the cursor position MoveTo(index) would select.
func (s *Slot) Boundary(index int) int { return s.content.Boundary(index) }

// Retain moves the cursor forward by offset, clamped to the end. Given
// formats are applied across the traversed span. Like MoveTo, the cursor
// never stops inside a surrogate pair.
func (s *Slot) Retain(offset int, formats ...FormatEntry) bool {
	if offset < 0 {
		return false
	}
	start := s.index
	end := s.content.Boundary(start + offset)
	if len(formats) > 0 {
		s.applyFormats(start, end, formats, false)
	}
	s.index = end
	return true
}

// Insert inserts a string or *Component at the cursor and advances it.
//
// Inserted text inherits the inline formats of the run it extends; formats
// given here are applied on top. Content the schema rejects leaves the slot
// unchanged and returns false. Inserting a component already held by this
// slot moves it to the cursor; a component held elsewhere is taken from its
// current slot.
func (s *Slot) Insert(content any, formats ...FormatEntry) bool {
	switch v := content.(type) {
	case string:
		if !s.Allows(Text) {
			return false
		}
		if v == "" {
			return true
		}
	case *Component:
		if v == nil || !s.Allows(v.Type()) || s.isInside(v) {
			return false
		}
		if v.parent == s {
			at := s.content.IndexOf(v)
			if at == s.index || at == s.index-1 {
				return true
			}
			target := s.index
			s.index = at
			s.Delete(1)
			if at < target {
				target--
			}
			s.index = target
		} else if v.parent != nil {
			v.parent.RemoveComponent(v)
		}
	default:
		return false
	}

	var inline, block []FormatEntry
	for _, e := range formats {
		switch {
		case e.Formatter == nil:
		case e.Formatter.IsBlock():
			block = append(block, e)
		default:
			inline = append(inline, e)
		}
	}
	s.insert(content, inline, false)
	if len(block) > 0 {
		s.applyFormats(0, s.Length(), block, false)
	}
	return true
}

// Delete removes up to count units forward from the cursor. A count ending
// inside a surrogate pair removes the whole character. It returns false
// when nothing was removed.
func (s *Slot) Delete(count int) bool {
	if count <= 0 || s.IsEmpty() {
		return false
	}
	start := s.index
	end := s.content.Boundary(start + count)
	if start >= end {
		return false
	}

	pieces := s.Delta(start, end)
	first := s.inlineValuesAt(start)
	removed := s.content.Cut(start, end)
	s.format.Shrink(start, end-start)
	if s.content.Length() == 0 {
		s.content.Append(Placeholder)
		for _, e := range first {
			s.format.Apply(e.Formatter, FormatRange{StartIndex: 0, EndIndex: 1, Value: e.Value}, false)
		}
	}
	s.format.Resize(s.Length())
	s.index = min(start, s.Length())
	for _, item := range removed {
		if comp, ok := item.(*Component); ok {
			s.release(comp)
		}
	}

	apply := append(retainTo(start), operation.Delete(end-start))
	unApply := retainTo(start)
	for _, p := range pieces {
		unApply = append(unApply, operation.Insert(itemLiteral(p.Insert), formatNames(p.Formats)))
	}
	s.record(apply, unApply)
	return true
}

// ApplyFormat applies r with formatter f. Block formatters ignore the range
// bounds and cover the whole slot. A nil value removes the format.
func (s *Slot) ApplyFormat(f *Formatter, r FormatRange) bool {
	return s.applyFormats(r.StartIndex, r.EndIndex, []FormatEntry{{Formatter: f, Value: r.Value}}, false)
}

// ApplyBackgroundFormat is like ApplyFormat but keeps existing values where
// f already has a range.
func (s *Slot) ApplyBackgroundFormat(f *Formatter, r FormatRange) bool {
	return s.applyFormats(r.StartIndex, r.EndIndex, []FormatEntry{{Formatter: f, Value: r.Value}}, true)
}

// RemoveFormat removes f over [start, end).
func (s *Slot) RemoveFormat(f *Formatter, start, end int) bool {
	return s.ApplyFormat(f, FormatRange{StartIndex: start, EndIndex: end})
}

// ClearFormats removes every inline format over [start, end).
func (s *Slot) ClearFormats(start, end int) bool {
	var entries []FormatEntry
	for _, f := range s.format.Formatters() {
		if !f.IsBlock() {
			entries = append(entries, FormatEntry{Formatter: f})
		}
	}
	return s.applyFormats(start, end, entries, false)
}

// Formatters returns the formatters with ranges in this slot.
func (s *Slot) Formatters() []*Formatter { return s.format.Formatters() }

// FormatRanges returns all ranges of f.
func (s *Slot) FormatRanges(f *Formatter) []FormatRange { return s.format.Ranges(f) }

// FormatRangesByFormatter returns the ranges of f overlapping [start, end),
// clipped to it.
func (s *Slot) FormatRangesByFormatter(f *Formatter, start, end int) []FormatRange {
	return s.format.RangesIn(f, start, end)
}

// FormatsAt returns every format covering index.
func (s *Slot) FormatsAt(index int) []FormatEntry { return s.format.ValuesAt(index) }

// SetAttribute sets a slot attribute. A nil value removes it.
func (s *Slot) SetAttribute(a *Attribute, value any) {
	if a == nil {
		return
	}
	if value == nil {
		s.RemoveAttribute(a)
		return
	}
	old, had := s.attrs[a]
	if had && valueEqual(old, value) {
		return
	}
	s.setAttr(a, value)
	apply := []operation.Action{{Type: operation.ActionAttrSet, Name: a.Name(), Value: literal.CloneValue(value)}}
	unApply := []operation.Action{{Type: operation.ActionAttrDelete, Name: a.Name()}}
	if had {
		unApply[0] = operation.Action{Type: operation.ActionAttrSet, Name: a.Name(), Value: old}
	}
	s.record(apply, unApply)
}

// RemoveAttribute removes a slot attribute. It reports whether it was set.
func (s *Slot) RemoveAttribute(a *Attribute) bool {
	old, had := s.attrs[a]
	if !had {
		return false
	}
	delete(s.attrs, a)
	s.attrOrder = slices.DeleteFunc(s.attrOrder, func(x *Attribute) bool { return x == a })
	s.record(
		[]operation.Action{{Type: operation.ActionAttrDelete, Name: a.Name()}},
		[]operation.Action{{Type: operation.ActionAttrSet, Name: a.Name(), Value: old}},
	)
	return true
}

// Attribute returns the value of a.
func (s *Slot) Attribute(a *Attribute) (any, bool) {
	v, ok := s.attrs[a]
	return v, ok
}

// Attributes returns all attributes in the order they were set.
func (s *Slot) Attributes() []AttributeEntry {
	out := make([]AttributeEntry, 0, len(s.attrOrder))
	for _, a := range s.attrOrder {
		out = append(out, AttributeEntry{Attribute: a, Value: s.attrs[a]})
	}
	return out
}

// RemoveComponent deletes comp from the slot. The cursor keeps its place
// relative to the remaining content.
func (s *Slot) RemoveComponent(comp *Component) bool {
	at := s.content.IndexOf(comp)
	if at < 0 {
		return false
	}
	cursor := s.index
	s.index = at
	s.Delete(1)
	if cursor > at {
		cursor--
	}
	s.MoveTo(cursor)
	return true
}

// Cut removes [start, end) and returns it as a new detached slot with the
// same schema, state and attributes.
func (s *Slot) Cut(start, end int) *Slot {
	out := NewSlot(s.schema, WithState(literal.CloneValue(s.state)))
	for _, a := range s.attrOrder {
		out.setAttr(a, literal.CloneValue(s.attrs[a]))
	}
	start = s.content.Boundary(start)
	end = max(start, s.content.Boundary(end))
	if start == end || s.IsEmpty() {
		return out
	}

	pieces := s.Delta(start, end)
	cursor := s.index
	s.index = start
	s.Delete(end - start)
	switch {
	case cursor >= end:
		cursor -= end - start
	case cursor > start:
		cursor = start
	}
	s.MoveTo(cursor)

	for _, p := range pieces {
		out.insert(p.Insert, p.Formats, true)
	}
	out.index = 0
	return out
}

// DeltaItem is a piece of content with uniform inline formats.
type DeltaItem struct {
	Insert  any
	Formats []FormatEntry
}

// Delta splits [start, end) into pieces with uniform inline formats. Each
// piece is a text run or a single component.
func (s *Slot) Delta(start, end int) []DeltaItem {
	start = max(0, min(start, s.Length()))
	end = max(start, min(end, s.Length()))

	cuts := []int{start, end}
	for _, g := range s.content.Grid() {
		if g > start && g < end {
			cuts = append(cuts, g)
		}
	}
	for _, f := range s.format.Formatters() {
		if f.IsBlock() {
			continue
		}
		for _, r := range s.format.Ranges(f) {
			for _, p := range []int{r.StartIndex, r.EndIndex} {
				if p > start && p < end {
					cuts = append(cuts, p)
				}
			}
		}
	}
	sort.Ints(cuts)
	cuts = slices.Compact(cuts)

	var out []DeltaItem
	for i := 0; i+1 < len(cuts); i++ {
		items := s.content.Slice(cuts[i], cuts[i+1])
		if len(items) == 0 {
			continue
		}
		formats := s.inlineValuesAt(cuts[i])
		if n := len(out); n > 0 {
			prev, prevText := out[n-1].Insert.(string)
			text, isText := items[0].(string)
			if prevText && isText && entriesEqual(out[n-1].Formats, formats) {
				out[n-1].Insert = prev + text
				continue
			}
		}
		out = append(out, DeltaItem{Insert: items[0], Formats: formats})
	}
	return out
}

// Clone returns a detached deep copy. Components are cloned.
func (s *Slot) Clone() *Slot {
	cp := NewSlot(s.schema, WithState(literal.CloneValue(s.state)))
	cp.content = NewContent()
	for _, item := range s.content.data {
		switch v := item.(type) {
		case string:
			cp.content.Append(v)
		case *Component:
			c := v.Clone()
			cp.content.Append(c)
			cp.adopt(c)
		}
	}
	cp.format = s.format.Clone()
	for _, a := range s.attrOrder {
		cp.setAttr(a, literal.CloneValue(s.attrs[a]))
	}
	cp.index = s.index
	return cp
}

// Literal returns the persisted form of the slot.
func (s *Slot) Literal() literal.Slot {
	content := make(literal.Content, 0, len(s.content.data))
	for _, item := range s.content.data {
		content = append(content, itemLiteral(item))
	}
	var attrs map[string]any
	if len(s.attrOrder) > 0 {
		attrs = make(map[string]any, len(s.attrOrder))
		for _, a := range s.attrOrder {
			attrs[a.Name()] = literal.CloneValue(s.attrs[a])
		}
	}
	return literal.Slot{
		Schema:     slices.Clone(s.schema),
		State:      literal.CloneValue(s.state),
		Attributes: attrs,
		Content:    content,
		Formats:    s.format.Literal(),
	}
}

// ToString returns the plain text of the slot. An empty slot yields "".
func (s *Slot) ToString() string {
	if s.IsEmpty() {
		return ""
	}
	return s.content.String()
}

// insert places content at the cursor. In exact mode the inserted span
// carries only the given formats; otherwise it inherits the formats of the
// run it extends, including those set on an empty slot's placeholder.
func (s *Slot) insert(content any, formats []FormatEntry, exact bool) {
	n := itemLen(content)
	if n == 0 {
		return
	}
	index := s.index
	wasEmpty := s.IsEmpty()
	var placeholder []FormatEntry
	if wasEmpty {
		index = 0
		placeholder = s.inlineValuesAt(0)
		var inherited []FormatEntry
		if !exact {
			inherited = placeholder
		}
		s.content.Cut(0, 1)
		s.format.ClearInline()
		s.content.Insert(0, content)
		for _, e := range inherited {
			s.format.Apply(e.Formatter, FormatRange{StartIndex: 0, EndIndex: n, Value: e.Value}, false)
		}
	} else {
		s.content.Insert(index, content)
		s.format.Stretch(index, n)
		if exact {
			s.format.Clear(index, index+n)
		}
	}
	for _, e := range formats {
		s.format.Apply(e.Formatter, FormatRange{StartIndex: index, EndIndex: index + n, Value: e.Value}, false)
	}
	s.format.Resize(s.Length())
	s.index = index + n
	if comp, ok := content.(*Component); ok {
		s.adopt(comp)
	}

	apply := append(retainTo(index), operation.Insert(itemLiteral(content), formatNames(s.inlineValuesAt(index))))
	unApply := append(retainTo(index), operation.Delete(n))
	if wasEmpty {
		// Deleting everything leaves a placeholder styled like the first
		// unit, which may differ from the placeholder this insert replaced.
		if restore := formatDiff(s.inlineValuesAt(0), placeholder); len(restore) > 0 {
			unApply = append(unApply, operation.RetainFormats(1, restore))
		}
	}
	s.record(apply, unApply)
}

// applyFormats applies entries over [start, end) and records the change.
// The recorded actions carry the exact per-segment values before and after,
// so replay does not depend on background precedence.
func (s *Slot) applyFormats(start, end int, entries []FormatEntry, background bool) bool {
	var inline []*Formatter
	var inlineEntries, block []FormatEntry
	for _, e := range entries {
		switch {
		case e.Formatter == nil:
		case e.Formatter.IsBlock():
			block = append(block, e)
		default:
			inline = append(inline, e.Formatter)
			inlineEntries = append(inlineEntries, e)
		}
	}
	length := s.Length()
	start = max(0, min(start, length))
	end = max(start, min(end, length))
	changed := false

	if len(inlineEntries) > 0 && start < end {
		before := s.formatSegments(start, end, inline)
		for _, e := range inlineEntries {
			s.format.Apply(e.Formatter, FormatRange{StartIndex: start, EndIndex: end, Value: e.Value}, background)
		}
		after := s.formatSegments(start, end, inline)
		if !reflect.DeepEqual(before, after) {
			s.record(append(retainTo(start), after...), append(retainTo(start), before...))
			changed = true
		}
	}

	for _, e := range block {
		prev := s.blockValue(e.Formatter)
		s.format.Apply(e.Formatter, FormatRange{StartIndex: 0, EndIndex: length, Value: e.Value}, background)
		next := s.blockValue(e.Formatter)
		if valueEqual(prev, next) {
			continue
		}
		name := e.Formatter.Name()
		s.record(
			[]operation.Action{operation.RetainFormats(length, map[string]any{name: next})},
			[]operation.Action{operation.RetainFormats(length, map[string]any{name: prev})},
		)
		changed = true
	}
	return changed
}

// formatSegments describes the values of fs over [start, end) as retain
// actions, one per run of identical values. Missing values are nil.
func (s *Slot) formatSegments(start, end int, fs []*Formatter) []operation.Action {
	cuts := []int{start, end}
	for _, f := range fs {
		for _, r := range s.format.Ranges(f) {
			for _, p := range []int{r.StartIndex, r.EndIndex} {
				if p > start && p < end {
					cuts = append(cuts, p)
				}
			}
		}
	}
	sort.Ints(cuts)
	cuts = slices.Compact(cuts)

	var out []operation.Action
	for i := 0; i+1 < len(cuts); i++ {
		values := make(map[string]any, len(fs))
		for _, f := range fs {
			values[f.Name()] = s.formatValue(f, cuts[i])
		}
		width := cuts[i+1] - cuts[i]
		if n := len(out); n > 0 && reflect.DeepEqual(out[n-1].Formats, values) {
			out[n-1].Offset += width
			continue
		}
		out = append(out, operation.RetainFormats(width, values))
	}
	return out
}

func (s *Slot) formatValue(f *Formatter, index int) any {
	for _, r := range s.format.ranges[f] {
		if r.StartIndex <= index && index < r.EndIndex {
			return r.Value
		}
	}
	return nil
}

func (s *Slot) blockValue(f *Formatter) any {
	if ranges := s.format.ranges[f]; len(ranges) > 0 {
		return ranges[0].Value
	}
	return nil
}

func (s *Slot) inlineValuesAt(index int) []FormatEntry {
	var out []FormatEntry
	for _, e := range s.format.ValuesAt(index) {
		if !e.Formatter.IsBlock() {
			out = append(out, e)
		}
	}
	return out
}

func (s *Slot) setAttr(a *Attribute, value any) {
	if _, ok := s.attrs[a]; !ok {
		s.attrOrder = append(s.attrOrder, a)
	}
	s.attrs[a] = value
}

func (s *Slot) record(apply, unApply []operation.Action) {
	s.marker.MarkAsDirtied(operation.New(apply, unApply))
}

// isInside reports whether s lies within comp's subtree.
func (s *Slot) isInside(comp *Component) bool {
	for cur := s.parent; cur != nil; {
		if cur == comp {
			return true
		}
		if cur.parent == nil {
			return false
		}
		cur = cur.parent.parent
	}
	return false
}

// adopt links comp under this slot and runs attach hooks.
func (s *Slot) adopt(comp *Component) {
	comp.parent = s
	comp.marker.SetParent(s.marker, func() (any, bool) {
		if comp.parent != s {
			return nil, false
		}
		at := s.content.IndexOf(comp)
		return at, at >= 0
	})
	comp.attachTree()
}

// release unlinks comp and runs detach hooks on its subtree.
func (s *Slot) release(comp *Component) {
	if comp.parent != s {
		return
	}
	comp.parent = nil
	comp.marker.Detach()
	comp.detachTree()
}

func itemLiteral(item any) any {
	if comp, ok := item.(*Component); ok {
		return comp.Literal()
	}
	return item
}

func formatNames(entries []FormatEntry) map[string]any {
	if len(entries) == 0 {
		return nil
	}
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		out[e.Formatter.Name()] = literal.CloneValue(e.Value)
	}
	return out
}

// formatDiff returns the name-keyed values that turn from into to. Formats
// missing from to map to nil.
func formatDiff(from, to []FormatEntry) map[string]any {
	out := make(map[string]any)
	for _, e := range from {
		if v, ok := entryValue(to, e.Formatter); !ok || !valueEqual(v, e.Value) {
			out[e.Formatter.Name()] = literal.CloneValue(v)
		}
	}
	for _, e := range to {
		if _, ok := entryValue(from, e.Formatter); !ok {
			out[e.Formatter.Name()] = literal.CloneValue(e.Value)
		}
	}
	return out
}

func entryValue(entries []FormatEntry, f *Formatter) (any, bool) {
	for _, e := range entries {
		if e.Formatter == f {
			return e.Value, true
		}
	}
	return nil, false
}

func entriesEqual(a, b []FormatEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Formatter != b[i].Formatter || !valueEqual(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

func retainTo(index int) []operation.Action {
	if index <= 0 {
		return nil
	}
	return []operation.Action{operation.Retain(index)}
}
