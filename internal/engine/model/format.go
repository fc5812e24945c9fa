package model

import (
	"reflect"
	"slices"
)

// FormatMap stores, per formatter, an ordered list of non-overlapping ranges.
// Adjacent ranges with equal values are always merged. Formatters keep the
// order in which they were first applied.
type FormatMap struct {
	order  []*Formatter
	ranges map[*Formatter][]FormatRange
}

// NewFormatMap creates an empty format map.
func NewFormatMap() *FormatMap {
	return &FormatMap{ranges: make(map[*Formatter][]FormatRange)}
}

func valueEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// Formatters returns the formatters that currently have ranges.
func (m *FormatMap) Formatters() []*Formatter {
	return slices.Clone(m.order)
}

// Has reports whether f has any range.
func (m *FormatMap) Has(f *Formatter) bool {
	_, ok := m.ranges[f]
	return ok
}

// Ranges returns a copy of the ranges of f, sorted by start.
func (m *FormatMap) Ranges(f *Formatter) []FormatRange {
	return slices.Clone(m.ranges[f])
}

// Apply merges r into the ranges of f.
//
// Positions covered by r take r's value; a nil value removes the format
// there. When background is true, existing ranges keep their values and r
// only fills positions that had no value. Block formatters replace their
// single range wholesale.
func (m *FormatMap) Apply(f *Formatter, r FormatRange, background bool) {
	if f.IsBlock() {
		if r.Value == nil {
			m.remove(f)
			return
		}
		if background && m.Has(f) {
			return
		}
		m.set(f, []FormatRange{{StartIndex: 0, EndIndex: r.EndIndex, Value: r.Value}})
		return
	}
	r.StartIndex = max(r.StartIndex, 0)
	if r.StartIndex >= r.EndIndex {
		return
	}

	// Only ranges overlapping or touching r can change.
	var before, touching, after []FormatRange
	for _, old := range m.ranges[f] {
		switch {
		case old.EndIndex < r.StartIndex:
			before = append(before, old)
		case old.StartIndex > r.EndIndex:
			after = append(after, old)
		default:
			touching = append(touching, old)
		}
	}

	stack := make([]FormatRange, 0, len(touching)+1)
	if background {
		stack = append(stack, r)
		stack = append(stack, touching...)
	} else {
		stack = append(stack, touching...)
		stack = append(stack, r)
	}

	// Sweep the boundaries of the stacked ranges; later entries win.
	bounds := make([]int, 0, 2*len(stack))
	for _, s := range stack {
		bounds = append(bounds, s.StartIndex, s.EndIndex)
	}
	slices.Sort(bounds)
	bounds = slices.Compact(bounds)

	out := append([]FormatRange(nil), before...)
	for i := 0; i+1 < len(bounds); i++ {
		from, to := bounds[i], bounds[i+1]
		var v any
		for _, s := range stack {
			if s.StartIndex <= from && to <= s.EndIndex {
				v = s.Value
			}
		}
		if v != nil {
			out = appendMerged(out, FormatRange{StartIndex: from, EndIndex: to, Value: v})
		}
	}
	for _, a := range after {
		out = appendMerged(out, a)
	}
	m.set(f, out)
}

// appendMerged appends r, extending the last range instead when r continues
// it with an equal value.
func appendMerged(out []FormatRange, r FormatRange) []FormatRange {
	if n := len(out); n > 0 && out[n-1].EndIndex == r.StartIndex && valueEqual(out[n-1].Value, r.Value) {
		out[n-1].EndIndex = r.EndIndex
		return out
	}
	return append(out, r)
}

// Stretch shifts inline ranges for an insertion of distance units at index.
// A range ending at or after index grows; a range starting at or after index
// moves. A range ending exactly at index therefore extends over the inserted
// content, which is how typing continues the format to the left.
func (m *FormatMap) Stretch(index, distance int) {
	if distance <= 0 {
		return
	}
	for _, f := range m.order {
		if f.IsBlock() {
			continue
		}
		ranges := m.ranges[f]
		for i := range ranges {
			if ranges[i].EndIndex < index {
				continue
			}
			ranges[i].EndIndex += distance
			if ranges[i].StartIndex >= index {
				ranges[i].StartIndex += distance
			}
		}
	}
}

// Shrink shifts inline ranges for a deletion of count units at index.
// Ranges inside the deleted span are dropped and ranges straddling its
// edges are truncated. Ranges that become adjacent are merged.
func (m *FormatMap) Shrink(index, count int) {
	if count <= 0 {
		return
	}
	end := index + count
	for _, f := range slices.Clone(m.order) {
		if f.IsBlock() {
			continue
		}
		var out []FormatRange
		for _, r := range m.ranges[f] {
			switch {
			case r.EndIndex <= index:
				out = append(out, r)
			case r.StartIndex >= end:
				r.StartIndex -= count
				r.EndIndex -= count
				out = append(out, r)
			default:
				start := min(r.StartIndex, index)
				stop := index
				if r.EndIndex > end {
					stop = r.EndIndex - count
				}
				if stop > start {
					out = append(out, FormatRange{StartIndex: start, EndIndex: stop, Value: r.Value})
				}
			}
		}
		m.set(f, merge(out))
	}
}

// merge joins touching neighbours with equal values in a sorted list.
func merge(ranges []FormatRange) []FormatRange {
	var out []FormatRange
	for _, r := range ranges {
		if n := len(out); n > 0 && out[n-1].EndIndex == r.StartIndex && valueEqual(out[n-1].Value, r.Value) {
			out[n-1].EndIndex = r.EndIndex
			continue
		}
		out = append(out, r)
	}
	return out
}

// Clear removes every inline format over [start, end).
func (m *FormatMap) Clear(start, end int) {
	for _, f := range slices.Clone(m.order) {
		if !f.IsBlock() {
			m.Apply(f, FormatRange{StartIndex: start, EndIndex: end}, false)
		}
	}
}

// ClearInline removes all inline formats.
func (m *FormatMap) ClearInline() {
	for _, f := range slices.Clone(m.order) {
		if !f.IsBlock() {
			m.remove(f)
		}
	}
}

// Resize sets every block range to cover [0, length).
func (m *FormatMap) Resize(length int) {
	for _, f := range m.order {
		if f.IsBlock() {
			for i := range m.ranges[f] {
				m.ranges[f][i].StartIndex = 0
				m.ranges[f][i].EndIndex = length
			}
		}
	}
}

// ValuesAt returns the value of every formatter covering index.
func (m *FormatMap) ValuesAt(index int) []FormatEntry {
	var out []FormatEntry
	for _, f := range m.order {
		for _, r := range m.ranges[f] {
			if r.StartIndex <= index && index < r.EndIndex {
				out = append(out, FormatEntry{Formatter: f, Value: r.Value})
				break
			}
		}
	}
	return out
}

// RangesIn returns the ranges of f that overlap [start, end), clipped to it.
func (m *FormatMap) RangesIn(f *Formatter, start, end int) []FormatRange {
	out := make([]FormatRange, 0)
	for _, r := range m.ranges[f] {
		s, e := max(r.StartIndex, start), min(r.EndIndex, end)
		if s < e {
			out = append(out, FormatRange{StartIndex: s, EndIndex: e, Value: r.Value})
		}
	}
	return out
}

// Extract returns the inline ranges overlapping [start, end), clipped and
// shifted so that start becomes 0.
func (m *FormatMap) Extract(start, end int) map[*Formatter][]FormatRange {
	out := make(map[*Formatter][]FormatRange)
	for _, f := range m.order {
		if f.IsBlock() {
			continue
		}
		for _, r := range m.RangesIn(f, start, end) {
			r.StartIndex -= start
			r.EndIndex -= start
			out[f] = append(out[f], r)
		}
	}
	return out
}

// Clone returns an independent copy.
func (m *FormatMap) Clone() *FormatMap {
	cp := NewFormatMap()
	for _, f := range m.order {
		cp.set(f, slices.Clone(m.ranges[f]))
	}
	return cp
}

// Literal returns the ranges keyed by formatter name.
func (m *FormatMap) Literal() map[string][]FormatRange {
	out := make(map[string][]FormatRange, len(m.order))
	for _, f := range m.order {
		out[f.Name()] = slices.Clone(m.ranges[f])
	}
	return out
}

func (m *FormatMap) set(f *Formatter, ranges []FormatRange) {
	if len(ranges) == 0 {
		m.remove(f)
		return
	}
	if _, ok := m.ranges[f]; !ok {
		m.order = append(m.order, f)
	}
	m.ranges[f] = ranges
}

func (m *FormatMap) remove(f *Formatter) {
	if _, ok := m.ranges[f]; !ok {
		return
	}
	delete(m.ranges, f)
	m.order = slices.DeleteFunc(m.order, func(x *Formatter) bool { return x == f })
}
