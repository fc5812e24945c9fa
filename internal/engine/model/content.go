package model

import (
	"slices"
	"strings"
)

// Content is the ordered list of text runs and component references held by
// a slot. Adjacent text runs are always merged, so two strings never sit
// next to each other. Components count as length 1.
type Content struct {
	data   []any
	length int
}

// NewContent creates empty content.
func NewContent() *Content {
	return &Content{}
}

func itemLen(item any) int {
	switch v := item.(type) {
	case string:
		return TextLen(v)
	case *Component:
		if v == nil {
			return 0
		}
		return 1
	default:
		return 0
	}
}

// Length returns the total length in UTF-16 units.
func (c *Content) Length() int {
	return c.length
}

// Pieces returns the elements: string runs and *Component references.
func (c *Content) Pieces() []any {
	return slices.Clone(c.data)
}

// Append adds item at the end. Empty strings are ignored and a string
// following a string run is merged into it.
func (c *Content) Append(item any) {
	switch v := item.(type) {
	case string:
		if v == "" {
			return
		}
		if n := len(c.data); n > 0 {
			if last, ok := c.data[n-1].(string); ok {
				c.data[n-1] = last + v
				c.length += TextLen(v)
				return
			}
		}
		c.data = append(c.data, v)
		c.length += TextLen(v)
	case *Component:
		if v == nil {
			return
		}
		c.data = append(c.data, v)
		c.length++
	}
}

// Insert places item at index. Indices past the end append; negative
// indices insert at the start. Text is merged with neighbouring runs and a
// component inserted inside a run splits it.
func (c *Content) Insert(index int, item any) {
	if itemLen(item) == 0 {
		return
	}
	if index >= c.length {
		c.Append(item)
		return
	}
	index = max(index, 0)
	text, isText := item.(string)

	offset := 0
	for i, el := range c.data {
		n := itemLen(el)
		if index == offset {
			if isText {
				if i > 0 {
					if prev, ok := c.data[i-1].(string); ok {
						c.data[i-1] = prev + text
						c.length += TextLen(text)
						return
					}
				}
				if cur, ok := el.(string); ok {
					c.data[i] = text + cur
					c.length += TextLen(text)
					return
				}
			}
			c.data = slices.Insert(c.data, i, item)
			c.length += itemLen(item)
			return
		}
		if index < offset+n {
			// Strictly inside a run; components have length 1 so el is text.
			run := el.(string)
			local := index - offset
			head, tail := TextSlice(run, 0, local), TextSlice(run, local, n)
			if isText {
				c.data[i] = head + text + tail
			} else {
				c.data = slices.Replace(c.data, i, i+1, any(head), item, any(tail))
			}
			c.length += itemLen(item)
			return
		}
		offset += n
	}
	c.Append(item)
}

// Boundary returns the first offset at or after index that does not split a
// surrogate pair, clamped to [0, Length].
func (c *Content) Boundary(index int) int {
	index = max(0, min(index, c.length))
	offset := 0
	for _, el := range c.data {
		n := itemLen(el)
		if index < offset+n {
			if run, ok := el.(string); ok && index > offset {
				return offset + TextBoundary(run, index-offset)
			}
			return index
		}
		offset += n
	}
	return index
}

// Slice returns the elements between start and end, cutting text runs at
// the boundaries. The result is a fresh slice.
func (c *Content) Slice(start, end int) []any {
	start, end = c.clamp(start, end)
	out := make([]any, 0)
	if start >= end {
		return out
	}
	offset := 0
	for _, el := range c.data {
		n := itemLen(el)
		elStart, elEnd := offset, offset+n
		offset = elEnd
		if elEnd <= start {
			continue
		}
		if elStart >= end {
			break
		}
		if run, ok := el.(string); ok {
			part := TextSlice(run, max(start-elStart, 0), min(end, elEnd)-elStart)
			if part != "" {
				out = append(out, part)
			}
			continue
		}
		out = append(out, el)
	}
	return out
}

// Cut removes the elements between start and end and returns them. The
// remaining head and tail are re-appended so adjacent runs merge.
func (c *Content) Cut(start, end int) []any {
	start, end = c.clamp(start, end)
	if start >= end {
		return make([]any, 0)
	}
	removed := c.Slice(start, end)
	head := c.Slice(0, start)
	tail := c.Slice(end, c.length)
	c.data = nil
	c.length = 0
	for _, item := range head {
		c.Append(item)
	}
	for _, item := range tail {
		c.Append(item)
	}
	return removed
}

// IndexOf returns the offset of comp, or -1.
func (c *Content) IndexOf(comp *Component) int {
	offset := 0
	for _, el := range c.data {
		if el == any(comp) {
			return offset
		}
		offset += itemLen(el)
	}
	return -1
}

// At returns the item at index: a one-character string or a *Component.
// It returns nil when index is out of range.
func (c *Content) At(index int) any {
	if index < 0 || index >= c.length {
		return nil
	}
	items := c.Slice(index, index+1)
	if len(items) == 0 {
		return nil
	}
	return items[0]
}

// Grid returns the boundaries between elements, starting with 0 and ending
// with Length.
func (c *Content) Grid() []int {
	grid := make([]int, 0, len(c.data)+1)
	grid = append(grid, 0)
	offset := 0
	for _, el := range c.data {
		offset += itemLen(el)
		grid = append(grid, offset)
	}
	return grid
}

// Components returns the components in order.
func (c *Content) Components() []*Component {
	var out []*Component
	for _, el := range c.data {
		if comp, ok := el.(*Component); ok {
			out = append(out, comp)
		}
	}
	return out
}

// String returns the text with each component replaced by its own text.
func (c *Content) String() string {
	var b strings.Builder
	for _, el := range c.data {
		switch v := el.(type) {
		case string:
			b.WriteString(v)
		case *Component:
			b.WriteString(v.ToString())
		}
	}
	return b.String()
}

func (c *Content) clamp(start, end int) (int, int) {
	start = max(0, min(start, c.length))
	end = max(0, min(end, c.length))
	return start, end
}
