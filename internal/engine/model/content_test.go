package model

import (
	"reflect"
	"testing"
)

func checkNoAdjacentText(t *testing.T, c *Content) {
	t.Helper()
	for i := 1; i < len(c.data); i++ {
		_, a := c.data[i-1].(string)
		_, b := c.data[i].(string)
		if a && b {
			t.Fatalf("adjacent text runs at %d: %#v", i, c.data)
		}
	}
	total := 0
	for _, el := range c.data {
		total += itemLen(el)
	}
	if total != c.Length() {
		t.Fatalf("Length() = %d, sum of elements = %d", c.Length(), total)
	}
}

func TestContentAppendMerges(t *testing.T) {
	comp := NewComponent(&Definition{Name: "image", Type: InlineComponent}, nil)
	c := NewContent()
	c.Append("textbus")
	c.Append(comp)
	c.Append("a")
	c.Append("a")
	c.Append("")

	got := c.Slice(0, c.Length())
	want := []any{"textbus", comp, "aa"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Slice() = %#v, want %#v", got, want)
	}
	if c.Length() != 10 {
		t.Errorf("Length() = %d, want 10", c.Length())
	}
	checkNoAdjacentText(t, c)
}

func TestContentInsert(t *testing.T) {
	comp := NewComponent(&Definition{Name: "image", Type: InlineComponent}, nil)

	tests := []struct {
		name  string
		setup []any
		index int
		item  any
		want  []any
	}{
		{"text into run", []any{"textbus"}, 3, "A", []any{"texAtbus"}},
		{"component splits run", []any{"textbus"}, 3, comp, []any{"tex", comp, "tbus"}},
		{"text before component merges left", []any{"ab", comp}, 2, "c", []any{"abc", comp}},
		{"text after component merges right", []any{comp, "cd"}, 1, "b", []any{comp, "bcd"}},
		{"at length appends", []any{"ab"}, 2, "c", []any{"abc"}},
		{"past length appends", []any{"ab"}, 9, "c", []any{"abc"}},
		{"negative inserts at start", []any{"ab"}, -3, "c", []any{"cab"}},
		{"empty string ignored", []any{"ab"}, 1, "", []any{"ab"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContent()
			for _, item := range tt.setup {
				c.Append(item)
			}
			c.Insert(tt.index, tt.item)
			if got := c.Pieces(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Pieces() = %#v, want %#v", got, tt.want)
			}
			checkNoAdjacentText(t, c)
		})
	}
}

func TestContentCut(t *testing.T) {
	comp := NewComponent(&Definition{Name: "image", Type: InlineComponent}, nil)
	c := NewContent()
	c.Append("tex")
	c.Append(comp)
	c.Append("tbus")

	removed := c.Cut(2, 5)
	if want := []any{"x", comp, "t"}; !reflect.DeepEqual(removed, want) {
		t.Errorf("Cut() = %#v, want %#v", removed, want)
	}
	if want := []any{"tebus"}; !reflect.DeepEqual(c.Pieces(), want) {
		t.Errorf("Pieces() = %#v, want %#v", c.Pieces(), want)
	}
	checkNoAdjacentText(t, c)

	if got := c.Cut(3, 3); len(got) != 0 {
		t.Errorf("Cut(3, 3) = %#v, want empty", got)
	}
	if got := c.Cut(-5, 2); !reflect.DeepEqual(got, []any{"te"}) {
		t.Errorf("Cut(-5, 2) = %#v, want [te]", got)
	}
}

func TestContentIndexOfAndAt(t *testing.T) {
	a := NewComponent(&Definition{Name: "image", Type: InlineComponent}, nil)
	b := NewComponent(&Definition{Name: "image", Type: InlineComponent}, nil)
	c := NewContent()
	c.Append("ab")
	c.Append(a)
	c.Append("c")

	if got := c.IndexOf(a); got != 2 {
		t.Errorf("IndexOf(a) = %d, want 2", got)
	}
	if got := c.IndexOf(b); got != -1 {
		t.Errorf("IndexOf(b) = %d, want -1", got)
	}
	if got := c.At(1); got != "b" {
		t.Errorf("At(1) = %#v, want \"b\"", got)
	}
	if got := c.At(2); got != any(a) {
		t.Errorf("At(2) = %#v, want component", got)
	}
	if got := c.At(4); got != nil {
		t.Errorf("At(4) = %#v, want nil", got)
	}
	if got, want := c.Grid(), []int{0, 2, 3, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("Grid() = %v, want %v", got, want)
	}
}

func TestUTF16Offsets(t *testing.T) {
	s := "a😀b"
	if got := TextLen(s); got != 4 {
		t.Errorf("TextLen() = %d, want 4", got)
	}
	if got := TextSlice(s, 1, 3); got != "😀" {
		t.Errorf("TextSlice(1, 3) = %q, want 😀", got)
	}
	if got := TextSlice(s, 3, 4); got != "b" {
		t.Errorf("TextSlice(3, 4) = %q, want b", got)
	}

	c := NewContent()
	c.Append(s)
	c.Insert(3, "x")
	if got := c.Pieces()[0]; got != "a😀xb" {
		t.Errorf("Insert after surrogate pair = %q, want a😀xb", got)
	}
}
