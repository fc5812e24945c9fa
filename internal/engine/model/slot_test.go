package model

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/inkwell/internal/engine/operation"
)

func TestSlotSequentialInsert(t *testing.T) {
	s := NewSlot([]ContentType{Text})
	s.Insert("1")
	s.Insert("2")
	s.Insert("34")
	if s.Length() != 4 {
		t.Errorf("Length() = %d, want 4", s.Length())
	}
	if s.Index() != 4 {
		t.Errorf("Index() = %d, want 4", s.Index())
	}
	if got := s.ToString(); got != "1234" {
		t.Errorf("ToString() = %q, want 1234", got)
	}
}

func TestSlotInsertWithFormat(t *testing.T) {
	fx := newFixture(t)
	s := NewSlot([]ContentType{Text})
	s.Insert("123", Format(fx.bold, true))
	got := s.FormatRangesByFormatter(fx.bold, 0, 3)
	want := []FormatRange{{StartIndex: 0, EndIndex: 3, Value: true}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FormatRangesByFormatter() = %+v, want %+v", got, want)
	}
}

func TestSlotInheritsFormatOfExtendedRun(t *testing.T) {
	fx := newFixture(t)
	s := NewSlot([]ContentType{Text})
	s.Insert("ab", Format(fx.bold, true))
	s.Insert("c")
	s.MoveTo(0)
	s.Insert("z")

	want := []FormatRange{{StartIndex: 1, EndIndex: 4, Value: true}}
	if got := s.FormatRanges(fx.bold); !reflect.DeepEqual(got, want) {
		t.Errorf("FormatRanges() = %+v, want %+v", got, want)
	}
	s.MoveTo(s.Length())
	s.Insert("!", Format(fx.bold, nil))
	if got := s.FormatRanges(fx.bold); !reflect.DeepEqual(got, want) {
		t.Errorf("after plain insert FormatRanges() = %+v, want %+v", got, want)
	}
}

func TestSlotDeleteAcrossStyledBoundary(t *testing.T) {
	fx := newFixture(t)
	img := fx.image("a.png")
	s := NewSlot([]ContentType{Text, InlineComponent})
	s.Insert("hello,", Format(fx.bold, true))
	s.Insert(img, Format(fx.bold, nil))
	s.Insert("textbus", Format(fx.bold, true))
	s.Insert("!", Format(fx.bold, nil))

	before := []FormatRange{{StartIndex: 0, EndIndex: 6, Value: true}, {StartIndex: 7, EndIndex: 14, Value: true}}
	if got := s.FormatRanges(fx.bold); !reflect.DeepEqual(got, before) {
		t.Fatalf("setup FormatRanges() = %+v, want %+v", got, before)
	}

	s.MoveTo(3)
	if !s.Delete(1) {
		t.Fatal("Delete(1) = false")
	}

	want := []FormatRange{{StartIndex: 0, EndIndex: 5, Value: true}, {StartIndex: 6, EndIndex: 13, Value: true}}
	if got := s.FormatRanges(fx.bold); !reflect.DeepEqual(got, want) {
		t.Errorf("FormatRanges() = %+v, want %+v", got, want)
	}
	if got := s.IndexOf(img); got != 5 {
		t.Errorf("IndexOf(img) = %d, want 5", got)
	}
	if got := s.ToString(); got != "helo,textbus!" {
		t.Errorf("ToString() = %q", got)
	}
}

func TestSlotNeverEmpty(t *testing.T) {
	s := NewSlot([]ContentType{Text})
	if s.Length() != 1 || !s.IsEmpty() {
		t.Fatalf("new slot Length() = %d IsEmpty() = %v", s.Length(), s.IsEmpty())
	}
	if s.Delete(1) {
		t.Error("Delete() on empty slot = true")
	}

	s.Insert("abc")
	s.MoveTo(1)
	if !s.Delete(100) {
		t.Fatal("Delete(100) = false")
	}
	if got := s.ToString(); got != "a" {
		t.Errorf("over-length delete left %q, want a", got)
	}
	s.MoveTo(0)
	s.Delete(1)
	if s.Length() != 1 || !s.IsEmpty() {
		t.Errorf("after deleting everything Length() = %d IsEmpty() = %v", s.Length(), s.IsEmpty())
	}
	if s.Index() != 0 {
		t.Errorf("Index() = %d, want 0", s.Index())
	}
	want := `{"schema":[1],"state":null,"content":["\n"],"formats":{}}`
	if got := mustJSON(t, s.Literal()); got != want {
		t.Errorf("Literal() = %s, want %s", got, want)
	}
}

func TestSlotSchemaRejection(t *testing.T) {
	fx := newFixture(t)
	s := NewSlot([]ContentType{Text})
	s.Insert("ab")
	var ops int
	s.Marker().OnChange(func(*operation.Operation) { ops++ })

	if s.Insert(fx.image("x.png")) {
		t.Error("Insert(inline component) into text-only slot = true")
	}
	if s.Length() != 2 || ops != 0 {
		t.Errorf("rejected insert changed the slot: length=%d ops=%d", s.Length(), ops)
	}

	blockOnly := NewSlot([]ContentType{BlockComponent})
	if blockOnly.Insert("text") {
		t.Error("Insert(text) into block-only slot = true")
	}
}

func TestSlotCursorClamps(t *testing.T) {
	s := NewSlot([]ContentType{Text})
	s.Insert("abc")
	s.MoveTo(100)
	if s.Index() != 3 {
		t.Errorf("MoveTo(100) Index() = %d, want 3", s.Index())
	}
	s.MoveTo(-4)
	if s.Index() != 0 {
		t.Errorf("MoveTo(-4) Index() = %d, want 0", s.Index())
	}
	s.Retain(10)
	if s.Index() != 3 {
		t.Errorf("Retain(10) Index() = %d, want 3", s.Index())
	}
	if s.Retain(-1) {
		t.Error("Retain(-1) = true")
	}
}

func TestSlotCursorSkipsSurrogatePairs(t *testing.T) {
	fx := newFixture(t)
	s := NewSlot([]ContentType{Text, InlineComponent})
	s.Insert("😀x", Format(fx.color, "red"))

	s.MoveTo(1)
	if s.Index() != 2 {
		t.Errorf("MoveTo(1) Index() = %d, want 2", s.Index())
	}
	s.MoveTo(0)
	s.Retain(1)
	if s.Index() != 2 {
		t.Errorf("Retain(1) Index() = %d, want 2", s.Index())
	}

	s.MoveTo(1)
	s.Insert(fx.image("a.png"))
	if got := s.Length(); got != 4 {
		t.Errorf("Length() = %d, want 4", got)
	}
	if _, ok := s.At(2).(*Component); !ok {
		t.Errorf("At(2) = %v, want image", s.At(2))
	}
	for _, r := range s.FormatRanges(fx.color) {
		if r.EndIndex > s.Length() {
			t.Errorf("FormatRanges() = %+v, ends past Length() %d", s.FormatRanges(fx.color), s.Length())
		}
	}

	s.MoveTo(0)
	s.Delete(1)
	if got := s.ToString(); got != "x" {
		t.Errorf("Delete(1) ToString() = %q, want x", got)
	}
}

func TestSlotReplayRejectsSplitCharacter(t *testing.T) {
	fx := newFixture(t)
	root, s := fx.rooted()
	s.Insert("😀")
	before := mustJSON(t, root.Literal())

	err := Apply(root, operation.Path{0}, []operation.Action{
		operation.Retain(1),
		operation.Insert("é", nil),
	}, fx.reg)
	if !errors.Is(err, ErrInvalidAction) {
		t.Errorf("Apply() error = %v, want ErrInvalidAction", err)
	}
	if got := mustJSON(t, root.Literal()); got != before {
		t.Errorf("Apply() changed the slot:\n got %s\nwant %s", got, before)
	}
}

func TestSlotInsertAtLengthMatchesAppend(t *testing.T) {
	a := NewSlot([]ContentType{Text})
	a.Insert("abc")
	a.MoveTo(a.Length())
	a.Insert("d")

	b := NewSlot([]ContentType{Text})
	b.Insert("abcd")

	if mustJSON(t, a.Literal()) != mustJSON(t, b.Literal()) {
		t.Errorf("insert at length = %s, append = %s", mustJSON(t, a.Literal()), mustJSON(t, b.Literal()))
	}
}

func TestSlotRetainAppliesFormat(t *testing.T) {
	fx := newFixture(t)
	s := NewSlot([]ContentType{Text})
	s.Insert("hello")
	s.MoveTo(1)
	s.Retain(3, Format(fx.bold, true))

	if s.Index() != 4 {
		t.Errorf("Index() = %d, want 4", s.Index())
	}
	want := []FormatRange{{StartIndex: 1, EndIndex: 4, Value: true}}
	if got := s.FormatRanges(fx.bold); !reflect.DeepEqual(got, want) {
		t.Errorf("FormatRanges() = %+v, want %+v", got, want)
	}
}

func TestSlotDuplicateComponentMoves(t *testing.T) {
	fx := newFixture(t)
	img := fx.image("a.png")
	s := NewSlot([]ContentType{Text, InlineComponent})
	s.Insert("ab")
	s.Insert(img)
	s.Insert("cd")

	s.MoveTo(2)
	var ops int
	s.Marker().OnChange(func(*operation.Operation) { ops++ })
	if !s.Insert(img) {
		t.Fatal("adjacent duplicate Insert() = false")
	}
	if ops != 0 || s.Length() != 5 {
		t.Errorf("adjacent duplicate changed slot: ops=%d length=%d", ops, s.Length())
	}

	s.MoveTo(0)
	s.Insert(img)
	if got := s.IndexOf(img); got != 0 {
		t.Errorf("IndexOf(img) = %d, want 0", got)
	}
	if s.Length() != 5 {
		t.Errorf("Length() = %d, want 5", s.Length())
	}
	if got := s.Index(); got != 1 {
		t.Errorf("Index() = %d, want 1", got)
	}
	if n := len(s.Components()); n != 1 {
		t.Errorf("len(Components()) = %d, want 1", n)
	}
}

func TestSlotComponentTakenFromOtherSlot(t *testing.T) {
	fx := newFixture(t)
	img := fx.image("a.png")
	a := NewSlot([]ContentType{Text, InlineComponent})
	b := NewSlot([]ContentType{Text, InlineComponent})
	a.Insert(img)
	b.Insert(img)

	if img.Parent() != b {
		t.Error("Parent() != b")
	}
	if a.IndexOf(img) != -1 || !a.IsEmpty() {
		t.Error("component still in a")
	}
}

func TestSlotRejectsCycles(t *testing.T) {
	fx := newFixture(t)
	inner := NewSlot([]ContentType{Text, BlockComponent})
	para := NewComponent(fx.paraDef, nil, inner)
	if inner.Insert(para) {
		t.Error("inserting a component into its own slot = true")
	}
}

func TestSlotAttributes(t *testing.T) {
	fx := newFixture(t)
	s := NewSlot([]ContentType{Text})
	s.SetAttribute(fx.textAlign, "center")
	if v, ok := s.Attribute(fx.textAlign); !ok || v != "center" {
		t.Errorf("Attribute() = %v, %v", v, ok)
	}
	s.SetAttribute(fx.textAlign, nil)
	if _, ok := s.Attribute(fx.textAlign); ok {
		t.Error("nil value did not remove attribute")
	}
	if s.RemoveAttribute(fx.textAlign) {
		t.Error("RemoveAttribute() on missing attribute = true")
	}
}

func TestSlotBlockFormatCoversSlot(t *testing.T) {
	fx := newFixture(t)
	s := NewSlot([]ContentType{Text})
	s.Insert("title")
	s.ApplyFormat(fx.heading, FormatRange{StartIndex: 1, EndIndex: 2, Value: "h1"})
	s.Insert("!")

	want := []FormatRange{{StartIndex: 0, EndIndex: 6, Value: "h1"}}
	if got := s.FormatRanges(fx.heading); !reflect.DeepEqual(got, want) {
		t.Errorf("FormatRanges() = %+v, want %+v", got, want)
	}
	if got := s.BlockFormats(); len(got) != 1 || got[0].Value != "h1" {
		t.Errorf("BlockFormats() = %+v", got)
	}
	for _, f := range s.Fragments() {
		if len(f.Formats) != 0 {
			t.Errorf("fragment carries block format: %+v", f)
		}
	}
}

func TestSlotCut(t *testing.T) {
	fx := newFixture(t)
	img := fx.image("a.png")
	s := NewSlot([]ContentType{Text, InlineComponent})
	s.SetAttribute(fx.textAlign, "right")
	s.Insert("ab", Format(fx.bold, true))
	s.Insert(img)
	s.Insert("cd", Format(fx.bold, nil))
	s.MoveTo(5)

	out := s.Cut(1, 4)
	if got := s.ToString(); got != "ad" {
		t.Errorf("source ToString() = %q, want ad", got)
	}
	if s.Index() != 2 {
		t.Errorf("source Index() = %d, want 2", s.Index())
	}
	if out.Length() != 3 || out.IndexOf(img) != 1 || img.Parent() != out {
		t.Errorf("cut slot length=%d img at %d", out.Length(), out.IndexOf(img))
	}
	if got := out.FormatRanges(fx.bold); len(got) != 1 || got[0].StartIndex != 0 || got[0].EndIndex != 2 {
		t.Errorf("cut slot bold = %+v, want [0,2)", got)
	}
	if v, _ := out.Attribute(fx.textAlign); v != "right" {
		t.Errorf("cut slot textAlign = %v, want right", v)
	}
}

func TestSlotClone(t *testing.T) {
	fx := newFixture(t)
	s := NewSlot([]ContentType{Text, InlineComponent})
	s.Insert("ab", Format(fx.color, "red"))
	s.Insert(fx.image("a.png"))

	cp := s.Clone()
	if mustJSON(t, cp.Literal()) != mustJSON(t, s.Literal()) {
		t.Errorf("Clone() literal differs")
	}
	if cp.Components()[0] == s.Components()[0] {
		t.Error("Clone() shares components")
	}
	cp.MoveTo(0)
	cp.Insert("x")
	if s.ToString() == cp.ToString() {
		t.Error("Clone() shares content")
	}
}

func TestSlotFragments(t *testing.T) {
	fx := newFixture(t)
	img := fx.image("a.png")
	s := NewSlot([]ContentType{Text, InlineComponent})
	s.Insert("ab", Format(fx.bold, true))
	s.Insert(img, Format(fx.bold, nil))
	s.Insert("cd", Format(fx.color, "red"))

	frags := s.Fragments()
	if len(frags) != 3 {
		t.Fatalf("len(Fragments()) = %d, want 3: %+v", len(frags), frags)
	}
	if frags[0].Content != "ab" || len(frags[0].Formats) != 1 {
		t.Errorf("frags[0] = %+v", frags[0])
	}
	if frags[1].Content != any(img) || frags[1].Start != 2 || frags[1].End != 3 {
		t.Errorf("frags[1] = %+v", frags[1])
	}
	if frags[2].Content != "cd" || frags[2].Formats[0].Value != "red" {
		t.Errorf("frags[2] = %+v", frags[2])
	}

	s.Marker().Rendered()
	s.Insert("e")
	rendered := 0
	err := s.Render(SlotRendererFunc(func(_ *Slot, f []Fragment) error {
		rendered = len(f)
		return nil
	}))
	if err != nil || rendered != 3 || s.Marker().Dirty() {
		t.Errorf("Render() err=%v fragments=%d dirty=%v", err, rendered, s.Marker().Dirty())
	}
}

func TestSlotMutationsMarkDirty(t *testing.T) {
	s := NewSlot([]ContentType{Text})
	s.Marker().Rendered()
	s.Insert("a")
	if !s.Marker().Dirty() || !s.Marker().Changed() {
		t.Error("Insert() did not mark the slot dirty")
	}
}
