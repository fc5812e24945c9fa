package operation

import (
	"encoding/json"
	"testing"

	"github.com/dshills/inkwell/internal/engine/literal"
)

func TestWithPrefix(t *testing.T) {
	op := New([]Action{Retain(2), Insert("a", nil)}, []Action{Retain(2), Delete(1)})
	nested := op.WithPrefix(3).WithPrefix(0)

	want := Path{0, 3}
	if !nested.Path.Equal(want) {
		t.Errorf("Path = %v, want %v", nested.Path, want)
	}
	if len(op.Path) != 0 {
		t.Errorf("original Path = %v, want empty", op.Path)
	}
	if nested.ID != op.ID {
		t.Error("WithPrefix() changed ID")
	}
}

func TestInvert(t *testing.T) {
	op := New([]Action{Delete(3)}, []Action{Insert("abc", nil)})
	inv := op.Invert()
	if inv.Apply[0].Type != ActionInsert || inv.UnApply[0].Type != ActionDelete {
		t.Errorf("Invert() = %+v", inv)
	}
	if inv.ID == op.ID {
		t.Error("Invert() kept ID")
	}
}

func TestListInvert(t *testing.T) {
	a := New([]Action{Insert("a", nil)}, []Action{Delete(1)})
	b := New([]Action{Retain(1), Insert("b", nil)}, []Action{Retain(1), Delete(1)})
	inv := List{a, b}.Invert()
	if len(inv) != 2 {
		t.Fatalf("len = %d, want 2", len(inv))
	}
	if inv[0].Apply[0].Type != ActionRetain || inv[1].Apply[0].Type != ActionDelete {
		t.Errorf("Invert() order wrong: %+v", inv)
	}
}

func TestPathString(t *testing.T) {
	tests := []struct {
		path Path
		want string
	}{
		{Path{}, "/"},
		{Path{0}, "/0"},
		{Path{0, 2, StateStep, "items", 1}, "/0/2/state/items/1"},
	}
	for _, tt := range tests {
		if got := tt.path.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	comp := literal.Component{Name: "image", State: map[string]any{"src": "x.png"}, Slots: []literal.Slot{}}
	op := New(
		[]Action{
			Retain(1),
			Insert("hi", map[string]any{"bold": true}),
			Insert(comp, nil),
			RetainFormats(2, map[string]any{"bold": nil}),
			{Type: ActionAttrSet, Name: "textAlign", Value: false},
			{Type: ActionInsertSlot, Content: literal.Slot{Schema: []literal.ContentType{literal.Text}, Content: literal.Content{"\n"}}},
		},
		[]Action{Retain(1), Delete(3)},
	)
	op.Path = Path{0, 4, StateStep, "rows"}

	data, err := op.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !got.Path.Equal(op.Path) {
		t.Errorf("Path = %v, want %v", got.Path, op.Path)
	}
	if s, ok := got.Apply[1].Content.(string); !ok || s != "hi" {
		t.Errorf("Apply[1].Content = %#v, want \"hi\"", got.Apply[1].Content)
	}
	if c, ok := got.Apply[2].Content.(literal.Component); !ok || c.Name != "image" {
		t.Errorf("Apply[2].Content = %#v, want image component", got.Apply[2].Content)
	}
	if v, ok := got.Apply[3].Formats["bold"]; !ok || v != nil {
		t.Errorf("Apply[3].Formats = %#v, want bold: nil", got.Apply[3].Formats)
	}
	if got.Apply[4].Value != false {
		t.Errorf("Apply[4].Value = %#v, want false", got.Apply[4].Value)
	}
	if s, ok := got.Apply[5].Content.(literal.Slot); !ok || len(s.Content) != 1 {
		t.Errorf("Apply[5].Content = %#v, want slot literal", got.Apply[5].Content)
	}

	again, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(again) != string(data) {
		t.Errorf("re-encoded JSON differs:\n%s\n%s", again, data)
	}
}
