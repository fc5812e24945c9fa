package selection

import (
	"encoding/json"
	"testing"

	"github.com/dshills/inkwell/internal/engine/model"
)

type doc struct {
	root       *model.Component
	para       *model.Component
	s0, p0, p1 *model.Slot
}

// newDoc builds "ab" + paragraph("cd", "ef") + "gh" in a single root slot.
func newDoc() *doc {
	text := []model.ContentType{model.Text}
	d := &doc{
		s0: model.NewSlot([]model.ContentType{model.Text, model.BlockComponent}),
		p0: model.NewSlot(text),
		p1: model.NewSlot(text),
	}
	d.root = model.NewComponent(&model.Definition{Name: "root", Type: model.BlockComponent}, nil, d.s0)
	d.p0.Insert("cd")
	d.p1.Insert("ef")
	d.para = model.NewComponent(&model.Definition{Name: "paragraph", Type: model.BlockComponent}, nil, d.p0, d.p1)
	d.s0.Insert("ab")
	d.s0.Insert(d.para)
	d.s0.Insert("gh")
	return d
}

func TestPaths(t *testing.T) {
	d := newDoc()
	sel := New(d.root)
	if !sel.SetBaseAndExtent(d.p1, 1, d.s0, 4) {
		t.Fatal("SetBaseAndExtent() = false")
	}

	data, err := json.Marshal(sel.Paths())
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"anchor":[0,2,1,1],"focus":[0,4]}`; got != want {
		t.Errorf("Paths() = %s, want %s", got, want)
	}

	var p Paths
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatal(err)
	}
	other := New(d.root)
	if !other.Restore(p) {
		t.Fatal("Restore() = false")
	}
	if other.Anchor() != (Position{Slot: d.p1, Offset: 1}) || other.Focus() != (Position{Slot: d.s0, Offset: 4}) {
		t.Errorf("Restore() anchor = %+v focus = %+v", other.Anchor(), other.Focus())
	}

	if other.Restore(Paths{Anchor: []int{3, 0}, Focus: []int{0, 1}}) {
		t.Error("Restore() with a dangling path = true")
	}
	if !other.IsCollapsed() || other.Focus() != (Position{Slot: d.s0}) {
		t.Errorf("selection after failed Restore = %+v", other.Focus())
	}
}

func TestCompare(t *testing.T) {
	d := newDoc()
	sel := New(d.root)
	tests := []struct {
		name string
		a, b Position
		want int
	}{
		{"same", Position{d.s0, 1}, Position{d.s0, 1}, 0},
		{"offsets", Position{d.s0, 1}, Position{d.s0, 4}, -1},
		{"before component", Position{d.s0, 2}, Position{d.p0, 0}, -1},
		{"after component", Position{d.s0, 3}, Position{d.p1, 2}, 1},
		{"sibling slots", Position{d.p1, 0}, Position{d.p0, 2}, 1},
		{"detached sorts last", Position{model.NewSlot(nil), 0}, Position{d.s0, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sel.Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCommonAncestor(t *testing.T) {
	d := newDoc()
	sel := New(d.root)

	sel.SetBaseAndExtent(d.p0, 0, d.p1, 1)
	if got := sel.CommonAncestorSlot(); got != d.s0 {
		t.Errorf("CommonAncestorSlot() = %p, want s0", got)
	}
	if got := sel.CommonAncestorComponent(); got != d.root {
		t.Errorf("CommonAncestorComponent() = %p, want root", got)
	}

	sel.SetBaseAndExtent(d.p0, 0, d.p0, 2)
	if got := sel.CommonAncestorSlot(); got != d.p0 {
		t.Errorf("CommonAncestorSlot() = %p, want p0", got)
	}
}

func TestSelectedScopes(t *testing.T) {
	d := newDoc()
	tests := []struct {
		name   string
		anchor Position
		focus  Position
		want   []Scope
	}{
		{
			name:   "single slot",
			anchor: Position{d.s0, 1}, focus: Position{d.s0, 4},
			want: []Scope{{d.s0, 1, 4}},
		},
		{
			name:   "out of nested slot",
			anchor: Position{d.p0, 1}, focus: Position{d.s0, 4},
			want: []Scope{{d.p0, 1, 2}, {d.p1, 0, 2}, {d.s0, 3, 4}},
		},
		{
			name:   "backward into nested slot",
			anchor: Position{d.p1, 1}, focus: Position{d.s0, 1},
			want: []Scope{{d.s0, 1, 2}, {d.p0, 0, 2}, {d.p1, 0, 1}},
		},
		{
			name:   "adjacent component is not entered",
			anchor: Position{d.s0, 0}, focus: Position{d.p0, 0},
			want: []Scope{{d.s0, 0, 2}},
		},
		{
			name:   "start at end of nested content",
			anchor: Position{d.p1, 2}, focus: Position{d.s0, 5},
			want: []Scope{{d.s0, 3, 5}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := New(d.root)
			if !sel.SetBaseAndExtent(tt.anchor.Slot, tt.anchor.Offset, tt.focus.Slot, tt.focus.Offset) {
				t.Fatal("SetBaseAndExtent() = false")
			}
			got := sel.SelectedScopes()
			if len(got) != len(tt.want) {
				t.Fatalf("SelectedScopes() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("scope %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}

	sel := New(d.root)
	sel.SetPosition(d.s0, 2)
	if got := sel.SelectedScopes(); len(got) != 0 {
		t.Errorf("SelectedScopes() of a caret = %+v, want none", got)
	}
}

func TestDeepScopes(t *testing.T) {
	d := newDoc()
	sel := New(d.root)
	sel.SetBaseAndExtent(d.s0, 1, d.s0, 4)

	want := []Scope{{d.s0, 1, 4}, {d.p0, 0, 2}, {d.p1, 0, 2}}
	got := sel.DeepScopes()
	if len(got) != len(want) {
		t.Fatalf("DeepScopes() = %+v, want %+v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("scope %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestGraphemeMoves(t *testing.T) {
	s := model.NewSlot([]model.ContentType{model.Text})
	root := model.NewComponent(&model.Definition{Name: "root", Type: model.BlockComponent}, nil, s)
	s.Insert("e\u0301x\U0001F44D")

	sel := New(root)
	sel.SetPosition(s, 0)
	for _, want := range []int{2, 3, 5} {
		if !sel.ToNext() {
			t.Fatalf("ToNext() = false before offset %d", want)
		}
		if got := sel.Focus().Offset; got != want {
			t.Errorf("ToNext() offset = %d, want %d", got, want)
		}
	}
	if sel.ToNext() {
		t.Error("ToNext() at the end of the document = true")
	}
	for _, want := range []int{3, 2, 0} {
		sel.ToPrevious()
		if got := sel.Focus().Offset; got != want {
			t.Errorf("ToPrevious() offset = %d, want %d", got, want)
		}
	}
}

func TestMovesAcrossSlots(t *testing.T) {
	d := newDoc()
	sel := New(d.root)
	tests := []struct {
		name    string
		from    Position
		forward bool
		want    Position
	}{
		{"over component", Position{d.s0, 2}, true, Position{d.s0, 3}},
		{"next sibling slot", Position{d.p0, 2}, true, Position{d.p1, 0}},
		{"out of component", Position{d.p1, 2}, true, Position{d.s0, 3}},
		{"previous sibling slot", Position{d.p1, 0}, false, Position{d.p0, 2}},
		{"before component", Position{d.p0, 0}, false, Position{d.s0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel.SetPosition(tt.from.Slot, tt.from.Offset)
			if tt.forward {
				sel.ToNext()
			} else {
				sel.ToPrevious()
			}
			if got := sel.Focus(); got != tt.want {
				t.Errorf("focus = %+v, want %+v", got, tt.want)
			}
		})
	}

	sel.SetBaseAndExtent(d.s0, 1, d.s0, 4)
	sel.ToPrevious()
	if !sel.IsCollapsed() || sel.Focus().Offset != 1 {
		t.Errorf("ToPrevious() on a range = %+v, want collapsed at 1", sel.Focus())
	}
}

func TestValidate(t *testing.T) {
	d := newDoc()
	sel := New(d.root)
	sel.SetPosition(d.p0, 1)
	if !sel.Validate() {
		t.Error("Validate() = false for a live slot")
	}

	d.s0.RemoveComponent(d.para)
	if sel.Validate() {
		t.Error("Validate() = true after the slot left the document")
	}
	if sel.Focus() != (Position{Slot: d.s0}) {
		t.Errorf("focus = %+v, want start of document", sel.Focus())
	}

	empty := model.NewSlot([]model.ContentType{model.Text})
	d.root.AppendSlot(empty)
	sel.SetPosition(empty, 5)
	if got := sel.Focus().Offset; got != 0 {
		t.Errorf("offset in empty slot = %d, want 0", got)
	}
	sel.SelectAll()
	if sel.Start() != (Position{Slot: d.s0}) || sel.End() != (Position{Slot: empty}) {
		t.Errorf("SelectAll() = %+v..%+v", sel.Start(), sel.End())
	}
}
