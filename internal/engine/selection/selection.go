package selection

import (
	"slices"

	"github.com/dshills/inkwell/internal/engine/model"
)

// Position is an offset inside a slot.
type Position struct {
	Slot   *model.Slot
	Offset int
}

// IsZero reports whether the position points nowhere.
func (p Position) IsZero() bool {
	return p.Slot == nil
}

// Paths is the serializable form of a selection.
type Paths struct {
	Anchor []int `json:"anchor"`
	Focus  []int `json:"focus"`
}

// IsZero reports whether p holds no positions.
func (p Paths) IsZero() bool {
	return len(p.Anchor) == 0 && len(p.Focus) == 0
}

// Clone returns a deep copy.
func (p Paths) Clone() Paths {
	return Paths{Anchor: slices.Clone(p.Anchor), Focus: slices.Clone(p.Focus)}
}

// Selection is a range over the document rooted at one component.
// It is not safe for concurrent use; the engine serializes access.
type Selection struct {
	root   *model.Component
	anchor Position
	focus  Position
}

// New creates an empty selection over root.
func New(root *model.Component) *Selection {
	return &Selection{root: root}
}

// Root returns the document root.
func (s *Selection) Root() *model.Component {
	return s.root
}

// SetRoot switches to a new document and clears the selection.
func (s *Selection) SetRoot(root *model.Component) {
	s.root = root
	s.Unselect()
}

// Anchor returns the anchor position.
func (s *Selection) Anchor() Position { return s.anchor }

// Focus returns the focus position.
func (s *Selection) Focus() Position { return s.focus }

// IsSelected reports whether both ends are set.
func (s *Selection) IsSelected() bool {
	return !s.anchor.IsZero() && !s.focus.IsZero()
}

// IsCollapsed reports whether the selection is a caret.
func (s *Selection) IsCollapsed() bool {
	return s.IsSelected() && s.anchor == s.focus
}

// Unselect clears both ends.
func (s *Selection) Unselect() {
	s.anchor = Position{}
	s.focus = Position{}
}

// SetBaseAndExtent sets both ends. Offsets are clamped to the slots and
// moved out of surrogate pairs. It
// returns false, leaving the selection unchanged, when either slot is not
// part of the document.
func (s *Selection) SetBaseAndExtent(anchorSlot *model.Slot, anchorOffset int, focusSlot *model.Slot, focusOffset int) bool {
	a, ok := s.position(anchorSlot, anchorOffset)
	if !ok {
		return false
	}
	f, ok := s.position(focusSlot, focusOffset)
	if !ok {
		return false
	}
	s.anchor, s.focus = a, f
	return true
}

// SetPosition collapses the selection to offset in slot.
func (s *Selection) SetPosition(slot *model.Slot, offset int) bool {
	return s.SetBaseAndExtent(slot, offset, slot, offset)
}

// SetFocus moves the focus, keeping the anchor.
func (s *Selection) SetFocus(slot *model.Slot, offset int) bool {
	if s.anchor.IsZero() {
		return s.SetPosition(slot, offset)
	}
	f, ok := s.position(slot, offset)
	if !ok {
		return false
	}
	s.focus = f
	return true
}

// SelectSlot selects the whole content of slot.
func (s *Selection) SelectSlot(slot *model.Slot) bool {
	return s.SetBaseAndExtent(slot, 0, slot, maxOffset(slot))
}

// SelectAll selects from the start of the root's first slot to the end of
// its last.
func (s *Selection) SelectAll() bool {
	if s.root == nil || s.root.SlotCount() == 0 {
		return false
	}
	last := s.root.SlotAt(s.root.SlotCount() - 1)
	return s.SetBaseAndExtent(s.root.SlotAt(0), 0, last, maxOffset(last))
}

// Collapse collapses the selection onto its start, or its end when toEnd
// is true.
func (s *Selection) Collapse(toEnd bool) {
	if !s.IsSelected() {
		return
	}
	p := s.Start()
	if toEnd {
		p = s.End()
	}
	s.anchor, s.focus = p, p
}

// Start returns the end that comes first in document order.
func (s *Selection) Start() Position {
	if s.Compare(s.anchor, s.focus) <= 0 {
		return s.anchor
	}
	return s.focus
}

// End returns the end that comes last in document order.
func (s *Selection) End() Position {
	if s.Compare(s.anchor, s.focus) <= 0 {
		return s.focus
	}
	return s.anchor
}

// IsBackward reports whether the focus precedes the anchor.
func (s *Selection) IsBackward() bool {
	return s.Compare(s.anchor, s.focus) > 0
}

// Compare orders two positions in the document. Positions outside the
// document sort last.
func (s *Selection) Compare(a, b Position) int {
	pa, okA := s.pathOf(a)
	pb, okB := s.pathOf(b)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	return slices.Compare(pa, pb)
}

// CommonAncestorSlot returns the deepest slot containing both ends.
func (s *Selection) CommonAncestorSlot() *model.Slot {
	if !s.IsSelected() {
		return nil
	}
	pa, okA := model.SlotPath(s.root, s.anchor.Slot)
	pb, okB := model.SlotPath(s.root, s.focus.Slot)
	if !okA || !okB {
		return nil
	}
	n := 0
	for n < len(pa) && n < len(pb) && pa[n] == pb[n] {
		n++
	}
	if n%2 == 0 {
		n--
	}
	if n < 1 {
		return nil
	}
	slot, _ := model.SlotAt(s.root, pa[:n])
	return slot
}

// CommonAncestorComponent returns the component owning the common
// ancestor slot.
func (s *Selection) CommonAncestorComponent() *model.Component {
	if slot := s.CommonAncestorSlot(); slot != nil {
		return slot.Parent()
	}
	return nil
}

// Paths returns the serializable form of the selection. An empty
// selection yields zero Paths.
func (s *Selection) Paths() Paths {
	a, okA := s.pathOf(s.anchor)
	f, okB := s.pathOf(s.focus)
	if !okA || !okB {
		return Paths{}
	}
	return Paths{Anchor: a, Focus: f}
}

// Restore resolves p against the document. When a path no longer
// resolves the selection collapses to the start of the document and
// Restore returns false.
func (s *Selection) Restore(p Paths) bool {
	a, okA := s.resolve(p.Anchor)
	f, okB := s.resolve(p.Focus)
	if okA && okB {
		s.anchor, s.focus = a, f
		return true
	}
	s.ToStart()
	return false
}

// Validate clamps both ends to their slots. When an end has left the
// document the selection collapses to the start of the document and
// Validate returns false.
func (s *Selection) Validate() bool {
	if !s.IsSelected() {
		return true
	}
	a, okA := s.position(s.anchor.Slot, s.anchor.Offset)
	f, okB := s.position(s.focus.Slot, s.focus.Offset)
	if okA && okB {
		s.anchor, s.focus = a, f
		return true
	}
	s.ToStart()
	return false
}

// ToStart collapses the selection to the start of the document.
func (s *Selection) ToStart() {
	if s.root == nil || s.root.SlotCount() == 0 {
		s.Unselect()
		return
	}
	s.anchor = Position{Slot: s.root.SlotAt(0)}
	s.focus = s.anchor
}

// ToEnd collapses the selection to the end of the document.
func (s *Selection) ToEnd() {
	if s.root == nil || s.root.SlotCount() == 0 {
		s.Unselect()
		return
	}
	last := s.root.SlotAt(s.root.SlotCount() - 1)
	s.anchor = Position{Slot: last, Offset: maxOffset(last)}
	s.focus = s.anchor
}

func (s *Selection) position(slot *model.Slot, offset int) (Position, bool) {
	if slot == nil || s.root == nil {
		return Position{}, false
	}
	if _, ok := model.SlotPath(s.root, slot); !ok {
		return Position{}, false
	}
	return Position{Slot: slot, Offset: slot.Boundary(min(offset, maxOffset(slot)))}, true
}

func (s *Selection) pathOf(p Position) ([]int, bool) {
	if p.IsZero() || s.root == nil {
		return nil, false
	}
	path, ok := model.SlotPath(s.root, p.Slot)
	if !ok {
		return nil, false
	}
	return append(path, p.Offset), true
}

func (s *Selection) resolve(path []int) (Position, bool) {
	if len(path) < 2 || s.root == nil {
		return Position{}, false
	}
	slot, ok := model.SlotAt(s.root, path[:len(path)-1])
	if !ok {
		return Position{}, false
	}
	return s.position(slot, path[len(path)-1])
}

// maxOffset is the last caret offset in slot. An empty slot only has
// offset 0 in front of its placeholder.
func maxOffset(slot *model.Slot) int {
	if slot.IsEmpty() {
		return 0
	}
	return slot.Length()
}
