package model

import "slices"

// SlotPath returns the index path of s below root: slot and component
// indices alternating, ending with the slot's index in its component.
func SlotPath(root *Component, s *Slot) ([]int, bool) {
	var rev []int
	for cur := s; cur != nil; {
		comp := cur.parent
		if comp == nil {
			return nil, false
		}
		rev = append(rev, comp.IndexOfSlot(cur))
		if comp == root {
			slices.Reverse(rev)
			return rev, true
		}
		if comp.parent == nil {
			return nil, false
		}
		rev = append(rev, comp.parent.IndexOf(comp))
		cur = comp.parent
	}
	return nil, false
}

// ComponentPath returns the index path of c below root. The root itself
// has an empty path.
func ComponentPath(root, c *Component) ([]int, bool) {
	if c == root {
		return []int{}, true
	}
	if c.parent == nil {
		return nil, false
	}
	path, ok := SlotPath(root, c.parent)
	if !ok {
		return nil, false
	}
	return append(path, c.parent.IndexOf(c)), true
}

// SlotAt resolves an index path produced by SlotPath.
func SlotAt(root *Component, path []int) (*Slot, bool) {
	if len(path)%2 == 0 {
		return nil, false
	}
	comp := root
	for i := 0; ; i += 2 {
		s := comp.SlotAt(path[i])
		if s == nil {
			return nil, false
		}
		if i == len(path)-1 {
			return s, true
		}
		child, ok := s.At(path[i+1]).(*Component)
		if !ok {
			return nil, false
		}
		comp = child
	}
}

// Walk calls fn for every slot below c in document order. Returning false
// stops the walk.
func Walk(c *Component, fn func(s *Slot) bool) bool {
	for _, s := range c.slots {
		if !fn(s) {
			return false
		}
		for _, child := range s.Components() {
			if !Walk(child, fn) {
				return false
			}
		}
	}
	return true
}
