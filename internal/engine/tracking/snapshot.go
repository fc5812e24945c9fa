package tracking

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/inkwell/internal/engine/literal"
)

// ErrSnapshotNotFound is returned when no snapshot has the requested name.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotID uniquely identifies a snapshot.
type SnapshotID string

// Snapshot is a copy of the document taken at a revision.
type Snapshot struct {
	ID       SnapshotID
	Name     string
	Revision Revision
	Created  time.Time

	doc literal.Component
}

// Literal returns a copy of the saved document.
func (s *Snapshot) Literal() literal.Component {
	return s.doc.Clone()
}

// snapshotStore keeps snapshots in creation order. Names are unique:
// saving under a taken name drops the older snapshot. Unnamed snapshots
// can only be reached through list.
type snapshotStore struct {
	mu    sync.RWMutex
	items []*Snapshot
}

func (st *snapshotStore) save(name string, lit literal.Component, rev Revision) *Snapshot {
	snap := &Snapshot{
		ID:       SnapshotID(uuid.NewString()),
		Name:     name,
		Revision: rev,
		Created:  time.Now(),
		doc:      lit.Clone(),
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if name != "" {
		st.items = slices.DeleteFunc(st.items, func(s *Snapshot) bool { return s.Name == name })
	}
	st.items = append(st.items, snap)
	return snap
}

func (st *snapshotStore) byName(name string) (*Snapshot, bool) {
	if name == "" {
		return nil, false
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	i := slices.IndexFunc(st.items, func(s *Snapshot) bool { return s.Name == name })
	if i < 0 {
		return nil, false
	}
	return st.items[i], true
}

func (st *snapshotStore) remove(name string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.items = slices.DeleteFunc(st.items, func(s *Snapshot) bool { return s.Name == name })
}

func (st *snapshotStore) list() []*Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return slices.Clone(st.items)
}

func (st *snapshotStore) reset() {
	st.mu.Lock()
	st.items = nil
	st.mu.Unlock()
}
