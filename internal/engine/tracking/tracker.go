package tracking

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/inkwell/internal/engine/literal"
	"github.com/dshills/inkwell/internal/engine/operation"
)

// DefaultMaxChanges is the default number of records kept.
const DefaultMaxChanges = 10000

// ErrRevisionTrimmed is returned when records after a revision have been
// evicted from the log.
var ErrRevisionTrimmed = errors.New("revision no longer in log")

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithMaxChanges sets the ring buffer capacity. It must only be used with
// NewTracker.
func WithMaxChanges(n int) TrackerOption {
	return func(t *Tracker) {
		if n <= 0 {
			n = DefaultMaxChanges
		}
		t.maxChanges = n
		t.records = make([]Record, n)
	}
}

// Tracker logs operations by revision and keeps named snapshots.
// All operations are thread-safe.
type Tracker struct {
	mu sync.RWMutex

	records    []Record
	head       int // index of the oldest record
	count      int
	maxChanges int
	revision   Revision

	snapshots snapshotStore
}

// NewTracker creates a tracker with default settings.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		maxChanges: DefaultMaxChanges,
		records:    make([]Record, DefaultMaxChanges),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record appends op and returns the new revision.
func (t *Tracker) Record(op *operation.Operation, origin string) Revision {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.revision++
	idx := (t.head + t.count) % t.maxChanges
	if t.count < t.maxChanges {
		t.count++
	} else {
		t.head = (t.head + 1) % t.maxChanges
	}
	t.records[idx] = Record{
		Revision:  t.revision,
		Origin:    origin,
		Operation: op,
		Timestamp: time.Now(),
	}
	return t.revision
}

// Revision returns the latest revision.
func (t *Tracker) Revision() Revision {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.revision
}

// OldestRevision returns the revision of the oldest record still held,
// or 0 when the log is empty.
func (t *Tracker) OldestRevision() Revision {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.count == 0 {
		return 0
	}
	return t.records[t.head].Revision
}

// Count returns the number of records held.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// Since returns the records after rev in chronological order.
func (t *Tracker) Since(rev Revision) ([]Record, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sinceLocked(rev)
}

func (t *Tracker) sinceLocked(rev Revision) ([]Record, error) {
	if rev >= t.revision {
		return nil, nil
	}
	if t.count == 0 || t.records[t.head].Revision > rev+1 {
		return nil, fmt.Errorf("%w: %d", ErrRevisionTrimmed, rev)
	}
	var out []Record
	for i := 0; i < t.count; i++ {
		r := t.records[(t.head+i)%t.maxChanges]
		if r.Revision > rev {
			out = append(out, r)
		}
	}
	return out, nil
}

// Between returns the records with start < revision <= end.
func (t *Tracker) Between(start, end Revision) []Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Record
	for i := 0; i < t.count; i++ {
		r := t.records[(t.head+i)%t.maxChanges]
		if r.Revision > start && r.Revision <= end {
			out = append(out, r)
		}
	}
	return out
}

// Latest returns up to n of the most recent records, oldest first.
func (t *Tracker) Latest(n int) []Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n = min(n, t.count)
	if n <= 0 {
		return nil
	}
	out := make([]Record, n)
	for i := 0; i < n; i++ {
		out[i] = t.records[(t.head+t.count-n+i)%t.maxChanges]
	}
	return out
}

// BuildChangeSet collects the records after rev.
func (t *Tracker) BuildChangeSet(rev Revision) (*ChangeSet, error) {
	records, err := t.Since(rev)
	if err != nil {
		return nil, err
	}
	cs := NewChangeSet(rev)
	for _, r := range records {
		cs.Add(r)
	}
	return cs, nil
}

// CreateSnapshot stores lit under name at the current revision.
func (t *Tracker) CreateSnapshot(name string, lit literal.Component) SnapshotID {
	return t.snapshots.save(name, lit, t.Revision()).ID
}

// GetSnapshotByName retrieves a snapshot by name.
func (t *Tracker) GetSnapshotByName(name string) (*Snapshot, error) {
	snap, ok := t.snapshots.byName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSnapshotNotFound, name)
	}
	return snap, nil
}

// DeleteSnapshot removes a snapshot by name.
func (t *Tracker) DeleteSnapshot(name string) {
	t.snapshots.remove(name)
}

// ListSnapshots returns all snapshots, oldest first.
func (t *Tracker) ListSnapshots() []*Snapshot {
	return t.snapshots.list()
}

// ChangesSinceSnapshot collects the records made after the named snapshot.
func (t *Tracker) ChangesSinceSnapshot(name string) (*ChangeSet, error) {
	snap, err := t.GetSnapshotByName(name)
	if err != nil {
		return nil, err
	}
	return t.BuildChangeSet(snap.Revision)
}

// Clear drops every record and snapshot. The revision counter keeps
// running so old revisions are never reused.
func (t *Tracker) Clear() {
	t.mu.Lock()
	t.records = make([]Record, t.maxChanges)
	t.head = 0
	t.count = 0
	t.mu.Unlock()
	t.snapshots.reset()
}
