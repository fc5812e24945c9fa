package tracking

import (
	"fmt"
	"strings"

	"github.com/dshills/inkwell/internal/engine/model"
	"github.com/dshills/inkwell/internal/engine/operation"
)

// ChangeSet is a run of consecutive records.
type ChangeSet struct {
	Records []Record

	// StartRevision is the revision before the first record.
	StartRevision Revision

	// EndRevision is the revision after the last record.
	EndRevision Revision
}

// NewChangeSet creates an empty change set starting at rev.
func NewChangeSet(rev Revision) *ChangeSet {
	return &ChangeSet{StartRevision: rev, EndRevision: rev}
}

// Add appends a record.
func (cs *ChangeSet) Add(r Record) {
	cs.Records = append(cs.Records, r)
	cs.EndRevision = r.Revision
}

// Len returns the number of records.
func (cs *ChangeSet) Len() int {
	return len(cs.Records)
}

// IsEmpty reports whether the set has no records.
func (cs *ChangeSet) IsEmpty() bool {
	return len(cs.Records) == 0
}

// Operations returns the operations in application order.
func (cs *ChangeSet) Operations() []*operation.Operation {
	out := make([]*operation.Operation, len(cs.Records))
	for i, r := range cs.Records {
		out[i] = r.Operation
	}
	return out
}

// Stats counts what the records did to the document.
type Stats struct {
	Inserts       int
	InsertedUnits int
	Deletes       int
	DeletedUnits  int
	Formats       int
	Attributes    int
	State         int
	Slots         int
}

// Stats tallies the actions of every record.
func (cs *ChangeSet) Stats() Stats {
	var st Stats
	for _, r := range cs.Records {
		for _, a := range r.Operation.Apply {
			switch a.Type {
			case operation.ActionInsert:
				st.Inserts++
				if text, ok := a.Content.(string); ok {
					st.InsertedUnits += model.TextLen(text)
				} else {
					st.InsertedUnits++
				}
			case operation.ActionDelete:
				st.Deletes++
				st.DeletedUnits += a.Count
			case operation.ActionRetain:
				if len(a.Formats) > 0 {
					st.Formats++
				}
			case operation.ActionAttrSet, operation.ActionAttrDelete:
				st.Attributes++
			case operation.ActionPropSet, operation.ActionPropDelete, operation.ActionInsertValue:
				st.State++
			case operation.ActionInsertSlot:
				st.Slots++
			}
		}
	}
	return st
}

// Summary returns a human-readable summary of the changes.
func (cs *ChangeSet) Summary() string {
	if cs.IsEmpty() {
		return "no changes"
	}
	st := cs.Stats()
	var parts []string
	if st.Inserts > 0 {
		parts = append(parts, fmt.Sprintf("%d inserts (+%d units)", st.Inserts, st.InsertedUnits))
	}
	if st.Deletes > 0 {
		parts = append(parts, fmt.Sprintf("%d deletes (-%d units)", st.Deletes, st.DeletedUnits))
	}
	if st.Formats > 0 {
		parts = append(parts, fmt.Sprintf("%d format changes", st.Formats))
	}
	if st.Attributes > 0 {
		parts = append(parts, fmt.Sprintf("%d attribute changes", st.Attributes))
	}
	if st.State > 0 {
		parts = append(parts, fmt.Sprintf("%d state changes", st.State))
	}
	if st.Slots > 0 {
		parts = append(parts, fmt.Sprintf("%d slot inserts", st.Slots))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d operations", cs.Len())
	}
	return strings.Join(parts, ", ")
}
