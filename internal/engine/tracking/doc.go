// Package tracking keeps a bounded log of the operations applied to a
// document, numbered by revision, plus named snapshots of the document.
//
// The log answers "what happened since revision X?", which is how a
// collaboration peer that fell behind catches up:
//
//	tracker := tracking.NewTracker()
//	rev := tracker.Record(op, "local")
//
//	records, err := tracker.Since(peerRevision)
//	if errors.Is(err, tracking.ErrRevisionTrimmed) {
//	    // send a full snapshot instead
//	}
//
// # Snapshots
//
// Snapshots store a root literal under a name together with the revision
// it was taken at:
//
//	tracker.CreateSnapshot("before-script", root.Literal())
//	set, err := tracker.ChangesSinceSnapshot("before-script")
//	fmt.Println(set.Summary())
//
// # Thread Safety
//
// All Tracker operations are thread-safe through internal locking.
// Snapshots are immutable once created.
package tracking
