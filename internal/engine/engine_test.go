package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dshills/inkwell/internal/engine/builtin"
	"github.com/dshills/inkwell/internal/engine/model"
	"github.com/dshills/inkwell/internal/engine/operation"
	"github.com/dshills/inkwell/internal/engine/selection"
	"github.com/dshills/inkwell/internal/event"
	"github.com/dshills/inkwell/internal/event/events"
	"github.com/dshills/inkwell/internal/event/topic"
)

// paragraph returns the text slot of the i-th block.
func paragraph(root *model.Component, i int) *model.Slot {
	return root.SlotAt(0).Components()[i].SlotAt(0)
}

// selectRange sets the selection between two paragraph offsets.
func selectRange(t *testing.T, e *Engine, p1, o1, p2, o2 int) {
	t.Helper()
	err := e.Update(func(root *model.Component, sel *selection.Selection) error {
		if !sel.SetBaseAndExtent(paragraph(root, p1), o1, paragraph(root, p2), o2) {
			t.Fatal("SetBaseAndExtent() failed")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestNew(t *testing.T) {
	e := New()
	defer e.Close()

	if got := e.Text(); got != "\n" {
		t.Errorf("Text() = %q, want %q", got, "\n")
	}
	sel := e.Selection()
	if want := []int{0, 0, 0, 0}; !samePaths(sel, Paths{Anchor: want, Focus: want}) {
		t.Errorf("Selection() = %v, want caret at %v", sel, want)
	}
	if e.CanUndo() || e.CanRedo() {
		t.Error("new engine should have nothing to undo or redo")
	}
}

func TestInsertUndoRedo(t *testing.T) {
	e := New()
	defer e.Close()

	if err := e.InsertText("Hello"); err != nil {
		t.Fatalf("InsertText() error = %v", err)
	}
	if err := e.InsertText(" world", model.Format(builtin.Bold, true)); err != nil {
		t.Fatal(err)
	}
	if got := e.Text(); got != "Hello world\n" {
		t.Errorf("Text() = %q", got)
	}

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if got := e.Text(); got != "Hello\n" {
		t.Errorf("after Undo Text() = %q, want %q", got, "Hello\n")
	}
	if got := e.Selection().Focus; got[len(got)-1] != 5 {
		t.Errorf("after Undo focus = %v, want offset 5", got)
	}
	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo() error = %v, want ErrNothingToUndo", err)
	}
	if got := e.Text(); got != "\n" {
		t.Errorf("Text() = %q, want empty paragraph", got)
	}

	if err := e.Redo(); err != nil {
		t.Fatal(err)
	}
	if err := e.Redo(); err != nil {
		t.Fatal(err)
	}
	if err := e.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo() error = %v, want ErrNothingToRedo", err)
	}
	if got := e.Text(); got != "Hello world\n" {
		t.Errorf("after Redo Text() = %q", got)
	}
	e.View(func(root *model.Component, _ *selection.Selection) {
		ranges := paragraph(root, 0).FormatRanges(builtin.Bold)
		if len(ranges) != 1 || ranges[0].StartIndex != 5 || ranges[0].EndIndex != 11 {
			t.Errorf("bold ranges = %v, want [5,11)", ranges)
		}
	})
	if undo, redo := e.History(); len(undo) != 2 || len(redo) != 0 {
		t.Errorf("History() = %d undo, %d redo", len(undo), len(redo))
	}
}

func TestEvents(t *testing.T) {
	e := New()
	defer e.Close()

	var mu sync.Mutex
	var topics []topic.Topic
	var origins []string
	_, err := e.Bus().SubscribeFunc("document.**", func(_ context.Context, ev any) error {
		tp := ev.(event.TopicProvider).EventTopic()
		// Handlers run after the lock is released.
		_ = e.Text()
		mu.Lock()
		defer mu.Unlock()
		topics = append(topics, tp)
		if p, ok := event.PayloadOf[events.OperationApplied](ev); ok {
			origins = append(origins, p.Origin)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := e.InsertText("a"); err != nil {
		t.Fatal(err)
	}
	want := []topic.Topic{events.TopicOperation, events.TopicHistoryRecorded, events.TopicSelectionChanged}
	if len(topics) != len(want) {
		t.Fatalf("topics = %v, want %v", topics, want)
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Errorf("topic %d = %q, want %q", i, topics[i], want[i])
		}
	}

	topics = nil
	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if len(topics) == 0 || topics[len(topics)-2] != events.TopicHistoryBack {
		t.Errorf("undo topics = %v", topics)
	}
	if got := origins[len(origins)-1]; got != events.OriginUndo {
		t.Errorf("undo origin = %q, want %q", got, events.OriginUndo)
	}
	if e.Revision() != 2 {
		t.Errorf("Revision() = %d, want 2", e.Revision())
	}
}

func TestUpdateRollback(t *testing.T) {
	e := New()
	defer e.Close()

	boom := errors.New("boom")
	err := e.Update(func(root *model.Component, sel *selection.Selection) error {
		s := paragraph(root, 0)
		s.Insert("draft")
		sel.SetPosition(s, 5)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want boom", err)
	}
	if got := e.Text(); got != "\n" {
		t.Errorf("Text() = %q, want rollback to empty", got)
	}
	if e.CanUndo() {
		t.Error("failed update should not be undoable")
	}
	records, err := e.ChangesSince(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[1].Origin != events.OriginRollback {
		t.Errorf("log = %+v, want insert then rollback", records)
	}
}

func TestFormatAndAttributes(t *testing.T) {
	e := New()
	defer e.Close()
	if err := e.LoadText("hello world\nsecond"); err != nil {
		t.Fatal(err)
	}
	selectRange(t, e, 0, 0, 0, 5)
	if err := e.ApplyFormat(builtin.Bold, true); err != nil {
		t.Fatal(err)
	}
	if err := e.ApplyFormat(builtin.Heading, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.SetAttribute(builtin.TextAlign, "center"); err != nil {
		t.Fatal(err)
	}

	e.View(func(root *model.Component, _ *selection.Selection) {
		p := paragraph(root, 0)
		bold := p.FormatRanges(builtin.Bold)
		if len(bold) != 1 || bold[0].StartIndex != 0 || bold[0].EndIndex != 5 {
			t.Errorf("bold = %v, want [0,5)", bold)
		}
		heading := p.FormatRanges(builtin.Heading)
		if len(heading) != 1 || heading[0].EndIndex != p.Length() {
			t.Errorf("heading = %v, want whole slot", heading)
		}
		if v, ok := p.Attribute(builtin.TextAlign); !ok || v != "center" {
			t.Errorf("textAlign = %v, %v", v, ok)
		}
		if len(paragraph(root, 1).FormatRanges(builtin.Bold)) != 0 {
			t.Error("second paragraph should not be bold")
		}
	})

	if err := e.ClearFormats(); err != nil {
		t.Fatal(err)
	}
	e.View(func(root *model.Component, _ *selection.Selection) {
		if got := paragraph(root, 0).FormatRanges(builtin.Bold); len(got) != 0 {
			t.Errorf("bold after ClearFormats = %v", got)
		}
	})
}

func TestDeleteSelection(t *testing.T) {
	e := New()
	defer e.Close()
	if err := e.LoadText("ab\ncd"); err != nil {
		t.Fatal(err)
	}
	selectRange(t, e, 0, 1, 1, 1)
	if err := e.DeleteSelection(); err != nil {
		t.Fatal(err)
	}
	if got := e.Text(); got != "a\nd\n" {
		t.Errorf("Text() = %q, want %q", got, "a\nd\n")
	}
	if got := e.Selection(); !samePaths(got, Paths{Anchor: []int{0, 0, 0, 1}, Focus: []int{0, 0, 0, 1}}) {
		t.Errorf("Selection() = %v", got)
	}
	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := e.Text(); got != "ab\ncd\n" {
		t.Errorf("after Undo Text() = %q", got)
	}
}

func TestDeleteSteps(t *testing.T) {
	e := New()
	defer e.Close()
	if err := e.InsertText("ab"); err != nil {
		t.Fatal(err)
	}
	if err := e.DeleteBackward(); err != nil {
		t.Fatal(err)
	}
	if got := e.Text(); got != "a\n" {
		t.Errorf("after DeleteBackward Text() = %q", got)
	}
	if !e.Move(false) {
		t.Fatal("Move(false) failed")
	}
	if err := e.DeleteBackward(); err != nil {
		t.Fatal(err)
	}
	if got := e.Text(); got != "a\n" {
		t.Errorf("DeleteBackward at start changed text to %q", got)
	}
	if err := e.DeleteForward(); err != nil {
		t.Fatal(err)
	}
	if got := e.Text(); got != "\n" {
		t.Errorf("after DeleteForward Text() = %q", got)
	}
}

func TestInsertComponent(t *testing.T) {
	e := New()
	defer e.Close()
	if err := e.InsertText("ab"); err != nil {
		t.Fatal(err)
	}
	if err := e.InsertComponent(builtin.NewImage("a.png", "")); err != nil {
		t.Fatal(err)
	}
	if err := e.InsertComponent(builtin.NewParagraph("x")); !errors.Is(err, ErrRejected) {
		t.Errorf("InsertComponent(block into text) error = %v, want ErrRejected", err)
	}
	e.View(func(root *model.Component, sel *selection.Selection) {
		p := paragraph(root, 0)
		if p.Length() != 3 {
			t.Errorf("Length() = %d, want 3", p.Length())
		}
		if sel.Focus().Offset != 3 {
			t.Errorf("caret = %d, want 3", sel.Focus().Offset)
		}
	})
}

func TestApplyRemote(t *testing.T) {
	local, remote := New(), New()
	defer local.Close()
	defer remote.Close()

	if err := local.InsertText("Hello"); err != nil {
		t.Fatal(err)
	}
	records, err := local.ChangesSince(0)
	if err != nil {
		t.Fatal(err)
	}
	batch := make([]*operation.Operation, len(records))
	for i, r := range records {
		batch[i] = r.Operation
	}
	if err := remote.ApplyRemote(batch); err != nil {
		t.Fatalf("ApplyRemote() error = %v", err)
	}
	if got := remote.Text(); got != "Hello\n" {
		t.Errorf("remote Text() = %q", got)
	}
	if remote.CanUndo() {
		t.Error("remote operations should not be undoable")
	}
	latest, _ := remote.ChangesSince(0)
	if len(latest) != 1 || latest[0].Origin != events.OriginRemote {
		t.Errorf("remote log = %+v", latest)
	}
}

func TestApplyRemoteFailureLeavesDocument(t *testing.T) {
	e := New()
	defer e.Close()

	op := operation.New(
		[]operation.Action{operation.Insert("junk", nil), operation.Retain(999)},
		[]operation.Action{operation.Delete(4)},
	)
	op.Path = operation.Path{0, 0, 0}
	err := e.ApplyRemote([]*operation.Operation{op})
	if !errors.Is(err, model.ErrInvalidAction) {
		t.Fatalf("ApplyRemote() error = %v, want ErrInvalidAction", err)
	}
	if got := e.Text(); got != "\n" {
		t.Errorf("Text() = %q, want %q", got, "\n")
	}
	if e.CanUndo() {
		t.Error("failed remote batch should not be undoable")
	}
	records, err := e.ChangesSince(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("log = %+v, want insert then revert", records)
	}
	for _, r := range records {
		if r.Origin != events.OriginRemote {
			t.Errorf("record origin = %q, want %q", r.Origin, events.OriginRemote)
		}
	}
}

func TestLoadJSONRoundTrip(t *testing.T) {
	e := New()
	defer e.Close()
	if err := e.InsertText("hi", model.Format(builtin.Italic, true)); err != nil {
		t.Fatal(err)
	}
	data, err := e.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}

	other := New()
	defer other.Close()
	if err := other.LoadJSON(data); err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	again, err := other.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != string(data) {
		t.Errorf("round trip = %s, want %s", again, data)
	}
	if other.CanUndo() {
		t.Error("Load should reset history")
	}
	if err := other.LoadJSON([]byte(`{"name":"nope","slots":[]}`)); !errors.Is(err, model.ErrUnknownComponent) {
		t.Errorf("LoadJSON(unknown) error = %v, want ErrUnknownComponent", err)
	}
}

func TestSnapshots(t *testing.T) {
	e := New()
	defer e.Close()
	if err := e.InsertText("one"); err != nil {
		t.Fatal(err)
	}
	if id := e.Snapshot("v1"); id == "" {
		t.Fatal("Snapshot() returned empty id")
	}
	if err := e.InsertText(" two"); err != nil {
		t.Fatal(err)
	}
	if err := e.RestoreSnapshot("v1"); err != nil {
		t.Fatalf("RestoreSnapshot() error = %v", err)
	}
	if got := e.Text(); got != "one\n" {
		t.Errorf("Text() = %q, want %q", got, "one\n")
	}
	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := e.Text(); got != "one two\n" {
		t.Errorf("after Undo Text() = %q", got)
	}
	if err := e.RestoreSnapshot("missing"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("RestoreSnapshot(missing) error = %v", err)
	}
	if len(e.Snapshots()) != 1 {
		t.Errorf("Snapshots() = %d, want 1", len(e.Snapshots()))
	}
}

func TestReadOnly(t *testing.T) {
	e := New(WithReadOnly())
	defer e.Close()
	if err := e.InsertText("x"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("InsertText() error = %v, want ErrReadOnly", err)
	}
	if !e.IsReadOnly() {
		t.Error("IsReadOnly() = false")
	}
}
