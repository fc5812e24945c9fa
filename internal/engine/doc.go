// Package engine is the facade of the inkwell document core.
//
// An Engine owns one document tree (a root component built from a
// Registry), its Selection, the undo History and the operation log
// (tracking). Every mutation goes through Update, ApplyRemote, Undo or
// Redo, which serialize writers with a single mutex. Operations emitted by
// the root are recorded in the log and published on the event bus after
// the lock is released, so event handlers may call back into the engine.
//
// # Basic Usage
//
//	e := engine.New()
//	_ = e.Update(func(root *model.Component, sel *selection.Selection) error {
//		sel.SetPosition(firstTextSlot(root), 0)
//		return nil
//	})
//	e.InsertText("Hello", model.Format(builtin.Bold, true))
//	e.Undo()
//
// Read access goes through View:
//
//	e.View(func(root *model.Component, _ *selection.Selection) {
//		fmt.Println(root.ToString())
//	})
package engine
