// Package collab exchanges document operations between engines.
//
// A Translator turns batches of operations into wire updates and back.
// A Session binds one engine to a Transport: local operations are
// batched, encoded, and sent, while updates received from peers are
// decoded and applied through Engine.ApplyRemote so they never enter
// the local undo history.
//
// Conflict resolution is out of scope. Peers are expected to be
// serialized by the relay, and an update that no longer applies is
// logged and dropped.
package collab
