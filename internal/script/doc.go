// Package script runs Lua scripts against a document engine.
//
// Scripts execute in a restricted gopher-lua state: only the base, table,
// string, and math libraries are opened, and loaders that reach the file
// system are removed. The engine is exposed as the global table doc:
//
//	doc.insert("Hello", {bold = true})
//	doc.select({0, 0, 0, 0}, {0, 0, 0, 5})
//	doc.format("italic", true)
//	print(doc.text())
//
// Every doc function that edits runs as its own undoable engine update.
package script
