// Package easel is the document core of a 2D canvas editor: a scene graph
// of nested entities with parent-relative and canvas-absolute coordinates,
// versioned by a branching, multi-timeline history engine.
//
// Easel provides the entity model, transform propagation, reparenting with
// world-position preservation, full application-state snapshots, undo/redo
// with branch-on-divergence, history collapse with archival, and a single
// JSON payload for persistence. Rendering, input, and file pickers are
// collaborators: they drive the mutator surface and observe changes
// through the registered listeners.
//
// # Quick start
//
// A [Document] wires a [State] to its [History]:
//
//	doc := easel.NewDocument()
//	box := doc.State.Create(100, 50, "box")
//	doc.History.AddState("create box")
//
//	doc.State.MoveTo(box.ID, 160, 90)
//	doc.History.AddState("move box")
//
//	doc.History.Undo() // box is back at (100, 50)
//
// Mutations are never checkpointed implicitly: call [History.AddState]
// after any mutation you want on the timeline. A capture that equals the
// node under the pointer is suppressed, so redundant calls are harmless.
//
// # Scene graph
//
// Every visual object is an [Entity], keyed by id in a [State]. The parent
// link is a weak reference by id; a dangling or empty parent makes the
// entity a root. An entity's world position is always the sum of local
// transforms along its path to a root, recomputed by a full propagation
// pass after every structural change:
//
//	a := doc.State.Create(100, 50, "box") // root
//	b := doc.State.Create(0, 0, "box")
//	doc.State.Reparent(b.ID, a.ID)        // b keeps its world position
//	doc.State.MoveTo(a.ID, 200, 50)       // b follows
//
// # Branching history
//
// Undoing and then performing a new action does not discard the redo
// future: the shared prefix is copied into a new branch and both timelines
// stay navigable via [History.JumpToState]. [History.Collapse] compacts
// the grid back to a single branch, archiving the full structure first.
//
// # Beyond the core
//
// [ExportPNG] rasterizes a scene (via [gg]), [Config] loads user settings,
// and cmd/easel inspects and transforms saved documents. The examples
// directory holds an interactive [Ebitengine] editor and a terminal
// timeline browser.
//
// [Ebitengine]: https://ebitengine.org
// [gg]: https://github.com/fogleman/gg
package easel
