// Package experiment implements the interaction session of the AR invisibility
// experiment: a small state machine that places a variant's objects at a
// tracked anchor, walks a scripted sequence of material stages driven by
// Yes/No/Next signals, and counts taps on objects that are still selectable.
//
// The package is host-agnostic. Rendering, anchor creation and the UI are
// reached through the Renderer, Surface and Anchorer interfaces, and ray/object
// intersection is always performed by the renderer, which hands the session a
// ranked list of candidate ids.
//
// A Session is not safe for concurrent use. It is meant to be owned by a single
// event-dispatch loop (a WebSocket read loop, a bubbletea Update, a scripted
// runner), which is also how the browser pages deliver events: one callback at
// a time.
package experiment
