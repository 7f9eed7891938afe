// Package grid is the inline-edit reconciliation engine behind the entries
// table. A Store holds the page currently on screen; an Editor tracks the one
// cell open for editing, applies commits to the Store optimistically and hands
// back a Save that persists the change off the event loop. The Result of a
// Save is fed back through Editor.Settle, which discards stale responses,
// rolls a failed field back to its pre-commit value, or reconciles the field
// with what the server stored.
//
// Records in the Store are never mutated in place. Every change produces a new
// page slice in which only the touched entry (and, for translation fields,
// only the touched translation) is a fresh copy, so callers can skip work for
// rows whose pointer did not change.
//
// Editor and Store methods are meant to be called from a single event loop.
// Only Save.Persist runs elsewhere.
package grid
