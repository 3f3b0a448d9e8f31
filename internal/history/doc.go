// Package history implements the undo/redo command history that governs every playlist mutation.
//
// # Commands
//
// A [Command] captures enough state to be reversed exactly:
//
//  1. [AddTrack] : appends a track; reverse removes it by identity
//  2. [DeleteTrack] : removes the track at the index captured at construction; reverse reinserts it there
//  3. [ClearAll] : empties the list; reverse restores the captured snapshot verbatim
//
// # Mirroring
//
// Each command mirrors its mutation to an optional [Store] through a [Mirror].
// The local [playlist.State] mutation always happens. A store failure is wrapped in a
// [StoreError], logged, and otherwise ignored: local state is the source of truth and
// the store is an eventually consistent copy.
//
// An [AddTrack] records the id returned by [Store.Create] on its track, so a later redo
// calls [Store.Restore] on the existing row instead of creating a duplicate.
//
// # Manager
//
// [Manager] owns the undo and redo stacks. Execute, Submit, Undo and Redo are serialized:
// a call arriving while another is waiting on the store queues behind it.
// Executing a new command clears the redo stack. The observer is called once after each
// completed transition, while the operation still holds the manager's lock, so it must not
// call [Manager.View], Execute, Submit, Undo or Redo.
package history
