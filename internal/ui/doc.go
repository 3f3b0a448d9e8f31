// Package ui implements an interactive terminal playlist editor using bubbletea's Elm architecture.
//
// The screen has three panes sharing one [Model]:
//  1. Track list : the playlist, with a bar showing used and remaining capacity
//  2. Search input : a debounced query against the configured catalog
//  3. Results : catalog matches that can be added to the playlist
//
// Every edit runs as a [tea.Cmd] against an [editor.Editor] and comes back as a Msg carrying a fresh snapshot,
// so the view only ever renders snapshots. A rejected add shows "Disc full!" and leaves the playlist untouched.
//
// Keyboard: r adds a random track, a adds the selected result, / searches, d deletes, c clears (y/n),
// u or ctrl+z undoes, ctrl+y or ctrl+r redoes, tab switches panes, q quits.
package ui
