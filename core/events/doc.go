// Package events defines the search events emitted on the event bus.
//
// Available event types:
//   - SolutionEvent: an improving solution was recorded
//   - PhaseEvent: a search phase started or finished
//   - RunEvent: a run finished, successfully or not
package events
