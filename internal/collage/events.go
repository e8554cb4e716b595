package collage

import "github.com/google/uuid"

// EventKind identifies what changed on the canvas.
type EventKind string

const (
	// EventCanvasChanged fires after any synchronous canvas mutation:
	// add, select, delete, transform update, shader toggle.
	EventCanvasChanged EventKind = "canvas_changed"
	// EventItemRendered fires when a background shader render or cutout
	// merge replaced an item's displayed bitmap.
	EventItemRendered EventKind = "item_rendered"
	// EventCutoutStarted fires when a segmentation task is launched.
	EventCutoutStarted EventKind = "cutout_started"
	// EventCutoutFinished fires when a segmentation task completed,
	// failed, or was discarded.
	EventCutoutFinished EventKind = "cutout_finished"
	// EventSaveStarted and EventSaveFinished bracket the save protocol.
	EventSaveStarted  EventKind = "save_started"
	EventSaveFinished EventKind = "save_finished"
	// EventDismiss signals the navigation collaborator that the editor
	// may close; Refresh reports whether the gallery should reload.
	EventDismiss EventKind = "dismiss"
)

// Event is a change notification emitted to the registered listener after
// the triggering mutation has been committed. ItemID is set for item-scoped
// events, Refresh only for EventDismiss.
type Event struct {
	Kind    EventKind
	ItemID  uuid.UUID
	Refresh bool
}

// Listener consumes engine events. It is invoked outside the engine's lock
// and may call back into the engine, but must not block for long: events
// from background merges are delivered on the completing goroutine.
type Listener func(Event)
