package scene

import "github.com/woozymasta/geoarea/internal/geo"

// EventKind names a scene change that a renderer may react to.
type EventKind string

const (
	// EventMarkerAdded carries the new marker.
	EventMarkerAdded EventKind = "marker_added"
	// EventMarkerMoved carries the marker at its new position.
	EventMarkerMoved EventKind = "marker_moved"
	// EventCleared means every marker was removed.
	EventCleared EventKind = "cleared"
	// EventBoundaryChanged carries the new boundary and its area,
	// an empty boundary means the polygon was removed.
	EventBoundaryChanged EventKind = "boundary_changed"
	// EventInfoShown carries the display text and its anchor.
	EventInfoShown EventKind = "info_shown"
	// EventInfoHidden means no area is displayed.
	EventInfoHidden EventKind = "info_hidden"
	// EventFitViewport carries the box the viewport should be fitted to.
	EventFitViewport EventKind = "fit_viewport"
)

// Event is emitted to listeners on every observable scene change.
type Event struct {
	Marker   *Marker         `json:"marker,omitempty"`
	Area     *geo.AreaResult `json:"area,omitempty"`
	Anchor   *geo.LatLng     `json:"anchor,omitempty"`
	Bound    *geo.Bound      `json:"bound,omitempty"`
	Kind     EventKind       `json:"kind"`
	Text     string          `json:"text,omitempty"`
	Boundary geo.Boundary    `json:"boundary,omitempty"`
}

// Listener receives scene events. It runs synchronously inside the scene
// operation that produced the event and must not mutate the scene.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers l for all subsequent events and returns a function
// removing it. Listeners are called in subscription order.
func (s *Scene) Subscribe(l Listener) (unsubscribe func()) {
	s.nextSubID++
	id := s.nextSubID
	s.listeners = append(s.listeners, subscription{id: id, fn: l})

	// The list is rebuilt rather than compacted, an emit in progress keeps
	// ranging over the old one.
	return func() {
		kept := make([]subscription, 0, len(s.listeners))
		for _, sub := range s.listeners {
			if sub.id != id {
				kept = append(kept, sub)
			}
		}
		s.listeners = kept
	}
}

func (s *Scene) emit(e Event) {
	for _, sub := range s.listeners {
		sub.fn(e)
	}
}

// Events replays the snapshot as the event sequence a fresh renderer needs
// to reach the same state.
func (s Snapshot) Events() []Event {
	events := make([]Event, 0, len(s.Markers)+3)
	events = append(events, Event{Kind: EventCleared})

	for i := range s.Markers {
		m := s.Markers[i]
		events = append(events, Event{Kind: EventMarkerAdded, Marker: &m})
	}

	if len(s.Boundary) == 0 || s.Area == nil {
		return append(events,
			Event{Kind: EventBoundaryChanged},
			Event{Kind: EventInfoHidden},
		)
	}

	area, anchor := *s.Area, s.Boundary[0]
	return append(events,
		Event{Kind: EventBoundaryChanged, Boundary: s.Boundary.Clone(), Area: &area},
		Event{Kind: EventInfoShown, Text: s.Info, Anchor: &anchor},
	)
}
