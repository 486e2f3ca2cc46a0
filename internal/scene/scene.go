// Package scene holds the live marker set and the polygon derived from it.
package scene

import (
	"errors"

	"github.com/woozymasta/geoarea/internal/geo"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrUnknownPoint is returned when a marker ID is not part of the scene.
	ErrUnknownPoint = errors.New("unknown point")
	// ErrNotDraggable is returned when moving a marker that was added as fixed.
	ErrNotDraggable = errors.New("point is not draggable")
)

// Marker is a point placed on the map.
type Marker struct {
	ID        uuid.UUID  `json:"id"`
	Position  geo.LatLng `json:"position"`
	Draggable bool       `json:"draggable"`
}

// Snapshot is a copy of the scene state.
type Snapshot struct {
	Area     *geo.AreaResult `json:"area,omitempty"`
	Info     string          `json:"info,omitempty"`
	Markers  []Marker        `json:"markers"`
	Boundary geo.Boundary    `json:"boundary"`
}

// Scene owns the markers and the boundary rebuilt from them.
// It is not safe for concurrent use.
type Scene struct {
	log zerolog.Logger

	index    map[uuid.UUID]int
	area     *geo.AreaResult
	info     string
	markers  []Marker
	boundary geo.Boundary

	listeners []subscription
	nextSubID int

	radius float64
}

// Option configures a Scene.
type Option func(*Scene)

// WithRadius sets the sphere radius in meters used for area calculation.
func WithRadius(r float64) Option {
	return func(s *Scene) {
		if r > 0 {
			s.radius = r
		}
	}
}

// WithLogger attaches a logger for recompute tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scene) { s.log = l }
}

// New creates an empty scene.
func New(opts ...Option) *Scene {
	s := &Scene{
		log:    zerolog.Nop(),
		index:  make(map[uuid.UUID]int),
		radius: geo.EarthRadius,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Radius returns the sphere radius used for area.
func (s *Scene) Radius() float64 {
	return s.radius
}

// AddPoint appends a marker and recomputes the boundary.
func (s *Scene) AddPoint(p geo.LatLng, draggable bool) uuid.UUID {
	m := s.appendMarker(p, draggable)
	s.emit(Event{Kind: EventMarkerAdded, Marker: &m})
	s.Recompute()

	return m.ID
}

// MovePoint moves a draggable marker and recomputes the boundary.
func (s *Scene) MovePoint(id uuid.UUID, p geo.LatLng) error {
	i, ok := s.index[id]
	if !ok {
		return ErrUnknownPoint
	}
	if !s.markers[i].Draggable {
		return ErrNotDraggable
	}

	s.markers[i].Position = p
	m := s.markers[i]
	s.emit(Event{Kind: EventMarkerMoved, Marker: &m})
	s.Recompute()

	return nil
}

// Recompute sorts the current markers into a boundary and refreshes the area.
// It returns the display text, empty when fewer than 3 markers exist.
func (s *Scene) Recompute() string {
	b, ok := geo.SortClockwise(s.Points())

	s.log.Debug().
		Int("markers", len(s.markers)).
		Bool("boundary", ok).
		Msg("Scene recomputed")

	if !ok {
		return s.install(nil)
	}

	return s.install(b)
}

// ReplaceAll discards every marker and installs points as draggable markers,
// then recomputes.
func (s *Scene) ReplaceAll(points []geo.LatLng) {
	s.reset()
	s.emit(Event{Kind: EventCleared})

	for _, p := range points {
		m := s.appendMarker(p, true)
		s.emit(Event{Kind: EventMarkerAdded, Marker: &m})
	}

	s.Recompute()
}

// Clear empties markers and boundary.
func (s *Scene) Clear() {
	s.reset()
	s.emit(Event{Kind: EventCleared})
	s.install(nil)
}

// Restore replaces the scene with imported state. Markers become draggable.
// A boundary of at least 3 points is installed as given, without sorting,
// and the viewport is fitted to it. Shorter boundaries are ignored.
func (s *Scene) Restore(markers []geo.LatLng, boundary geo.Boundary) {
	s.reset()
	s.emit(Event{Kind: EventCleared})

	for _, p := range markers {
		m := s.appendMarker(p, true)
		s.emit(Event{Kind: EventMarkerAdded, Marker: &m})
	}

	if len(boundary) < geo.MinBoundaryPoints {
		s.install(nil)
		return
	}

	s.install(boundary.Clone())

	if bound, ok := geo.BoundOf(boundary); ok {
		s.emit(Event{Kind: EventFitViewport, Bound: &bound})
	}
}

// Markers returns a copy of the markers in insertion order.
func (s *Scene) Markers() []Marker {
	out := make([]Marker, len(s.markers))
	copy(out, s.markers)
	return out
}

// Points returns the marker positions in insertion order.
func (s *Scene) Points() []geo.LatLng {
	out := make([]geo.LatLng, len(s.markers))
	for i, m := range s.markers {
		out[i] = m.Position
	}
	return out
}

// Marker looks up a marker by ID.
func (s *Scene) Marker(id uuid.UUID) (Marker, bool) {
	i, ok := s.index[id]
	if !ok {
		return Marker{}, false
	}
	return s.markers[i], true
}

// Boundary returns a copy of the current boundary, nil when there is none.
func (s *Scene) Boundary() geo.Boundary {
	return s.boundary.Clone()
}

// Area returns the area of the current boundary.
func (s *Scene) Area() (geo.AreaResult, bool) {
	if s.area == nil {
		return geo.AreaResult{}, false
	}
	return *s.area, true
}

// Info returns the displayed area text, empty when nothing is displayed.
func (s *Scene) Info() string {
	return s.info
}

// Len returns the number of markers.
func (s *Scene) Len() int {
	return len(s.markers)
}

// Snapshot returns a copy of the whole state.
func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{
		Markers:  s.Markers(),
		Boundary: s.Boundary(),
		Info:     s.info,
	}
	if s.area != nil {
		a := *s.area
		snap.Area = &a
	}
	return snap
}

func (s *Scene) appendMarker(p geo.LatLng, draggable bool) Marker {
	m := Marker{ID: uuid.New(), Position: p, Draggable: draggable}
	s.index[m.ID] = len(s.markers)
	s.markers = append(s.markers, m)
	return m
}

func (s *Scene) reset() {
	s.markers = nil
	s.index = make(map[uuid.UUID]int)
	s.boundary = nil
	s.area = nil
	s.info = ""
}

// install replaces the boundary and runs the area and display step.
func (s *Scene) install(b geo.Boundary) string {
	if b == nil {
		s.boundary = nil
		s.area = nil
		s.info = ""
		s.emit(Event{Kind: EventBoundaryChanged})
		s.emit(Event{Kind: EventInfoHidden})
		return ""
	}

	area := geo.Area(b, s.radius)
	s.boundary = b
	s.area = &area
	s.info = area.Text()

	anchor, shown := b[0], area
	s.emit(Event{Kind: EventBoundaryChanged, Boundary: b.Clone(), Area: &shown})
	s.emit(Event{Kind: EventInfoShown, Text: s.info, Anchor: &anchor})

	return s.info
}
