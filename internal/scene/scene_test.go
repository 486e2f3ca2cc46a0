package scene

import (
	"testing"

	"github.com/woozymasta/geoarea/internal/geo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recorder(s *Scene) *[]Event {
	var events []Event
	s.Subscribe(func(e Event) { events = append(events, e) })
	return &events
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestScene_AddPoint(t *testing.T) {
	s := New()
	events := recorder(s)

	s.AddPoint(geo.LatLng{Lat: 0, Lng: 0}, true)
	s.AddPoint(geo.LatLng{Lat: 0, Lng: 1}, true)

	assert.Nil(t, s.Boundary())
	assert.Empty(t, s.Info())
	_, ok := s.Area()
	assert.False(t, ok)

	assert.Equal(t, []EventKind{
		EventMarkerAdded, EventBoundaryChanged, EventInfoHidden,
		EventMarkerAdded, EventBoundaryChanged, EventInfoHidden,
	}, kinds(*events))

	*events = nil
	id := s.AddPoint(geo.LatLng{Lat: 1, Lng: 1}, false)

	m, ok := s.Marker(id)
	require.True(t, ok)
	assert.False(t, m.Draggable)

	b := s.Boundary()
	require.Len(t, b, 3)
	assert.ElementsMatch(t, s.Points(), []geo.LatLng(b))

	area, ok := s.Area()
	require.True(t, ok)
	assert.Greater(t, area.SquareMeters, 0.0)
	assert.Equal(t, area.Text(), s.Info())

	require.Equal(t, []EventKind{EventMarkerAdded, EventBoundaryChanged, EventInfoShown}, kinds(*events))
	shown := (*events)[2]
	assert.Equal(t, s.Info(), shown.Text)
	require.NotNil(t, shown.Anchor)
	assert.Equal(t, b[0], *shown.Anchor)
	assert.Equal(t, b, (*events)[1].Boundary)
}

func TestScene_RecomputeSortsSquare(t *testing.T) {
	s := New()
	for _, p := range []geo.LatLng{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 1, Lng: 0}} {
		s.AddPoint(p, true)
	}

	assert.Equal(t, geo.Boundary{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 0}, {Lat: 1, Lng: 1}, {Lat: 0, Lng: 1}}, s.Boundary())
	assert.Equal(t, "Area: 12364.03 sq km", s.Recompute())

	// markers keep insertion order
	assert.Equal(t, []geo.LatLng{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 1, Lng: 0}}, s.Points())
}

func TestScene_MovePoint(t *testing.T) {
	s := New()
	a := s.AddPoint(geo.LatLng{Lat: 0, Lng: 0}, true)
	s.AddPoint(geo.LatLng{Lat: 0, Lng: 1}, true)
	fixed := s.AddPoint(geo.LatLng{Lat: 1, Lng: 1}, false)

	before, _ := s.Area()
	events := recorder(s)

	require.NoError(t, s.MovePoint(a, geo.LatLng{Lat: -1, Lng: -1}))

	m, _ := s.Marker(a)
	assert.Equal(t, geo.LatLng{Lat: -1, Lng: -1}, m.Position)
	assert.Contains(t, s.Boundary(), geo.LatLng{Lat: -1, Lng: -1})

	after, _ := s.Area()
	assert.NotEqual(t, before.SquareMeters, after.SquareMeters)
	assert.Equal(t, []EventKind{EventMarkerMoved, EventBoundaryChanged, EventInfoShown}, kinds(*events))

	t.Run("unknown point", func(t *testing.T) {
		assert.ErrorIs(t, s.MovePoint(uuid.New(), geo.LatLng{}), ErrUnknownPoint)
	})

	t.Run("not draggable", func(t *testing.T) {
		boundary := s.Boundary()
		assert.ErrorIs(t, s.MovePoint(fixed, geo.LatLng{Lat: 5, Lng: 5}), ErrNotDraggable)
		assert.Equal(t, boundary, s.Boundary())
	})
}

func TestScene_ReplaceAll(t *testing.T) {
	s := New()
	s.AddPoint(geo.LatLng{Lat: 10, Lng: 10}, false)

	events := recorder(s)
	s.ReplaceAll([]geo.LatLng{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 0}})

	assert.Equal(t, 3, s.Len())
	for _, m := range s.Markers() {
		assert.True(t, m.Draggable)
	}
	assert.Len(t, s.Boundary(), 3)
	assert.Equal(t, EventCleared, (*events)[0].Kind)
	assert.Equal(t, EventInfoShown, (*events)[len(*events)-1].Kind)

	s.ReplaceAll([]geo.LatLng{{Lat: 0, Lng: 0}})
	assert.Equal(t, 1, s.Len())
	assert.Nil(t, s.Boundary())
	assert.Empty(t, s.Info())
}

func TestScene_Clear(t *testing.T) {
	s := New()
	s.ReplaceAll([]geo.LatLng{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 0}})

	events := recorder(s)
	s.Clear()

	assert.Zero(t, s.Len())
	assert.Nil(t, s.Boundary())
	assert.Empty(t, s.Info())
	assert.Equal(t, []EventKind{EventCleared, EventBoundaryChanged, EventInfoHidden}, kinds(*events))
}

func TestScene_Restore(t *testing.T) {
	markers := []geo.LatLng{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 1, Lng: 0}}
	// deliberately not the sorted order
	boundary := geo.Boundary{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 1, Lng: 0}}

	s := New()
	events := recorder(s)
	s.Restore(markers, boundary)

	assert.Equal(t, markers, s.Points())
	assert.Equal(t, boundary, s.Boundary())
	assert.Equal(t, "Area: 12364.03 sq km", s.Info())

	last := (*events)[len(*events)-1]
	require.Equal(t, EventFitViewport, last.Kind)
	assert.Equal(t, geo.Bound{South: 0, West: 0, North: 1, East: 1}, *last.Bound)

	t.Run("short boundary loads markers only", func(t *testing.T) {
		s := New()
		events := recorder(s)
		s.Restore(markers, geo.Boundary{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}})

		assert.Equal(t, 4, s.Len())
		assert.Nil(t, s.Boundary())
		assert.Empty(t, s.Info())
		assert.NotContains(t, kinds(*events), EventFitViewport)
	})

	t.Run("recompute after restore resorts markers", func(t *testing.T) {
		s := New()
		s.Restore(markers, boundary)
		s.Recompute()
		assert.Equal(t, geo.Boundary{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 0}, {Lat: 1, Lng: 1}, {Lat: 0, Lng: 1}}, s.Boundary())
	})
}

func TestScene_Subscribe(t *testing.T) {
	s := New()

	var first, second int
	unsubscribe := s.Subscribe(func(Event) { first++ })
	s.Subscribe(func(Event) { second++ })

	s.AddPoint(geo.LatLng{}, true)
	unsubscribe()
	s.AddPoint(geo.LatLng{Lat: 1}, true)

	assert.Equal(t, 3, first)
	assert.Equal(t, 6, second)
}

func TestScene_UnsubscribeDuringEmit(t *testing.T) {
	s := New()

	var first, second, third int
	var unsubscribe func()
	unsubscribe = s.Subscribe(func(Event) {
		first++
		unsubscribe()
	})
	s.Subscribe(func(Event) { second++ })
	s.Subscribe(func(Event) { third++ })

	s.AddPoint(geo.LatLng{}, true)

	assert.Equal(t, 1, first)
	assert.Equal(t, 3, second)
	assert.Equal(t, 3, third)
}

func TestScene_SnapshotIsCopy(t *testing.T) {
	s := New(WithRadius(1))
	s.ReplaceAll([]geo.LatLng{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 90}, {Lat: 90, Lng: 0}})

	snap := s.Snapshot()
	require.NotNil(t, snap.Area)
	assert.InDelta(t, 1.5707963, snap.Area.SquareMeters, 1e-6)
	assert.Equal(t, "Area: 1.57 sq m", snap.Info)

	snap.Boundary[0] = geo.LatLng{Lat: 45}
	snap.Markers[0].Position = geo.LatLng{Lat: 45}
	assert.Equal(t, geo.LatLng{}, s.Boundary()[0])
	assert.Equal(t, geo.LatLng{}, s.Points()[0])
	assert.Equal(t, 1.0, s.Radius())
}

func TestScene_Apply(t *testing.T) {
	s := New()
	fixed := false

	require.NoError(t, s.Apply(Input{Kind: InputAddPoint, Position: geo.LatLng{Lat: 1}}))
	require.NoError(t, s.Apply(Input{Kind: InputAddPoint, Position: geo.LatLng{Lng: 1}, Draggable: &fixed}))

	markers := s.Markers()
	require.Len(t, markers, 2)
	assert.True(t, markers[0].Draggable)
	assert.False(t, markers[1].Draggable)

	require.NoError(t, s.Apply(Input{Kind: InputMovePoint, ID: markers[0].ID.String(), Position: geo.LatLng{Lat: 2}}))
	m, _ := s.Marker(markers[0].ID)
	assert.Equal(t, geo.LatLng{Lat: 2}, m.Position)

	assert.ErrorIs(t, s.Apply(Input{Kind: InputMovePoint, ID: "nope"}), ErrUnknownPoint)
	assert.ErrorIs(t, s.Apply(Input{Kind: InputMovePoint, ID: markers[1].ID.String()}), ErrNotDraggable)
	assert.ErrorIs(t, s.Apply(Input{Kind: "teleport"}), ErrUnknownInput)

	require.NoError(t, s.Apply(Input{Kind: InputClear}))
	assert.Zero(t, s.Len())
}

func TestSnapshot_Events(t *testing.T) {
	s := New()
	assert.Equal(t,
		[]EventKind{EventCleared, EventBoundaryChanged, EventInfoHidden},
		kinds(s.Snapshot().Events()))

	s.ReplaceAll([]geo.LatLng{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 1, Lng: 0}})

	replay := New()
	for _, e := range s.Snapshot().Events() {
		if e.Kind == EventMarkerAdded {
			replay.AddPoint(e.Marker.Position, e.Marker.Draggable)
		}
	}
	assert.Equal(t, s.Boundary(), replay.Boundary())

	events := s.Snapshot().Events()
	assert.Equal(t, []EventKind{
		EventCleared,
		EventMarkerAdded, EventMarkerAdded, EventMarkerAdded, EventMarkerAdded,
		EventBoundaryChanged, EventInfoShown,
	}, kinds(events))

	last := events[len(events)-1]
	assert.Equal(t, s.Info(), last.Text)
	assert.Equal(t, s.Boundary()[0], *last.Anchor)
	require.NotNil(t, events[5].Area)
	area, _ := s.Area()
	assert.Equal(t, area, *events[5].Area)
}
