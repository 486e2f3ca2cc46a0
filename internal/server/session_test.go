package server

import (
	"context"
	"testing"
	"time"

	"github.com/woozymasta/geoarea/internal/document"
	"github.com/woozymasta/geoarea/internal/geo"
	"github.com/woozymasta/geoarea/internal/scene"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Run(t *testing.T) {
	s := NewSession(zerolog.Nop())

	inputs := make(chan scene.Input, 4)
	var rejected []error

	inputs <- scene.Input{Kind: scene.InputAddPoint, Position: geo.LatLng{Lat: 1}}
	inputs <- scene.Input{Kind: scene.InputMovePoint, ID: "missing"}
	inputs <- scene.Input{Kind: scene.InputAddPoint, Position: geo.LatLng{Lng: 1}}
	close(inputs)

	s.Run(context.Background(), inputs, func(_ scene.Input, err error) {
		rejected = append(rejected, err)
	})

	assert.Len(t, s.Snapshot().Markers, 2)
	require.Len(t, rejected, 1)
	assert.ErrorIs(t, rejected[0], scene.ErrUnknownPoint)
}

func TestSession_ApplyOutOfRange(t *testing.T) {
	s := NewSession(zerolog.Nop())

	require.NoError(t, s.Apply(scene.Input{Kind: scene.InputAddPoint, Position: geo.LatLng{Lat: 95, Lng: 200}}))
	snap := s.Snapshot()
	require.Len(t, snap.Markers, 1)
	assert.Equal(t, geo.LatLng{Lat: 95, Lng: 200}, snap.Markers[0].Position)
}

func TestSession_RunStopsOnCancel(t *testing.T) {
	s := NewSession(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx, make(chan scene.Input), nil)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestSession_ImportExport(t *testing.T) {
	s := NewSession(zerolog.Nop(), scene.WithRadius(1))

	_, err := s.Export(document.FormatJSON)
	assert.ErrorIs(t, err, document.ErrEmptyState)

	var events []scene.EventKind
	unsubscribe := s.Subscribe(func(e scene.Event) { events = append(events, e.Kind) })

	doc := `{"markers":[{"lat":0,"lng":0},{"lat":0,"lng":90},{"lat":90,"lng":0}],` +
		`"polygon":[{"lat":0,"lng":0},{"lat":0,"lng":90},{"lat":90,"lng":0}]}`
	require.NoError(t, s.Import([]byte(doc), document.FormatJSON))
	assert.Equal(t, "Area: 1.57 sq m", s.Snapshot().Info)
	assert.Contains(t, events, scene.EventFitViewport)

	unsubscribe()
	count := len(events)

	err = s.Import([]byte(`{"markers":[]}`), document.FormatJSON)
	assert.ErrorIs(t, err, document.ErrMalformedDocument)
	assert.Len(t, s.Snapshot().Markers, 3)
	assert.Len(t, events, count)

	data, err := s.Export(document.FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(data), "markers:")
}
