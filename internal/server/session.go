package server

import (
	"context"
	"sync"

	"github.com/woozymasta/geoarea/internal/document"
	"github.com/woozymasta/geoarea/internal/geo"
	"github.com/woozymasta/geoarea/internal/scene"

	"github.com/rs/zerolog"
)

// Session serializes access to the one scene shared by all clients.
// Scene listeners run while the session lock is held.
type Session struct {
	scene *scene.Scene
	log   zerolog.Logger
	mu    sync.Mutex
}

// NewSession creates a session around an empty scene.
func NewSession(log zerolog.Logger, opts ...scene.Option) *Session {
	opts = append([]scene.Option{scene.WithLogger(log)}, opts...)
	return &Session{
		scene: scene.New(opts...),
		log:   log,
	}
}

// Subscribe registers a scene listener.
func (s *Session) Subscribe(l scene.Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unsub := s.scene.Subscribe(l)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		unsub()
	}
}

// Do runs fn with exclusive access to the scene.
func (s *Session) Do(fn func(*scene.Scene) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.scene)
}

// Apply applies a single input event.
func (s *Session) Apply(in scene.Input) error {
	if in.Kind == scene.InputAddPoint || in.Kind == scene.InputMovePoint {
		s.warnOutOfRange(in.Position)
	}
	return s.Do(func(sc *scene.Scene) error { return sc.Apply(in) })
}

// warnOutOfRange logs coordinates outside the lat/lng ranges. They are still
// applied, the map may hand out wrapped longitudes.
func (s *Session) warnOutOfRange(p geo.LatLng) {
	if !p.Valid() {
		s.log.Warn().Stringer("position", p).Msg("Coordinate out of range")
	}
}

// Snapshot returns a copy of the scene state.
func (s *Session) Snapshot() scene.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene.Snapshot()
}

// Export serializes the scene in format f.
func (s *Session) Export(f document.Format) ([]byte, error) {
	var data []byte
	err := s.Do(func(sc *scene.Scene) error {
		var err error
		data, err = document.ExportAs(sc, f)
		return err
	})
	return data, err
}

// Import decodes data outside the lock and restores it as one step,
// so no client observes a half imported scene.
func (s *Session) Import(data []byte, f document.Format) error {
	doc, err := document.DecodeAs(data, f)
	if err != nil {
		return err
	}

	return s.Do(func(sc *scene.Scene) error {
		document.Apply(sc, doc)
		return nil
	})
}

// Run applies inputs until ctx is done or inputs is closed.
// Failed inputs are logged and reported through onError when it is set.
func (s *Session) Run(ctx context.Context, inputs <-chan scene.Input, onError func(scene.Input, error)) {
	for {
		select {
		case <-ctx.Done():
			s.log.Debug().Msg("Input loop stopped")
			return

		case in, ok := <-inputs:
			if !ok {
				return
			}

			if err := s.Apply(in); err != nil {
				s.log.Warn().
					Err(err).
					Str("kind", string(in.Kind)).
					Str("id", in.ID).
					Msg("Input rejected")

				if onError != nil {
					onError(in, err)
				}
			}
		}
	}
}
