package scene

import (
	"errors"
	"fmt"

	"github.com/woozymasta/geoarea/internal/geo"

	"github.com/google/uuid"
)

// ErrUnknownInput is returned by Apply for an unsupported input kind.
var ErrUnknownInput = errors.New("unknown input kind")

// InputKind names a user interaction delivered by a map adapter.
type InputKind string

const (
	InputAddPoint  InputKind = "add_point"
	InputMovePoint InputKind = "move_point"
	InputClear     InputKind = "clear"
)

// Input is a single interaction event. Draggable defaults to true when unset.
// Origin names the connection that sent it and is set by the adapter.
type Input struct {
	Draggable *bool      `json:"draggable,omitempty"`
	Kind      InputKind  `json:"kind"`
	ID        string     `json:"id,omitempty"`
	Origin    string     `json:"-"`
	Position  geo.LatLng `json:"position"`
}

// Apply dispatches an input event to the matching scene operation.
func (s *Scene) Apply(in Input) error {
	switch in.Kind {
	case InputAddPoint:
		draggable := true
		if in.Draggable != nil {
			draggable = *in.Draggable
		}
		s.AddPoint(in.Position, draggable)
		return nil

	case InputMovePoint:
		id, err := uuid.Parse(in.ID)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrUnknownPoint, in.ID)
		}
		return s.MovePoint(id, in.Position)

	case InputClear:
		s.Clear()
		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnknownInput, in.Kind)
}
