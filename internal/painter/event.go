package painter

import (
	"fmt"

	"mesh-painter/internal/selector"
)

// EventType is a mouse or keyboard action forwarded from the viewport.
type EventType uint8

const (
	LeftDown EventType = iota
	LeftUp
	RightDown
	RightUp
	Dragging
	MouseWheelUp
	MouseWheelDown
	ResetClippingPlane
)

var eventNames = [...]string{
	LeftDown:           "left_down",
	LeftUp:             "left_up",
	RightDown:          "right_down",
	RightUp:            "right_up",
	Dragging:           "dragging",
	MouseWheelUp:       "wheel_up",
	MouseWheelDown:     "wheel_down",
	ResetClippingPlane: "reset_clipping_plane",
}

func (e EventType) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return fmt.Sprintf("event%d", uint8(e))
}

func (e EventType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *EventType) UnmarshalText(text []byte) error {
	for i, n := range eventNames {
		if n == string(text) {
			*e = EventType(i)
			return nil
		}
	}
	return fmt.Errorf("painter: unknown event %q", text)
}

// Event is one viewport event. X and Y are in pixels, y down.
type Event struct {
	Type  EventType `json:"type" toml:"type"`
	X     float64   `json:"x,omitempty" toml:"x,omitempty"`
	Y     float64   `json:"y,omitempty" toml:"y,omitempty"`
	Shift bool      `json:"shift,omitempty" toml:"shift,omitempty"`
	Alt   bool      `json:"alt,omitempty" toml:"alt,omitempty"`
	Ctrl  bool      `json:"ctrl,omitempty" toml:"ctrl,omitempty"`
}

// Button is the mouse button holding the current stroke.
type Button uint8

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
)

// Type selects what the painted states mean. It only changes history
// labels; the engine stores the same states either way.
type Type uint8

const (
	Supports Type = iota
	Seam
)

func (t Type) String() string {
	if t == Seam {
		return "seam"
	}
	return "supports"
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	switch string(text) {
	case "supports", "":
		*t = Supports
	case "seam":
		*t = Seam
	default:
		return fmt.Errorf("painter: unknown painter type %q", text)
	}
	return nil
}

// stateFor maps the pressed button and modifiers to the state to paint.
func stateFor(b Button, shift bool) selector.State {
	switch {
	case shift:
		return selector.None
	case b == ButtonLeft:
		return selector.Enforcer
	default:
		return selector.Blocker
	}
}

// actionName labels the history entry that commits a stroke.
func actionName(t Type, b Button, shift bool) string {
	if shift {
		return "Remove selection"
	}
	if t == Seam {
		if b == ButtonLeft {
			return "Enforce seam"
		}
		return "Block seam"
	}
	if b == ButtonLeft {
		return "Add supports"
	}
	return "Block supports"
}

func turnedOnName(t Type) string {
	if t == Seam {
		return "Seam gizmo turned on"
	}
	return "Supports gizmo turned on"
}

func turnedOffName(t Type) string {
	if t == Seam {
		return "Seam gizmo turned off"
	}
	return "Supports gizmo turned off"
}
