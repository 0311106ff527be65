package config

import (
	"errors"
	"fmt"
	"os"

	"mesh-painter/internal/painter"
)

// Step actions other than a plain viewport event.
const (
	ActionActivate   = "activate"
	ActionDeactivate = "deactivate"
	ActionUndo       = "undo"
	ActionRedo       = "redo"
)

// Step is one entry of a recorded event script. When Action is set the
// event fields are ignored.
type Step struct {
	Action string `json:"action,omitempty" toml:"action,omitempty"`
	painter.Event
}

// Script is a recorded painting session.
type Script struct {
	Steps []Step `json:"steps" toml:"steps"`
}

// LoadScript reads a JSON or TOML event script.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var s Script
	if err := decode(path, data, &s); err != nil {
		return Script{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	for i, st := range s.Steps {
		switch st.Action {
		case "", ActionActivate, ActionDeactivate, ActionUndo, ActionRedo:
		default:
			return Script{}, fmt.Errorf("config: %s: step %d: unknown action %q", path, i, st.Action)
		}
	}
	return s, nil
}

// Replay runs the script against p and returns how many events were
// consumed. Undo or redo past the end of history is not an error.
func (s Script) Replay(p *painter.Painter) (int, error) {
	consumed := 0
	for i, st := range s.Steps {
		var err error
		switch st.Action {
		case ActionActivate:
			p.Activate()
		case ActionDeactivate:
			p.Deactivate()
		case ActionUndo:
			_, err = p.Undo()
		case ActionRedo:
			_, err = p.Redo()
		default:
			if p.HandleEvent(st.Event) {
				consumed++
			}
			continue
		}
		if err != nil && !errors.Is(err, painter.ErrNothingToUndo) && !errors.Is(err, painter.ErrNothingToRedo) {
			return consumed, fmt.Errorf("config: step %d (%s): %w", i, st.Action, err)
		}
	}
	return consumed, nil
}
