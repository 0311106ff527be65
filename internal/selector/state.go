package selector

import "fmt"

// State is the paint attribute carried by a leaf triangle.
type State uint8

const (
	None State = iota
	Enforcer
	Blocker
)

// MaxState is the largest state the binary snapshot format can hold.
const MaxState State = 15

var stateNames = [...]string{
	None:     "none",
	Enforcer: "enforcer",
	Blocker:  "blocker",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state%d", uint8(s))
}

// Valid reports whether s fits the snapshot encoding.
func (s State) Valid() bool {
	return s <= MaxState
}

// ParseState is the inverse of String.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	var v uint8
	if _, err := fmt.Sscanf(name, "state%d", &v); err == nil && State(v) <= MaxState {
		return State(v), nil
	}
	return None, fmt.Errorf("selector: unknown state %q", name)
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	v, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
