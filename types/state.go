package types

import "fmt"

// State represents the push subscription lifecycle state.
//
// A handler starts in StateLoading and settles after the status probe:
//
//	StateLoading → StateNotSupported | StateDisabled | StateNotSubscribed | StateSubscribed | StateError
//
// User initiated changes pass through StateUpdating:
//
//	StateNotSubscribed → StateUpdating → StateSubscribed | StateNotSubscribed | StateDisabled | StateError
//	StateSubscribed    → StateUpdating → StateNotSubscribed | StateError
//
// StateNotSupported is terminal for the session. StateDisabled is only left through an explicit refresh.
type State int

const (
	// StateLoading is the initial state while the status probe is in flight.
	StateLoading State = iota

	// StateUpdating indicates a subscribe or unsubscribe operation is in flight.
	StateUpdating

	// StateNotSupported indicates the host lacks a worker registry or push capability.
	StateNotSupported

	// StateDisabled indicates the user has explicitly denied notification permission.
	StateDisabled

	// StateNotSubscribed indicates the device is eligible and permitted but has no active subscription.
	StateNotSubscribed

	// StateSubscribed indicates an active subscription that was published to the record owner.
	StateSubscribed

	// StateError indicates the last operation against the host failed unrecoverably.
	StateError
)

var stateNames = [...]string{
	StateLoading:       "loading",
	StateUpdating:      "updating",
	StateNotSupported:  "not-supported",
	StateDisabled:      "disabled",
	StateNotSubscribed: "not-subscribed",
	StateSubscribed:    "subscribed",
	StateError:         "error",
}

// String returns the string representation of the state.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}

	return stateNames[s]
}

// IsSettled reports whether no operation is in flight in this state.
func (s State) IsSettled() bool {
	return s != StateLoading && s != StateUpdating
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(stateNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownState, int(s))
	}

	return []byte(stateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed

	return nil
}

// ParseState converts a state name such as "not-subscribed" into a State.
//
// Parameters:
//   - name: Hyphenated state name as returned by State.String
//
// Returns:
//   - State: Parsed state
//   - error: ErrUnknownState if the name is not recognized
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}

	return StateLoading, fmt.Errorf("%w: %q", ErrUnknownState, name)
}
