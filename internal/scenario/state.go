package scenario

import "fmt"

// State is a point in the round trip. The runner moves through them in order
// and stops at the first failure.
type State int

const (
	Idle State = iota
	SessionAcquired
	PageOpened
	ModeSwitchedEncode
	TextEntered
	SuggestionSelected
	OutputCopied
	ModeSwitchedDecode
	TextPasted
	OutputRead
	Asserted
	SessionReleased
)

var stateNames = [...]string{
	Idle:               "Idle",
	SessionAcquired:    "SessionAcquired",
	PageOpened:         "PageOpened",
	ModeSwitchedEncode: "ModeSwitched(encode)",
	TextEntered:        "TextEntered",
	SuggestionSelected: "SuggestionSelected",
	OutputCopied:       "OutputCopied",
	ModeSwitchedDecode: "ModeSwitched(decode)",
	TextPasted:         "TextPasted",
	OutputRead:         "OutputRead",
	Asserted:           "Asserted",
	SessionReleased:    "SessionReleased",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}
