// Package game implements the round state machine of the emotion-meter game.
//
// A round asks the player for a target emotion. Each tick the primary face's
// classified emotion is compared with the target; a run of HoldThreshold
// consecutive matches wins the round, any miss resets the run to zero.
// After a win the game waits for a cooldown before picking the next target.
//
// The machine is a pure function over an explicit State (see Step) so it can
// be driven without a camera or window. It is not safe for concurrent use;
// exactly one tick is processed at a time.
package game

import (
	"fmt"
	"time"

	"github.com/teslashibe/go-emotimeter/pkg/emotion"
)

// Phase is the game lifecycle state.
type Phase int

const (
	// PhaseNotStarted waits for the first start command.
	PhaseNotStarted Phase = iota

	// PhaseRoundActive compares every observation with the target.
	PhaseRoundActive

	// PhaseCooldown shows the success message until the deadline passes.
	PhaseCooldown
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseRoundActive:
		return "round_active"
	case PhaseCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(b []byte) error {
	for _, c := range []Phase{PhaseNotStarted, PhaseRoundActive, PhaseCooldown} {
		if c.String() == string(b) {
			*p = c
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Command is an edge-triggered player command.
type Command int

const (
	CommandNone Command = iota
	CommandStart
	CommandQuit
)

// Key codes understood by CommandForKey.
const (
	keyEscape = 27
)

// CommandForKey maps a polled key code to a command. Unknown keys and the
// "no key" value (-1) map to CommandNone.
func CommandForKey(key int) Command {
	if key < 0 {
		return CommandNone
	}
	switch key & 0xFF {
	case 's', 'S':
		return CommandStart
	case 'q', 'Q', keyEscape:
		return CommandQuit
	default:
		return CommandNone
	}
}

// Observation is what the primary face showed during one tick.
type Observation struct {
	// FaceFound is false when no valid face region was located.
	FaceFound bool

	// Label is the primary face's emotion. emotion.None with FaceFound set
	// means the classifier failed on that face.
	Label emotion.Label
}

// NoFace is the observation for a frame without a usable face.
func NoFace() Observation {
	return Observation{}
}

// Saw is the observation for a primary face classified as l.
func Saw(l emotion.Label) Observation {
	return Observation{FaceFound: true, Label: l}
}

// Unreadable is the observation for a primary face the classifier could not label.
func Unreadable() Observation {
	return Observation{FaceFound: true}
}

// Input is everything the state machine consumes in one tick.
type Input struct {
	Observation Observation
	Command     Command
	Now         time.Time
}

// Round is one challenge cycle, from target selection to success.
type Round struct {
	Number  int           // 1-based round counter
	Target  emotion.Label // Fixed for the whole round
	Hold    int           // Consecutive matching frames, 0..HoldThreshold
	Started time.Time
}

// State is the complete game state. The zero value is a game that has not
// been started, but NewState also sets the idle prompt.
type State struct {
	Phase         Phase
	Round         Round
	Score         int
	CooldownUntil time.Time
	Feedback      Feedback
}

// NewState returns the state shown before the player presses start.
func NewState() State {
	return State{
		Phase:    PhaseNotStarted,
		Feedback: Feedback{Kind: FeedbackIdle},
	}
}

// Active reports whether a round is in progress.
func (s State) Active() bool {
	return s.Phase == PhaseRoundActive
}

// Picker chooses the next target from the playable emotions.
type Picker func(options []emotion.Label) emotion.Label
