package game

import (
	"fmt"

	"github.com/teslashibe/go-emotimeter/pkg/emotion"
)

// FeedbackKind identifies which transition produced the feedback message.
type FeedbackKind int

const (
	FeedbackIdle         FeedbackKind = iota // Waiting for start
	FeedbackRoundStart                       // New target selected
	FeedbackHolding                          // Matching, not there yet
	FeedbackSuccess                          // Round won
	FeedbackWrongEmotion                     // Primary face shows another emotion
	FeedbackNoFace                           // No face located
	FeedbackUnreadable                       // Face located, classifier failed
)

// Severity is the display styling class of a feedback message.
type Severity int

const (
	// SeverityAlert asks the player to do something (red).
	SeverityAlert Severity = iota

	// SeverityProgress means the player is on track (yellow).
	SeverityProgress

	// SeverityPositive celebrates a won round (green).
	SeverityPositive
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityPositive:
		return "positive"
	case SeverityProgress:
		return "progress"
	default:
		return "alert"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name. Unknown names decode as alert.
func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "positive":
		*s = SeverityPositive
	case "progress":
		*s = SeverityProgress
	default:
		*s = SeverityAlert
	}
	return nil
}

// Feedback is the message shown under the video. It keeps the facts the
// message is built from, so styling never depends on the wording.
type Feedback struct {
	Kind      FeedbackKind
	Target    emotion.Label
	Detected  emotion.Label
	Hold      int
	Threshold int
	Reward    int
}

// Severity classifies the feedback for display.
func (f Feedback) Severity() Severity {
	switch f.Kind {
	case FeedbackSuccess:
		return SeverityPositive
	case FeedbackHolding:
		return SeverityProgress
	default:
		return SeverityAlert
	}
}

// Text renders the feedback message.
func (f Feedback) Text() string {
	switch f.Kind {
	case FeedbackIdle:
		return "Press 's' to start the game!"
	case FeedbackRoundStart:
		return fmt.Sprintf("Show a %s face!", f.Target.Upper())
	case FeedbackHolding:
		return fmt.Sprintf("Keep holding %s! (%d/%d)", f.Target.Upper(), f.Hold, f.Threshold)
	case FeedbackSuccess:
		return fmt.Sprintf("GREAT! +%d Points for %s!", f.Reward, f.Target.Upper())
	case FeedbackWrongEmotion:
		return fmt.Sprintf("Not %s. Show: %s", f.Detected, f.Target.Upper())
	case FeedbackNoFace:
		return fmt.Sprintf("Face not found. Show: %s", f.Target.Upper())
	case FeedbackUnreadable:
		return fmt.Sprintf("Can't read your face. Show: %s", f.Target.Upper())
	default:
		return ""
	}
}
