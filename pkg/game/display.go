package game

import "github.com/teslashibe/go-emotimeter/pkg/emotion"

// Display is the view model rendered each tick.
type Display struct {
	Phase     Phase         `json:"phase"`
	Target    emotion.Label `json:"target,omitempty"`
	Round     int           `json:"round"`
	Score     int           `json:"score"`
	Hold      int           `json:"hold"`
	Threshold int           `json:"threshold"`

	// Progress is hold/threshold in [0, 1] while a round is active, nil otherwise.
	Progress *float64 `json:"progress,omitempty"`

	Feedback string   `json:"feedback"`
	Severity Severity `json:"severity"`
}

// Started reports whether the game left the idle screen.
func (d Display) Started() bool {
	return d.Phase != PhaseNotStarted
}

// Display derives the view model from the state.
func (s State) Display(cfg Config) Display {
	d := Display{
		Phase:     s.Phase,
		Round:     s.Round.Number,
		Score:     s.Score,
		Threshold: cfg.HoldThreshold,
		Feedback:  s.Feedback.Text(),
		Severity:  s.Feedback.Severity(),
	}

	if s.Phase != PhaseNotStarted {
		d.Target = s.Round.Target
		d.Hold = s.Round.Hold
	}
	if s.Phase == PhaseRoundActive {
		p := progress(s.Round.Hold, cfg.HoldThreshold)
		d.Progress = &p
	}

	return d
}
