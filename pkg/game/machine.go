package game

import (
	"math"
	"time"
)

// EventKind identifies a notable transition.
type EventKind int

const (
	EventRoundStarted EventKind = iota
	EventRoundWon
)

// Event reports a round boundary to observers (dashboard, metrics).
type Event struct {
	Kind    EventKind
	Round   Round
	Score   int           // Score after the event
	At      time.Time
	Elapsed time.Duration // Round duration, set for EventRoundWon
}

// Tick is the result of advancing the machine by one frame.
type Tick struct {
	State   State
	Display Display
	Events  []Event
}

// Step advances the game by one tick. It never mutates s and has no side
// effects besides calling pick when a new target is needed.
//
// The tick that selects a target also scores its own observation, so a
// matching face on the start frame already counts toward the hold.
func Step(cfg Config, s State, in Input, pick Picker) Tick {
	var events []Event

	switch s.Phase {
	case PhaseNotStarted:
		if in.Command == CommandStart {
			s = startRound(cfg, s, in.Now, pick)
			events = append(events, Event{Kind: EventRoundStarted, Round: s.Round, Score: s.Score, At: in.Now})
		}

	case PhaseCooldown:
		if !in.Now.Before(s.CooldownUntil) {
			s = startRound(cfg, s, in.Now, pick)
			events = append(events, Event{Kind: EventRoundStarted, Round: s.Round, Score: s.Score, At: in.Now})
		}
	}

	if s.Phase == PhaseRoundActive {
		var won bool
		s, won = observe(cfg, s, in)
		if won {
			events = append(events, Event{
				Kind:    EventRoundWon,
				Round:   s.Round,
				Score:   s.Score,
				At:      in.Now,
				Elapsed: in.Now.Sub(s.Round.Started),
			})
		}
	}

	return Tick{State: s, Display: s.Display(cfg), Events: events}
}

// startRound picks a fresh target and resets the hold counter.
func startRound(cfg Config, s State, now time.Time, pick Picker) State {
	target := pick(cfg.Playable)

	s.Phase = PhaseRoundActive
	s.Round = Round{
		Number:  s.Round.Number + 1,
		Target:  target,
		Hold:    0,
		Started: now,
	}
	s.CooldownUntil = time.Time{}
	s.Feedback = Feedback{Kind: FeedbackRoundStart, Target: target}
	return s
}

// observe applies one observation to an active round.
func observe(cfg Config, s State, in Input) (State, bool) {
	obs := in.Observation
	target := s.Round.Target

	switch {
	case !obs.FaceFound:
		s.Round.Hold = 0
		s.Feedback = Feedback{Kind: FeedbackNoFace, Target: target}

	case obs.Label == "":
		s.Round.Hold = 0
		// A fresh round keeps its prompt until a readable frame arrives.
		if s.Feedback.Kind != FeedbackRoundStart {
			s.Feedback = Feedback{Kind: FeedbackUnreadable, Target: target}
		}

	case obs.Label == target:
		s.Round.Hold = min(s.Round.Hold+1, cfg.HoldThreshold)
		if s.Round.Hold >= cfg.HoldThreshold {
			s.Score += cfg.Reward
			s.Phase = PhaseCooldown
			s.CooldownUntil = in.Now.Add(cfg.Cooldown)
			s.Feedback = Feedback{Kind: FeedbackSuccess, Target: target, Reward: cfg.Reward}
			return s, true
		}
		s.Feedback = Feedback{
			Kind:      FeedbackHolding,
			Target:    target,
			Hold:      s.Round.Hold,
			Threshold: cfg.HoldThreshold,
		}

	default:
		s.Round.Hold = 0
		s.Feedback = Feedback{Kind: FeedbackWrongEmotion, Target: target, Detected: obs.Label}
	}

	return s, false
}

// progress is hold/threshold clamped to [0, 1].
func progress(hold, threshold int) float64 {
	if threshold <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, float64(hold)/float64(threshold)))
}
