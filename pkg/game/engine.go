package game

import (
	"math/rand/v2"

	"github.com/teslashibe/go-emotimeter/pkg/emotion"
)

// Engine owns the game state between ticks.
type Engine struct {
	cfg   Config
	state State
	pick  Picker
}

// NewEngine creates an engine with validated rules. A nil picker selects
// targets uniformly at random.
func NewEngine(cfg Config, pick Picker) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if pick == nil {
		pick = RandomPicker(nil)
	}
	return &Engine{
		cfg:   cfg,
		state: NewState(),
		pick:  pick,
	}, nil
}

// Advance processes one tick and keeps the resulting state.
func (e *Engine) Advance(in Input) Tick {
	t := Step(e.cfg, e.state, in, e.pick)
	e.state = t.State
	return t
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	return e.state
}

// Display returns the current view model.
func (e *Engine) Display() Display {
	return e.state.Display(e.cfg)
}

// Config returns the engine's rules.
func (e *Engine) Config() Config {
	return e.cfg
}

// RandomPicker selects uniformly and independently on each call. A nil
// source uses the global generator.
func RandomPicker(r *rand.Rand) Picker {
	return func(options []emotion.Label) emotion.Label {
		if len(options) == 0 {
			return emotion.None
		}
		if r == nil {
			return options[rand.IntN(len(options))]
		}
		return options[r.IntN(len(options))]
	}
}

// FixedPicker always returns the given targets in order, cycling. Useful for
// demos and tests.
func FixedPicker(targets ...emotion.Label) Picker {
	i := 0
	return func(options []emotion.Label) emotion.Label {
		if len(targets) == 0 {
			return emotion.None
		}
		t := targets[i%len(targets)]
		i++
		return t
	}
}
