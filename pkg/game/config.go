package game

import (
	"fmt"
	"time"

	"github.com/teslashibe/go-emotimeter/pkg/emotion"
)

// Config holds the tunable rules of the game.
type Config struct {
	// Scoring
	Reward int // Points awarded per won round

	// Debounce
	HoldThreshold int // Consecutive matching frames needed to win a round

	// Timing
	Cooldown time.Duration // Pause between a won round and the next target

	// Targets
	Playable []emotion.Label // Emotions that may be chosen as a target
}

// DefaultConfig returns the classic game rules: +10 points, a 10 frame hold
// and a 2 second cooldown, targets drawn from happy/sad/surprise.
func DefaultConfig() Config {
	return Config{
		Reward:        10,
		HoldThreshold: 10,
		Cooldown:      2 * time.Second,
		Playable:      append([]emotion.Label(nil), emotion.DefaultPlayable...),
	}
}

// Validate checks the rules are playable.
func (c Config) Validate() error {
	var problems []string

	if c.Reward <= 0 {
		problems = append(problems, "reward must be positive")
	}
	if c.HoldThreshold < 1 {
		problems = append(problems, "hold threshold must be at least 1 frame")
	}
	if c.Cooldown < 0 {
		problems = append(problems, "cooldown must not be negative")
	}
	if len(c.Playable) == 0 {
		problems = append(problems, "at least one playable emotion is required")
	}
	for _, l := range c.Playable {
		if !l.Valid() {
			problems = append(problems, fmt.Sprintf("playable emotion %q is not in the vocabulary", l))
		}
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}
