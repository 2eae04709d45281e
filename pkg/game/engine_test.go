package game

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/teslashibe/go-emotimeter/pkg/emotion"
)

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HoldThreshold = 0
	if _, err := NewEngine(cfg, nil); err == nil {
		t.Fatal("expected error for zero hold threshold")
	}
}

func TestEngine_Advance(t *testing.T) {
	e, err := NewEngine(DefaultConfig(), FixedPicker(emotion.Surprise))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	e.Advance(Input{Command: CommandStart, Now: t0})
	for i := 0; i < 10; i++ {
		e.Advance(Input{Observation: Saw(emotion.Surprise), Now: t0})
	}

	if e.State().Score != 10 {
		t.Errorf("score %d, want 10", e.State().Score)
	}
	if e.Display().Phase != PhaseCooldown {
		t.Errorf("phase %v, want cooldown", e.Display().Phase)
	}
}

func TestRandomPicker_StaysInPlayableSet(t *testing.T) {
	pick := RandomPicker(rand.New(rand.NewPCG(1, 2)))
	seen := map[emotion.Label]int{}
	for i := 0; i < 300; i++ {
		l := pick(emotion.DefaultPlayable)
		seen[l]++
	}
	for l := range seen {
		if l != emotion.Happy && l != emotion.Sad && l != emotion.Surprise {
			t.Fatalf("picked non-playable %q", l)
		}
	}
	if len(seen) != 3 {
		t.Errorf("expected all 3 targets over 300 picks, got %v", seen)
	}
}

func TestDisplay_JSON(t *testing.T) {
	e, _ := NewEngine(DefaultConfig(), FixedPicker(emotion.Happy))
	e.Advance(Input{Command: CommandStart, Now: t0})
	e.Advance(Input{Observation: Saw(emotion.Happy), Now: t0})

	data, err := json.Marshal(e.Display())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"phase":"round_active"`, `"target":"happy"`, `"progress":0.1`, `"severity":"progress"`} {
		if !strings.Contains(s, want) {
			t.Errorf("display JSON %s missing %s", s, want)
		}
	}

	var back Display
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back.Phase != PhaseRoundActive || back.Severity != SeverityProgress || back.Progress == nil {
		t.Errorf("decoded display = %+v", back)
	}

	var p Phase
	if err := p.UnmarshalText([]byte("paused")); err == nil {
		t.Error("expected error for unknown phase")
	}

	idle, _ := json.Marshal(NewState().Display(DefaultConfig()))
	if strings.Contains(string(idle), "progress\"") || strings.Contains(string(idle), "target") {
		t.Errorf("idle display should omit target and progress: %s", idle)
	}
}
