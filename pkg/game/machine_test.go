package game

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/teslashibe/go-emotimeter/pkg/emotion"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// harness drives Step with a fake clock advancing 33ms per tick.
type harness struct {
	t     *testing.T
	cfg   Config
	state State
	now   time.Time
	pick  Picker
	won   int
}

func newHarness(t *testing.T, targets ...emotion.Label) *harness {
	t.Helper()
	return &harness{
		t:     t,
		cfg:   DefaultConfig(),
		state: NewState(),
		now:   t0,
		pick:  FixedPicker(targets...),
	}
}

func (h *harness) tick(obs Observation, cmd Command) Tick {
	h.now = h.now.Add(33 * time.Millisecond)
	tk := Step(h.cfg, h.state, Input{Observation: obs, Command: cmd, Now: h.now}, h.pick)
	for _, ev := range tk.Events {
		if ev.Kind == EventRoundWon {
			h.won++
		}
	}
	h.state = tk.State
	checkInvariants(h.t, h.cfg, tk)
	return tk
}

func (h *harness) start() {
	h.t.Helper()
	tk := h.tick(NoFace(), CommandStart)
	if tk.State.Phase != PhaseRoundActive {
		h.t.Fatalf("start: phase %v, want round_active", tk.State.Phase)
	}
}

func checkInvariants(t *testing.T, cfg Config, tk Tick) {
	t.Helper()
	s := tk.State
	if s.Round.Hold < 0 || s.Round.Hold > cfg.HoldThreshold {
		t.Fatalf("hold %d outside [0, %d]", s.Round.Hold, cfg.HoldThreshold)
	}
	if s.Active() && s.Round.Target == emotion.None {
		t.Fatal("active round without target")
	}
	d := tk.Display
	if s.Active() {
		if d.Progress == nil {
			t.Fatal("active round without progress")
		}
		want := float64(s.Round.Hold) / float64(cfg.HoldThreshold)
		if *d.Progress != want || *d.Progress < 0 || *d.Progress > 1 {
			t.Fatalf("progress %.3f, want %.3f", *d.Progress, want)
		}
	} else if d.Progress != nil {
		t.Fatalf("progress %.3f shown outside an active round", *d.Progress)
	}
}

func TestStep_StartSelectsTarget(t *testing.T) {
	h := newHarness(t, emotion.Happy)

	tk := h.tick(Saw(emotion.Happy), CommandNone)
	if tk.State.Phase != PhaseNotStarted {
		t.Fatalf("game started without command")
	}
	if tk.Display.Feedback != "Press 's' to start the game!" {
		t.Errorf("idle feedback: %q", tk.Display.Feedback)
	}

	tk = h.tick(Saw(emotion.Happy), CommandStart)
	if tk.State.Round.Target != emotion.Happy {
		t.Errorf("target %q, want happy", tk.State.Round.Target)
	}
	if tk.State.Round.Hold != 1 {
		t.Errorf("hold %d after start, want 1 from the start frame", tk.State.Round.Hold)
	}
	if tk.Display.Feedback != "Keep holding HAPPY! (1/10)" {
		t.Errorf("start frame feedback: %q", tk.Display.Feedback)
	}
	if len(tk.Events) != 1 || tk.Events[0].Kind != EventRoundStarted || tk.Events[0].Round.Number != 1 {
		t.Errorf("expected round 1 started event, got %+v", tk.Events)
	}
}

func TestStep_StartFrameIsScored(t *testing.T) {
	tests := []struct {
		name     string
		obs      Observation
		hold     int
		feedback string
	}{
		{name: "match", obs: Saw(emotion.Happy), hold: 1, feedback: "Keep holding HAPPY! (1/10)"},
		{name: "wrong emotion", obs: Saw(emotion.Sad), hold: 0, feedback: "Not sad. Show: HAPPY"},
		{name: "no face", obs: NoFace(), hold: 0, feedback: "Face not found. Show: HAPPY"},
		{name: "unreadable", obs: Unreadable(), hold: 0, feedback: "Show a HAPPY face!"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, emotion.Happy)
			tk := h.tick(tc.obs, CommandStart)
			if tk.State.Phase != PhaseRoundActive {
				t.Fatalf("phase %v, want round_active", tk.State.Phase)
			}
			if tk.State.Round.Hold != tc.hold {
				t.Errorf("hold %d, want %d", tk.State.Round.Hold, tc.hold)
			}
			if tk.Display.Feedback != tc.feedback {
				t.Errorf("feedback %q, want %q", tk.Display.Feedback, tc.feedback)
			}
		})
	}

	// The prompt gives way once a readable frame arrives.
	h := newHarness(t, emotion.Happy)
	h.tick(Unreadable(), CommandStart)
	if tk := h.tick(Unreadable(), CommandNone); tk.Display.Feedback != "Show a HAPPY face!" {
		t.Errorf("second unreadable frame: %q", tk.Display.Feedback)
	}
	if tk := h.tick(Saw(emotion.Fear), CommandNone); tk.Display.Feedback != "Not fear. Show: HAPPY" {
		t.Errorf("readable frame after prompt: %q", tk.Display.Feedback)
	}
	if tk := h.tick(Unreadable(), CommandNone); tk.Display.Feedback != "Can't read your face. Show: HAPPY" {
		t.Errorf("unreadable after a miss: %q", tk.Display.Feedback)
	}
}

func TestStep_WinOnStartFrame(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HoldThreshold = 1

	tk := Step(cfg, NewState(), Input{Observation: Saw(emotion.Happy), Command: CommandStart, Now: t0}, FixedPicker(emotion.Happy))
	if tk.State.Phase != PhaseCooldown {
		t.Fatalf("phase %v, want cooldown", tk.State.Phase)
	}
	if tk.State.Score != 10 {
		t.Errorf("score %d, want 10", tk.State.Score)
	}
	if len(tk.Events) != 2 || tk.Events[0].Kind != EventRoundStarted || tk.Events[1].Kind != EventRoundWon {
		t.Fatalf("events %+v, want started then won", tk.Events)
	}
	if tk.Events[1].Elapsed != 0 || tk.Events[1].Score != 10 {
		t.Errorf("won event %+v", tk.Events[1])
	}
	if !tk.State.CooldownUntil.Equal(t0.Add(cfg.Cooldown)) {
		t.Errorf("cooldown until %v", tk.State.CooldownUntil)
	}
}

func TestStep_SuccessAtExactlyThreshold(t *testing.T) {
	h := newHarness(t, emotion.Happy)
	h.start()

	for i := 1; i < h.cfg.HoldThreshold; i++ {
		tk := h.tick(Saw(emotion.Happy), CommandNone)
		if tk.State.Phase != PhaseRoundActive {
			t.Fatalf("tick %d: round ended early", i)
		}
		if tk.State.Round.Hold != i {
			t.Fatalf("tick %d: hold %d", i, tk.State.Round.Hold)
		}
		if tk.Display.Severity != SeverityProgress {
			t.Fatalf("tick %d: severity %v, want progress", i, tk.Display.Severity)
		}
	}

	tk := h.tick(Saw(emotion.Happy), CommandNone)
	if tk.State.Phase != PhaseCooldown {
		t.Fatalf("phase %v after threshold, want cooldown", tk.State.Phase)
	}
	if tk.State.Score != 10 {
		t.Errorf("score %d, want 10", tk.State.Score)
	}
	if tk.Display.Feedback != "GREAT! +10 Points for HAPPY!" || tk.Display.Severity != SeverityPositive {
		t.Errorf("success display: %q (%v)", tk.Display.Feedback, tk.Display.Severity)
	}

	// Matching frames during cooldown score nothing.
	for i := 0; i < 20; i++ {
		h.tick(Saw(emotion.Happy), CommandNone)
	}
	if h.state.Score != 10 || h.won != 1 {
		t.Errorf("score %d after %d wins, want 10 after 1", h.state.Score, h.won)
	}
}

func TestStep_MissResetsProgress(t *testing.T) {
	misses := map[string]Observation{
		"wrong emotion": Saw(emotion.Sad),
		"no face":       NoFace(),
		"unreadable":    Unreadable(),
	}

	for name, miss := range misses {
		t.Run(name, func(t *testing.T) {
			for prior := 0; prior < 10; prior++ {
				h := newHarness(t, emotion.Happy)
				h.start()
				for i := 0; i < prior; i++ {
					h.tick(Saw(emotion.Happy), CommandNone)
				}
				tk := h.tick(miss, CommandNone)
				if tk.State.Round.Hold != 0 {
					t.Fatalf("prior=%d: hold %d after miss", prior, tk.State.Round.Hold)
				}
				if tk.Display.Severity != SeverityAlert {
					t.Fatalf("prior=%d: severity %v, want alert", prior, tk.Display.Severity)
				}
			}
		})
	}
}

func TestStep_MissFeedbackText(t *testing.T) {
	tests := []struct {
		obs  Observation
		want string
	}{
		{obs: Saw(emotion.Sad), want: "Not sad. Show: HAPPY"},
		{obs: NoFace(), want: "Face not found. Show: HAPPY"},
		{obs: Unreadable(), want: "Can't read your face. Show: HAPPY"},
	}

	for _, tc := range tests {
		h := newHarness(t, emotion.Happy)
		h.start()
		tk := h.tick(tc.obs, CommandNone)
		if tk.Display.Feedback != tc.want {
			t.Errorf("feedback %q, want %q", tk.Display.Feedback, tc.want)
		}
	}
}

func TestStep_InterruptedRunScenario(t *testing.T) {
	h := newHarness(t, emotion.Happy)
	h.start()

	for i := 0; i < 9; i++ {
		h.tick(Saw(emotion.Happy), CommandNone)
	}
	tk := h.tick(Saw(emotion.Sad), CommandNone)
	if tk.State.Round.Hold != 0 {
		t.Fatalf("hold %d after sad frame, want 0", tk.State.Round.Hold)
	}

	for i := 1; i <= 10; i++ {
		tk = h.tick(Saw(emotion.Happy), CommandNone)
		if i < 10 && tk.State.Phase != PhaseRoundActive {
			t.Fatalf("won after %d frames of the second run", i)
		}
	}
	if tk.State.Phase != PhaseCooldown {
		t.Fatalf("not won after 10 frames of the second run")
	}
	if h.state.Score != 10 || h.won != 1 {
		t.Errorf("score %d / wins %d, want 10 / 1", h.state.Score, h.won)
	}
}

func TestStep_NoFaceWholeRound(t *testing.T) {
	h := newHarness(t, emotion.Surprise)
	h.start()

	for i := 0; i < 200; i++ {
		tk := h.tick(NoFace(), CommandNone)
		if tk.State.Round.Hold != 0 {
			t.Fatalf("tick %d: hold %d", i, tk.State.Round.Hold)
		}
		if !strings.HasPrefix(tk.Display.Feedback, "Face not found") {
			t.Fatalf("tick %d: feedback %q", i, tk.Display.Feedback)
		}
	}
	if h.won != 0 || h.state.Score != 0 {
		t.Errorf("unexpected success: wins=%d score=%d", h.won, h.state.Score)
	}
}

func TestStep_TargetFixedDuringRound(t *testing.T) {
	h := newHarness(t, emotion.Sad, emotion.Happy)
	h.start()

	obs := []Observation{Saw(emotion.Happy), NoFace(), Saw(emotion.Sad), Unreadable(), Saw(emotion.Fear)}
	for i := 0; i < 50; i++ {
		tk := h.tick(obs[i%len(obs)], CommandNone)
		if tk.State.Round.Target != emotion.Sad {
			t.Fatalf("tick %d: target changed to %q", i, tk.State.Round.Target)
		}
	}
}

func TestStep_CooldownDeadline(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HoldThreshold = 1
	pick := FixedPicker(emotion.Happy, emotion.Sad)

	s := NewState()
	tk := Step(cfg, s, Input{Command: CommandStart, Now: t0}, pick)
	tk = Step(cfg, tk.State, Input{Observation: Saw(emotion.Happy), Now: t0}, pick)
	if tk.State.Phase != PhaseCooldown {
		t.Fatalf("phase %v, want cooldown", tk.State.Phase)
	}
	won := tk.State

	before := Step(cfg, won, Input{Observation: Saw(emotion.Sad), Now: t0.Add(1900 * time.Millisecond)}, pick)
	if before.State.Phase != PhaseCooldown {
		t.Fatalf("+1.9s: phase %v, want cooldown", before.State.Phase)
	}
	if before.Display.Feedback != "GREAT! +10 Points for HAPPY!" {
		t.Errorf("+1.9s: feedback %q", before.Display.Feedback)
	}
	if before.State.Round.Number != 1 {
		t.Errorf("+1.9s: new round selected")
	}

	after := Step(cfg, won, Input{Observation: Unreadable(), Now: t0.Add(2100 * time.Millisecond)}, pick)
	if after.State.Phase != PhaseRoundActive {
		t.Fatalf("+2.1s: phase %v, want round_active", after.State.Phase)
	}
	if after.State.Round.Number != 2 || after.State.Round.Target != emotion.Sad {
		t.Errorf("+2.1s: round %+v", after.State.Round)
	}

	// With a threshold of one, a matching selection frame wins the new round outright.
	scored := Step(cfg, won, Input{Observation: Saw(emotion.Sad), Now: t0.Add(2100 * time.Millisecond)}, FixedPicker(emotion.Sad))
	if scored.State.Round.Number != 2 || scored.State.Round.Hold != 1 {
		t.Errorf("+2.1s: round %+v, want round 2 with hold 1", scored.State.Round)
	}
	if scored.State.Phase != PhaseCooldown || scored.State.Score != 20 {
		t.Errorf("+2.1s: phase %v score %d, want cooldown with 20", scored.State.Phase, scored.State.Score)
	}
	if len(scored.Events) != 2 || scored.Events[1].Kind != EventRoundWon {
		t.Errorf("+2.1s: events %+v", scored.Events)
	}
}

func TestStep_StartIsNoOpWhileRunning(t *testing.T) {
	cfg := DefaultConfig()
	pick := FixedPicker(emotion.Happy, emotion.Sad)

	s := Step(cfg, NewState(), Input{Command: CommandStart, Now: t0}, pick).State
	for i := 0; i < 4; i++ {
		s = Step(cfg, s, Input{Observation: Saw(emotion.Happy), Now: t0}, pick).State
	}

	again := Step(cfg, s, Input{Observation: Saw(emotion.Happy), Command: CommandStart, Now: t0}, pick)
	if again.State.Round.Target != emotion.Happy || again.State.Round.Number != 1 {
		t.Errorf("start re-selected the target: %+v", again.State.Round)
	}
	if again.State.Round.Hold != 5 {
		t.Errorf("hold %d, want 5 (start must not reset progress)", again.State.Round.Hold)
	}

	cool := s
	cool.Phase = PhaseCooldown
	cool.CooldownUntil = t0.Add(time.Hour)
	cool.Score = 30
	tk := Step(cfg, cool, Input{Command: CommandStart, Now: t0}, pick)
	if tk.State.Phase != PhaseCooldown || tk.State.Score != 30 || tk.State.Round != cool.Round {
		t.Errorf("start changed cooldown state: %+v", tk.State)
	}
}

func TestStep_DoesNotMutateInput(t *testing.T) {
	cfg := DefaultConfig()
	s := NewState()
	_ = Step(cfg, s, Input{Command: CommandStart, Now: t0}, FixedPicker(emotion.Happy))
	if s.Phase != PhaseNotStarted {
		t.Error("Step mutated its input state")
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	bad := Config{Reward: 0, HoldThreshold: 0, Cooldown: -time.Second, Playable: []emotion.Label{"bored"}}
	err := bad.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) || len(cerr.Problems) != 4 {
		t.Errorf("expected 4 problems, got %v", err)
	}
}

func TestCommandForKey(t *testing.T) {
	tests := []struct {
		key  int
		want Command
	}{
		{key: -1, want: CommandNone},
		{key: 's', want: CommandStart},
		{key: 'S', want: CommandStart},
		{key: 'q', want: CommandQuit},
		{key: 27, want: CommandQuit},
		{key: 0x100 | 's', want: CommandStart},
		{key: 'x', want: CommandNone},
	}
	for _, tc := range tests {
		if got := CommandForKey(tc.key); got != tc.want {
			t.Errorf("CommandForKey(%d) = %v, want %v", tc.key, got, tc.want)
		}
	}
}
