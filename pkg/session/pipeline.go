package session

import (
	"context"
	"fmt"
	"time"

	"github.com/teslashibe/go-emotimeter/internal/log"
	"github.com/teslashibe/go-emotimeter/pkg/debug"
	"github.com/teslashibe/go-emotimeter/pkg/detection"
	"github.com/teslashibe/go-emotimeter/pkg/emotion"
	"github.com/teslashibe/go-emotimeter/pkg/game"
)

// Pipeline wires the collaborators of one game session.
type Pipeline[F Frame] struct {
	Source     Source[F]
	Locator    Locator[F]
	Classifier Classifier[F]
	Renderers  []Renderer[F]
	Keys       Keys // Optional
	Observers  []Observer
	Engine     *game.Engine

	// Policy selects the face that drives the round.
	Policy detection.Policy

	// AutoStart issues a start command on the first tick.
	AutoStart bool

	// Clock defaults to time.Now.
	Clock func() time.Time

	seq int
}

// Run processes ticks until the player quits, the source is exhausted or
// ctx is cancelled. The source is always closed before Run returns.
// Quit and end-of-stream return nil; cancellation returns ctx.Err().
func (p *Pipeline[F]) Run(ctx context.Context) (err error) {
	defer func() {
		if cerr := p.Source.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close source: %w", cerr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frame, ok := p.Source.Next()
		if !ok {
			log.Info("frame source exhausted, stopping")
			return nil
		}

		_, quit := p.Tick(frame, p.pollKey())
		if quit {
			log.Info("quit requested")
			return nil
		}
	}
}

func (p *Pipeline[F]) pollKey() int {
	if p.Keys == nil {
		return -1
	}
	return p.Keys.PollKey()
}

// Tick processes one frame with the key polled for it and reports whether
// the player asked to quit.
func (p *Pipeline[F]) Tick(frame F, key int) (Report, bool) {
	now := p.now()
	started := time.Now()

	cmd := game.CommandForKey(key)
	if p.AutoStart && p.seq == 0 {
		cmd = game.CommandStart
	}
	p.seq++

	located := p.locate(frame)
	valid := detection.Validate(located, frame.Bounds())
	faces := p.classifyAll(frame, valid)
	primary := detection.Primary(valid, p.Policy)

	tick := p.Engine.Advance(game.Input{
		Observation: observe(faces, primary),
		Command:     cmd,
		Now:         now,
	})

	scene := Scene{
		Display: tick.Display,
		Faces:   faces,
		Primary: primary,
		Now:     now,
	}
	for _, r := range p.Renderers {
		if err := r.Render(frame, scene); err != nil {
			log.Warn("render failed", "renderer", fmt.Sprintf("%T", r), "error", err)
		}
	}

	report := Report{
		Seq:      p.seq,
		Tick:     tick,
		Located:  len(located),
		Faces:    faces,
		Primary:  primary,
		Duration: time.Since(started),
	}
	for _, o := range p.Observers {
		o.Observe(report)
	}

	debug.TrackLog("tick",
		"seq", p.seq,
		"faces", len(faces),
		"phase", tick.State.Phase.String(),
		"hold", tick.State.Round.Hold,
		"feedback", tick.Display.Feedback,
	)

	return report, cmd == game.CommandQuit
}

func (p *Pipeline[F]) now() time.Time {
	if p.Clock != nil {
		return p.Clock()
	}
	return time.Now()
}

// locate treats a locator error as a frame without faces.
func (p *Pipeline[F]) locate(frame F) []detection.Detection {
	dets, err := p.Locator.Locate(frame)
	if err != nil {
		log.Debug("face locator failed", "error", err)
		return nil
	}
	return dets
}

// classifyAll labels every face independently; one region's failure never
// affects another.
func (p *Pipeline[F]) classifyAll(frame F, dets []detection.Detection) []emotion.Result {
	results := make([]emotion.Result, len(dets))
	for i, d := range dets {
		results[i] = p.classifyOne(frame, d)
	}
	return results
}

func (p *Pipeline[F]) classifyOne(frame F, d detection.Detection) (res emotion.Result) {
	res.Region = d.Region

	defer func() {
		if rec := recover(); rec != nil {
			res.Label = emotion.None
			res.Err = fmt.Errorf("%w: classifier panic: %v", emotion.ErrNotClassified, rec)
			log.Debug("classifier panicked", "region", d.Region.String(), "panic", rec)
		}
	}()

	label, err := p.Classifier.Classify(frame, d.Region)
	switch {
	case err != nil:
		res.Err = fmt.Errorf("%w: %w", emotion.ErrNotClassified, err)
		log.Debug("classification failed", "region", d.Region.String(), "error", err)
	case !label.Valid():
		res.Err = fmt.Errorf("%w: %w: %q", emotion.ErrNotClassified, emotion.ErrUnknownLabel, label)
	default:
		res.Label = label
	}
	return res
}

// observe turns the primary face's result into the state machine input.
func observe(faces []emotion.Result, primary int) game.Observation {
	if primary < 0 || primary >= len(faces) {
		return game.NoFace()
	}
	if f := faces[primary]; f.OK() {
		return game.Saw(f.Label)
	}
	return game.Unreadable()
}
