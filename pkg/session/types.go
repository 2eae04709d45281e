// Package session runs the emotimeter tick loop.
//
// One tick acquires a frame, locates faces, classifies every face region,
// advances the round state machine and renders the result, all in-line on
// the caller's goroutine. Ticks never overlap, so the game state needs no
// locking. The loop is generic over the frame type so it can be driven by
// gocv frames in production and by plain images in tests.
package session

import (
	"image"
	"time"

	"github.com/teslashibe/go-emotimeter/pkg/detection"
	"github.com/teslashibe/go-emotimeter/pkg/emotion"
	"github.com/teslashibe/go-emotimeter/pkg/game"
)

// Frame is anything with pixel bounds.
type Frame interface {
	Bounds() image.Rectangle
}

// Source yields frames until it is exhausted.
type Source[F Frame] interface {
	// Next returns the next frame. ok=false ends the session.
	Next() (frame F, ok bool)

	// Close releases the underlying device.
	Close() error
}

// Locator finds candidate face regions. Regions may be invalid; the
// pipeline validates them against the frame bounds.
type Locator[F Frame] interface {
	Locate(frame F) ([]detection.Detection, error)
}

// Classifier labels one face region. It may fail for any region.
type Classifier[F Frame] interface {
	Classify(frame F, region image.Rectangle) (emotion.Label, error)
}

// Renderer draws or publishes one tick. Renderers run in order, so a
// later renderer sees what earlier ones drew.
type Renderer[F Frame] interface {
	Render(frame F, scene Scene) error
}

// Keys is polled once per tick for a key code, -1 meaning no key.
type Keys interface {
	PollKey() int
}

// Observer is notified after every tick.
type Observer interface {
	Observe(r Report)
}

// Scene is everything a renderer needs besides the frame.
type Scene struct {
	Display game.Display
	Faces   []emotion.Result // Every valid face, in locator order
	Primary int              // Index into Faces of the scoring face, -1 if none
	Now     time.Time
}

// Report summarizes a completed tick.
type Report struct {
	Seq      int
	Tick     game.Tick
	Located  int // Regions returned by the locator, before validation
	Faces    []emotion.Result
	Primary  int
	Duration time.Duration // Wall time spent in the tick
}

// ClassifyFailures counts the faces without a label.
func (r Report) ClassifyFailures() int {
	n := 0
	for _, f := range r.Faces {
		if !f.OK() {
			n++
		}
	}
	return n
}

// MultiKeys polls several key sources and returns the first key pressed.
type MultiKeys []Keys

// PollKey implements Keys.
func (m MultiKeys) PollKey() int {
	for _, k := range m {
		if k == nil {
			continue
		}
		if key := k.PollKey(); key >= 0 {
			return key
		}
	}
	return -1
}
