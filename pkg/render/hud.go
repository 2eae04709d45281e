// Package render draws the game HUD onto camera frames and shows them.
package render

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-emotimeter/pkg/camera"
	"github.com/teslashibe/go-emotimeter/pkg/debug"
	"github.com/teslashibe/go-emotimeter/pkg/game"
	"github.com/teslashibe/go-emotimeter/pkg/overlay"
	"github.com/teslashibe/go-emotimeter/pkg/session"
)

// Colors.
var (
	White    = color.RGBA{255, 255, 255, 0}
	Green    = color.RGBA{0, 255, 0, 0}
	Yellow   = color.RGBA{255, 255, 0, 0}
	Red      = color.RGBA{255, 0, 0, 0}
	MeterBed = color.RGBA{50, 50, 50, 0}
)

// Meter geometry.
var Meter = image.Rect(10, 50, 210, 75)

// SeverityColor maps feedback severity to its text color.
func SeverityColor(s game.Severity) color.RGBA {
	switch s {
	case game.SeverityPositive:
		return Green
	case game.SeverityProgress:
		return Yellow
	default:
		return Red
	}
}

// meterFill returns the filled width of a meter of the given width.
func meterFill(d game.Display, width int) int {
	if d.Threshold <= 0 {
		return 0
	}
	frac := float64(d.Hold) / float64(d.Threshold)
	if d.Progress != nil {
		frac = *d.Progress
	}
	frac = max(0, min(1, frac))
	return int(frac * float64(width))
}

// HUD composites emoticons over faces and draws the target, score, hold
// meter, feedback line and FPS readout.
type HUD struct {
	overlays *overlay.Set
	fps      fpsMeter
}

// NewHUD creates a HUD. overlays may be nil to draw no emoticons.
func NewHUD(overlays *overlay.Set) *HUD {
	return &HUD{overlays: overlays}
}

// Render implements session.Renderer.
func (h *HUD) Render(frame camera.Frame, scene session.Scene) error {
	m := &frame.Mat
	if m.Empty() {
		return fmt.Errorf("empty frame")
	}
	w, ht := m.Cols(), m.Rows()

	h.drawFaces(m, scene)

	d := scene.Display
	if !d.Started() {
		gocv.PutText(m, d.Feedback, image.Pt(10, ht-60), gocv.FontHersheySimplex, 0.7, Red, 2)
	} else {
		if d.Target != "" {
			gocv.PutText(m, "Target: "+d.Target.Upper(), image.Pt(10, 30), gocv.FontHersheySimplex, 0.7, White, 2)
		}
		gocv.PutText(m, fmt.Sprintf("Score: %d", d.Score), image.Pt(w-150, 30), gocv.FontHersheySimplex, 0.7, White, 2)

		gocv.Rectangle(m, Meter, MeterBed, -1)
		if fill := meterFill(d, Meter.Dx()); fill > 0 {
			gocv.Rectangle(m, image.Rect(Meter.Min.X, Meter.Min.Y, Meter.Min.X+fill, Meter.Max.Y), Green, -1)
		}
		gocv.Rectangle(m, Meter, White, 2)

		if d.Feedback != "" {
			gocv.PutText(m, d.Feedback, image.Pt(10, ht-30), gocv.FontHersheySimplex, 0.6, SeverityColor(d.Severity), 2)
		}
	}

	if text := h.fps.tick(scene.Now); text != "" {
		gocv.PutText(m, text, image.Pt(w-150, ht-10), gocv.FontHersheySimplex, 0.6, Green, 2)
	}
	return nil
}

func (h *HUD) drawFaces(m *gocv.Mat, scene session.Scene) {
	if h.overlays == nil {
		return
	}
	for _, face := range scene.Faces {
		img, ok := h.overlays.Select(face)
		if !ok {
			continue
		}
		if err := overlay.Composite(m, img, face.Region); err != nil {
			debug.Log("overlay skipped", "region", face.Region, "error", err)
		}
	}
}

// fpsMeter counts frames and refreshes its readout once per second.
type fpsMeter struct {
	start  time.Time
	frames int
	text   string
}

func (f *fpsMeter) tick(now time.Time) string {
	if f.start.IsZero() {
		f.start = now
	}
	f.frames++
	if elapsed := now.Sub(f.start); elapsed > time.Second {
		f.text = fmt.Sprintf("FPS: %.2f", float64(f.frames)/elapsed.Seconds())
		f.start = now
		f.frames = 0
	}
	return f.text
}
