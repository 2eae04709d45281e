package render

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-emotimeter/pkg/camera"
	"github.com/teslashibe/go-emotimeter/pkg/debug"
	"github.com/teslashibe/go-emotimeter/pkg/session"
)

// FrameSink receives encoded frames.
type FrameSink interface {
	WantsFrames() bool
	SendCameraFrame(jpeg []byte)
}

// JPEGTap publishes the rendered frame as JPEG at most fps times a second,
// and only while the sink has viewers.
type JPEGTap struct {
	sink     FrameSink
	interval time.Duration
	last     time.Time
}

// NewJPEGTap creates a tap. fps <= 0 defaults to 5.
func NewJPEGTap(sink FrameSink, fps int) *JPEGTap {
	if fps <= 0 {
		fps = 5
	}
	return &JPEGTap{sink: sink, interval: time.Second / time.Duration(fps)}
}

// due reports whether a frame should be sent at now.
func (t *JPEGTap) due(now time.Time) bool {
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return false
	}
	return t.sink.WantsFrames()
}

// Render implements session.Renderer.
func (t *JPEGTap) Render(frame camera.Frame, scene session.Scene) error {
	if !t.due(scene.Now) {
		return nil
	}
	t.last = scene.Now

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame.Mat)
	if err != nil {
		return err
	}
	defer buf.Close()

	jpeg := append([]byte(nil), buf.GetBytes()...)
	t.sink.SendCameraFrame(jpeg)
	debug.TrackLog("camera frame published", "bytes", len(jpeg))
	return nil
}
