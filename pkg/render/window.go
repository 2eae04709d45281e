package render

import (
	"gocv.io/x/gocv"

	"github.com/teslashibe/go-emotimeter/pkg/camera"
	"github.com/teslashibe/go-emotimeter/pkg/session"
)

// DefaultTitle is the window title.
const DefaultTitle = `Emotion-Meter Game (Press "s" to start, "q" to quit)`

// Window shows frames in a native window and reads its keyboard.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a titled window.
func NewWindow(title string) *Window {
	if title == "" {
		title = DefaultTitle
	}
	return &Window{win: gocv.NewWindow(title)}
}

// Render implements session.Renderer.
func (w *Window) Render(frame camera.Frame, _ session.Scene) error {
	w.win.IMShow(frame.Mat)
	return nil
}

// PollKey implements session.Keys. It also pumps the window's event loop.
func (w *Window) PollKey() int {
	return w.win.WaitKey(1)
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
