package camera

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-emotimeter/internal/log"
)

// ErrOpen is returned when the capture device cannot be opened.
var ErrOpen = errors.New("camera: cannot open device")

// Frame is one captured image. Its Mat is owned by the Capture and is
// overwritten by the next call to Next.
type Frame struct {
	Mat gocv.Mat
	Seq int
}

// Bounds returns the frame's pixel rectangle.
func (f Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Mat.Cols(), f.Mat.Rows())
}

// Capture reads frames from a camera or video file.
type Capture struct {
	cfg    Config
	device *gocv.VideoCapture
	buf    gocv.Mat
	seq    int
}

// Open opens the configured device.
func Open(cfg Config) (*Capture, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("camera config: %v", errs)
	}

	device, err := gocv.OpenVideoCapture(cfg.DeviceID())
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrOpen, cfg.Device, err)
	}
	if !device.IsOpened() {
		device.Close()
		return nil, fmt.Errorf("%w %q", ErrOpen, cfg.Device)
	}

	if !cfg.IsFile() {
		if cfg.Width > 0 {
			device.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
		}
		if cfg.Height > 0 {
			device.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
		}
		if cfg.Framerate > 0 {
			device.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
		}
	}

	log.Info("camera opened",
		"device", cfg.Device,
		"width", int(device.Get(gocv.VideoCaptureFrameWidth)),
		"height", int(device.Get(gocv.VideoCaptureFrameHeight)),
		"fps", device.Get(gocv.VideoCaptureFPS),
	)

	return &Capture{
		cfg:    cfg,
		device: device,
		buf:    gocv.NewMat(),
	}, nil
}

// Next reads the next frame. ok=false means the device is exhausted or failed.
func (c *Capture) Next() (Frame, bool) {
	if ok := c.device.Read(&c.buf); !ok || c.buf.Empty() {
		return Frame{}, false
	}
	c.seq++
	return Frame{Mat: c.buf, Seq: c.seq}, true
}

// Close releases the device and the frame buffer.
func (c *Capture) Close() error {
	c.buf.Close()
	return c.device.Close()
}
