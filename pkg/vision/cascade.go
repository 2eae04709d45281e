package vision

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-emotimeter/pkg/camera"
	"github.com/teslashibe/go-emotimeter/pkg/debug"
	"github.com/teslashibe/go-emotimeter/pkg/detection"
)

// Cascade locates frontal faces with a Haar cascade. It reports confidence
// 1 for every region since the cascade has no score.
type Cascade struct {
	classifier gocv.CascadeClassifier
	minSize    int
	gray       gocv.Mat
	mu         sync.Mutex
}

// NewCascade loads the cascade XML at path. Faces smaller than minSize
// pixels on a side are ignored.
func NewCascade(path string, minSize int) (*Cascade, error) {
	if err := checkModel(path); err != nil {
		return nil, err
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("load cascade %s: invalid file", path)
	}

	if minSize <= 0 {
		minSize = 30
	}

	return &Cascade{
		classifier: classifier,
		minSize:    minSize,
		gray:       gocv.NewMat(),
	}, nil
}

// Locate finds faces in the frame.
func (c *Cascade) Locate(frame camera.Frame) ([]detection.Detection, error) {
	if frame.Mat.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	toGray(frame.Mat, &c.gray)
	// Scale factor 1.1 and 5 neighbors, as the stock OpenCV face sample.
	rects := c.classifier.DetectMultiScaleWithParams(
		c.gray,
		1.1,
		5,
		0,
		image.Pt(c.minSize, c.minSize),
		image.Pt(0, 0),
	)

	dets := make([]detection.Detection, 0, len(rects))
	for _, r := range rects {
		dets = append(dets, detection.Detection{Region: r, Confidence: 1})
	}

	if len(dets) > 0 {
		debug.TrackLog("cascade found faces", "count", len(dets))
	}
	return dets, nil
}

// Close releases the classifier.
func (c *Cascade) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gray.Close()
	c.classifier.Close()
	return nil
}
