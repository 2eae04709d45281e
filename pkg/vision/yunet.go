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

// YuNetConfig holds YuNet detector settings.
type YuNetConfig struct {
	ModelPath        string  // Path to ONNX model
	ConfidenceThresh float64 // Minimum confidence (default 0.5)
	InputWidth       int     // Initial input width, reset per frame
	InputHeight      int     // Initial input height, reset per frame
}

// DefaultYuNetConfig returns production defaults for YuNet
func DefaultYuNetConfig() YuNetConfig {
	return YuNetConfig{
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.5,
		InputWidth:       320,
		InputHeight:      320,
	}
}

// YuNet uses OpenCV's FaceDetectorYN for face location.
type YuNet struct {
	detector gocv.FaceDetectorYN
	config   YuNetConfig
	size     image.Point
	mu       sync.Mutex // Protects inference
}

// NewYuNet creates a YuNet locator from an ONNX model.
func NewYuNet(cfg YuNetConfig) (*YuNet, error) {
	if err := checkModel(cfg.ModelPath); err != nil {
		return nil, err
	}

	size := image.Pt(cfg.InputWidth, cfg.InputHeight)
	// No config file for ONNX; NMS threshold 0.3, top K 5000.
	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"",
		size,
		float32(cfg.ConfidenceThresh),
		0.3,
		5000,
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNet{
		detector: detector,
		config:   cfg,
		size:     size,
	}, nil
}

// Locate finds faces in the frame.
func (y *YuNet) Locate(frame camera.Frame) ([]detection.Detection, error) {
	if frame.Mat.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	y.mu.Lock()
	defer y.mu.Unlock()

	if sz := image.Pt(frame.Mat.Cols(), frame.Mat.Rows()); sz != y.size {
		y.detector.SetInputSize(sz)
		y.size = sz
	}

	faces := gocv.NewMat()
	defer faces.Close()

	y.detector.Detect(frame.Mat, &faces)

	dets := make([]detection.Detection, 0, faces.Rows())
	for r := 0; r < faces.Rows(); r++ {
		// Row layout: x, y, w, h, five landmark pairs, score.
		x := int(faces.GetFloatAt(r, 0))
		yy := int(faces.GetFloatAt(r, 1))
		w := int(faces.GetFloatAt(r, 2))
		h := int(faces.GetFloatAt(r, 3))
		dets = append(dets, detection.Detection{
			Region:     image.Rect(x, yy, x+w, yy+h),
			Confidence: float64(faces.GetFloatAt(r, 14)),
		})
	}

	if len(dets) > 0 {
		debug.TrackLog("yunet found faces", "count", len(dets))
	}
	return dets, nil
}

// Close releases the detector resources
func (y *YuNet) Close() error {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.detector.Close()
	return nil
}
