package vision

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-emotimeter/pkg/camera"
	"github.com/teslashibe/go-emotimeter/pkg/emotion"
)

// FER+ takes a 64x64 grayscale face and scores eight classes.
const ferPlusInput = 64

// ferPlusClasses is the model's output order. Contempt is not in the game
// vocabulary and folds into disgust.
var ferPlusClasses = [...]emotion.Label{
	emotion.Neutral,
	emotion.Happy,
	emotion.Surprise,
	emotion.Sad,
	emotion.Angry,
	emotion.Disgust,
	emotion.Fear,
	emotion.Disgust,
}

// FERPlus classifies face crops with the ONNX FER+ model through gocv's DNN module.
type FERPlus struct {
	net  gocv.Net
	gray gocv.Mat
	face gocv.Mat
	mu   sync.Mutex // Protects inference and scratch mats
}

// NewFERPlus loads the model at path.
func NewFERPlus(path string) (*FERPlus, error) {
	if err := checkModel(path); err != nil {
		return nil, err
	}

	net := gocv.ReadNetFromONNX(path)
	if net.Empty() {
		return nil, fmt.Errorf("load FER+ model %s: empty network", path)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &FERPlus{
		net:  net,
		gray: gocv.NewMat(),
		face: gocv.NewMat(),
	}, nil
}

// Classify labels the face inside region.
func (f *FERPlus) Classify(frame camera.Frame, region image.Rectangle) (emotion.Label, error) {
	roi, err := crop(frame.Mat, region)
	if err != nil {
		return emotion.None, err
	}
	defer roi.Close()

	f.mu.Lock()
	defer f.mu.Unlock()

	toGray(roi, &f.gray)
	gocv.Resize(f.gray, &f.face, image.Pt(ferPlusInput, ferPlusInput), 0, 0, gocv.InterpolationLinear)

	// The model expects raw 0-255 intensities.
	blob := gocv.BlobFromImage(f.face, 1.0, image.Pt(ferPlusInput, ferPlusInput), gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	f.net.SetInput(blob, "")
	out := f.net.Forward("")
	defer out.Close()

	scores, err := out.DataPtrFloat32()
	if err != nil {
		return emotion.None, fmt.Errorf("read FER+ output: %w", err)
	}
	return argmaxLabel(scores)
}

// argmaxLabel maps the highest FER+ score to a vocabulary label.
func argmaxLabel(scores []float32) (emotion.Label, error) {
	if len(scores) != len(ferPlusClasses) {
		return emotion.None, fmt.Errorf("FER+ output has %d scores, want %d", len(scores), len(ferPlusClasses))
	}
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return ferPlusClasses[best], nil
}

// Close releases the network.
func (f *FERPlus) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gray.Close()
	f.face.Close()
	f.net.Close()
	return nil
}
