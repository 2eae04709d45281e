// Package vision implements the gocv-backed face locators and emotion
// classifiers used by the game loop.
//
// Locators (Cascade, YuNet) return pixel regions with a confidence; the
// session validates them before use. Classifiers (FERPlus, Gemini) label a
// single face region and never look at the rest of the frame.
package vision

import (
	"errors"
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"
)

var (
	// ErrModelNotFound is returned when a model file does not exist.
	ErrModelNotFound = errors.New("vision: model file not found")

	// ErrEmptyRegion is returned when asked to classify an empty region.
	ErrEmptyRegion = errors.New("vision: empty face region")
)

func checkModel(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrModelNotFound, path)
	}
	return nil
}

// crop returns a view of region inside m. The caller must Close it.
func crop(m gocv.Mat, region image.Rectangle) (gocv.Mat, error) {
	region = region.Intersect(image.Rect(0, 0, m.Cols(), m.Rows()))
	if region.Empty() {
		return gocv.Mat{}, ErrEmptyRegion
	}
	return m.Region(region), nil
}

// toGray converts a BGR (or BGRA) image to single channel into dst.
func toGray(src gocv.Mat, dst *gocv.Mat) {
	switch src.Channels() {
	case 1:
		src.CopyTo(dst)
	case 4:
		gocv.CvtColor(src, dst, gocv.ColorBGRAToGray)
	default:
		gocv.CvtColor(src, dst, gocv.ColorBGRToGray)
	}
}
