// Package overlay loads the emoticon images and composites them over face
// regions.
package overlay

import (
	"errors"
	"fmt"
	"path/filepath"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-emotimeter/internal/log"
	"github.com/teslashibe/go-emotimeter/pkg/emotion"
)

// ErrAssetMissing is wrapped by Load for every image that could not be read.
var ErrAssetMissing = errors.New("overlay: asset missing")

// Assets names the emoticon image for each label plus a default shown for
// faces without a usable label.
type Assets struct {
	Dir     string
	Files   map[emotion.Label]string
	Default string
}

// DefaultAssets returns the stock file names inside dir.
func DefaultAssets(dir string) Assets {
	return Assets{
		Dir: dir,
		Files: map[emotion.Label]string{
			emotion.Happy:    "happy.png",
			emotion.Sad:      "sad.png",
			emotion.Fear:     "fear.png",
			emotion.Angry:    "angry.png",
			emotion.Surprise: "surprised.png",
			emotion.Neutral:  "neutral_emoji.png",
			emotion.Disgust:  "disgust_emoji.png",
		},
		Default: "unknown.png",
	}
}

// Set holds the decoded emoticons. Images keep their alpha channel.
type Set struct {
	images   map[emotion.Label]gocv.Mat
	fallback *gocv.Mat
}

// Load reads every asset once. Missing or unreadable files are warned about
// once and reported in the returned error; the Set is usable either way and
// simply has no image for those labels.
func Load(a Assets) (*Set, error) {
	s := &Set{images: make(map[emotion.Label]gocv.Mat, len(a.Files))}
	var errs []error

	for _, label := range emotion.Vocabulary {
		name, ok := a.Files[label]
		if !ok || name == "" {
			continue
		}
		img, err := read(a.Dir, name)
		if err != nil {
			log.WarnOnce("asset:"+name, "emoticon not loaded, default will be used", "emotion", label, "file", name)
			errs = append(errs, err)
			continue
		}
		s.images[label] = img
	}

	if a.Default != "" {
		img, err := read(a.Dir, a.Default)
		if err != nil {
			log.WarnOnce("asset:"+a.Default, "default emoticon not loaded, unlabeled faces get no overlay", "file", a.Default)
			errs = append(errs, err)
		} else {
			s.fallback = &img
		}
	}

	log.Debug("emoticons loaded", "count", s.Len(), "default", s.fallback != nil)
	return s, errors.Join(errs...)
}

func read(dir, name string) (gocv.Mat, error) {
	path := filepath.Join(dir, name)
	img := gocv.IMRead(path, gocv.IMReadUnchanged)
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, fmt.Errorf("%w: %s", ErrAssetMissing, path)
	}
	return img, nil
}

// Len returns the number of per-label images loaded, excluding the default.
func (s *Set) Len() int {
	return len(s.images)
}

// Select returns the emoticon for a face: its label's image, else the
// default. ok is false when neither is loaded.
func (s *Set) Select(r emotion.Result) (img gocv.Mat, ok bool) {
	if r.OK() {
		if img, ok := s.images[r.Label]; ok {
			return img, true
		}
	}
	if s.fallback != nil {
		return *s.fallback, true
	}
	return gocv.Mat{}, false
}

// Close releases every image.
func (s *Set) Close() error {
	for label, img := range s.images {
		img.Close()
		delete(s.images, label)
	}
	if s.fallback != nil {
		s.fallback.Close()
		s.fallback = nil
	}
	return nil
}
