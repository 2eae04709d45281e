// Package detection holds the face-region model shared by every locator
// backend: region validation and the primary-face policy.
package detection

import (
	"fmt"
	"image"
)

// Detection is one candidate face region in frame pixel coordinates.
type Detection struct {
	Region     image.Rectangle
	Confidence float64 // Detector score in 0-1, 1 when the backend has none
}

// Area returns the region area in pixels.
func (d Detection) Area() int {
	return d.Region.Dx() * d.Region.Dy()
}

// Validate drops regions that are empty or not fully inside bounds.
// Locators give no guarantee about either, and cropping an out-of-bounds
// region would fail further down. Order is preserved.
func Validate(dets []Detection, bounds image.Rectangle) []Detection {
	valid := make([]Detection, 0, len(dets))
	for _, d := range dets {
		if d.Region.Empty() || !d.Region.In(bounds) {
			continue
		}
		valid = append(valid, d)
	}
	return valid
}

// Policy decides which face is authoritative for scoring.
type Policy int

const (
	// PrimaryFirst uses the first valid region returned by the locator.
	PrimaryFirst Policy = iota

	// PrimaryBest weighs confidence and relative size, for backends whose
	// output order carries no meaning.
	PrimaryBest
)

// String returns the policy name used in configuration.
func (p Policy) String() string {
	switch p {
	case PrimaryBest:
		return "best"
	default:
		return "first"
	}
}

// ParsePolicy maps a configuration value onto a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "first":
		return PrimaryFirst, nil
	case "best":
		return PrimaryBest, nil
	default:
		return PrimaryFirst, fmt.Errorf("unknown primary face policy %q (want first or best)", s)
	}
}

// Primary returns the index of the authoritative face, or -1 when dets is empty.
func Primary(dets []Detection, p Policy) int {
	if len(dets) == 0 {
		return -1
	}
	if p == PrimaryBest {
		return selectBest(dets)
	}
	return 0
}

// selectBest scores each face as confidence*0.7 + relative area*0.3.
func selectBest(dets []Detection) int {
	maxArea := 0
	for _, d := range dets {
		if a := d.Area(); a > maxArea {
			maxArea = a
		}
	}
	if maxArea == 0 {
		return 0
	}

	best, bestScore := 0, -1.0
	for i, d := range dets {
		score := d.Confidence*0.7 + float64(d.Area())/float64(maxArea)*0.3
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
