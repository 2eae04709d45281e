package emotion

import "image"

// Result is the outcome of classifying one face region. A failed
// classification keeps the region but carries no label.
type Result struct {
	Region image.Rectangle
	Label  Label
	Err    error
}

// OK reports whether the region produced a usable label.
func (r Result) OK() bool {
	return r.Err == nil && r.Label != None
}

// LabelOr returns the label, or fallback when classification failed.
func (r Result) LabelOr(fallback Label) Label {
	if r.OK() {
		return r.Label
	}
	return fallback
}
