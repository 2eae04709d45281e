// Package emotion defines the closed emotion vocabulary shared by the
// classifier, the round state machine and the emoticon overlays.
package emotion

import (
	"fmt"
	"strings"
)

// Label is one value from the recognizable emotion vocabulary.
// The zero value means "no label".
type Label string

// Vocabulary labels.
const (
	None     Label = ""
	Happy    Label = "happy"
	Sad      Label = "sad"
	Fear     Label = "fear"
	Angry    Label = "angry"
	Surprise Label = "surprise"
	Neutral  Label = "neutral"
	Disgust  Label = "disgust"
)

// Vocabulary lists every label a classifier may produce, in a stable order.
var Vocabulary = []Label{Happy, Sad, Fear, Angry, Surprise, Neutral, Disgust}

// DefaultPlayable is the subset of the vocabulary used as round targets.
var DefaultPlayable = []Label{Happy, Sad, Surprise}

// Valid reports whether l is part of the vocabulary.
func (l Label) Valid() bool {
	for _, v := range Vocabulary {
		if l == v {
			return true
		}
	}
	return false
}

// Upper returns the label as shown on screen ("HAPPY").
func (l Label) Upper() string {
	return strings.ToUpper(string(l))
}

func (l Label) String() string {
	if l == None {
		return "none"
	}
	return string(l)
}

// aliases maps classifier-specific names onto the vocabulary.
var aliases = map[string]Label{
	"happiness": Happy,
	"sadness":   Sad,
	"anger":     Angry,
	"surprised": Surprise,
	"fearful":   Fear,
	"disgusted": Disgust,
	"contempt":  Disgust,
}

// Parse maps a free-form name onto the vocabulary. It accepts the canonical
// names, common synonyms produced by FER-style models, and is case-insensitive.
func Parse(s string) (Label, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.Trim(name, ".!\"'")
	if l := Label(name); l.Valid() {
		return l, nil
	}
	if l, ok := aliases[name]; ok {
		return l, nil
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownLabel, s)
}

// ParseList parses a list of names, rejecting duplicates.
func ParseList(names []string) ([]Label, error) {
	seen := make(map[Label]bool, len(names))
	labels := make([]Label, 0, len(names))
	for _, n := range names {
		l, err := Parse(n)
		if err != nil {
			return nil, err
		}
		if seen[l] {
			return nil, fmt.Errorf("duplicate emotion %q", l)
		}
		seen[l] = true
		labels = append(labels, l)
	}
	return labels, nil
}
