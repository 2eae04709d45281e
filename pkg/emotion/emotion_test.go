package emotion

import (
	"errors"
	"image"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Label
		wantErr bool
	}{
		{in: "happy", want: Happy},
		{in: " HAPPY ", want: Happy},
		{in: "Happiness", want: Happy},
		{in: "sadness", want: Sad},
		{in: "surprised", want: Surprise},
		{in: "contempt", want: Disgust},
		{in: "Neutral.", want: Neutral},
		{in: "bored", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownLabel) {
					t.Fatalf("Parse(%q): expected ErrUnknownLabel, got %v", tc.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseList(t *testing.T) {
	got, err := ParseList([]string{"happy", "sad", "surprise"})
	if err != nil {
		t.Fatalf("ParseList failed: %v", err)
	}
	if len(got) != 3 || got[0] != Happy || got[2] != Surprise {
		t.Errorf("ParseList = %v", got)
	}

	if _, err := ParseList([]string{"happy", "happiness"}); err == nil {
		t.Error("expected duplicate error")
	}
}

func TestPlayableIsSubsetOfVocabulary(t *testing.T) {
	for _, l := range DefaultPlayable {
		if !l.Valid() {
			t.Errorf("playable label %q not in vocabulary", l)
		}
	}
	if len(DefaultPlayable) >= len(Vocabulary) {
		t.Error("playable subset should be smaller than the vocabulary")
	}
}

func TestResult(t *testing.T) {
	r := Result{Region: image.Rect(0, 0, 10, 10), Label: Sad}
	if !r.OK() || r.LabelOr(Neutral) != Sad {
		t.Errorf("expected usable result, got %+v", r)
	}

	failed := Result{Region: image.Rect(0, 0, 10, 10), Err: ErrNotClassified}
	if failed.OK() {
		t.Error("failed result should not be OK")
	}
	if failed.LabelOr(Neutral) != Neutral {
		t.Errorf("LabelOr fallback: got %q", failed.LabelOr(Neutral))
	}
}
