package app

import (
	"errors"
	"fmt"
	"strings"
)

// Label is the classifier's verdict on a passage.
type Label string

const (
	LabelReal Label = "Real"
	LabelFake Label = "Fake"
)

// ErrInvalidVerdict is returned for a verdict with an unknown label or a
// confidence outside [0,1].
var ErrInvalidVerdict = errors.New("invalid verdict")

// ParseLabel accepts "real"/"fake" in any case, and "1"/"0".
func ParseLabel(s string) (Label, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "real", "1", "true":
		return LabelReal, nil
	case "fake", "0", "false":
		return LabelFake, nil
	default:
		return "", fmt.Errorf("%w: unknown label %q", ErrInvalidVerdict, s)
	}
}

// Verdict is the classifier output the caller hands in. It is display data
// only and never influences which references are found.
type Verdict struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Validate checks the label and confidence range.
func (v Verdict) Validate() error {
	if v.Label != LabelReal && v.Label != LabelFake {
		return fmt.Errorf("%w: unknown label %q", ErrInvalidVerdict, v.Label)
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v outside [0,1]", ErrInvalidVerdict, v.Confidence)
	}
	return nil
}

// Assessment is the combined reading of a verdict and the references found.
type Assessment struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

var (
	assessAuthentic  = Assessment{"Authentic", "Verified by multiple credible sources."}
	assessMisleading = Assessment{"Potentially Misleading", "Similar content exists, but verify carefully."}
	assessLikelyReal = Assessment{"Likely Authentic", "Model predicts real, but no recent references found."}
	assessLikelyFake = Assessment{"Likely Fake", "No credible sources found and model predicts fake."}
	assessFound      = Assessment{"Corroborated", "Related coverage was found; no classifier verdict was given."}
	assessNotFound   = Assessment{"Uncorroborated", "No related coverage was found; no classifier verdict was given."}
)

// Assess combines an optional verdict with whether any reference was found.
func Assess(v *Verdict, found bool) Assessment {
	switch {
	case v == nil && found:
		return assessFound
	case v == nil:
		return assessNotFound
	case found && v.Label == LabelReal:
		return assessAuthentic
	case found:
		return assessMisleading
	case v.Label == LabelReal:
		return assessLikelyReal
	default:
		return assessLikelyFake
	}
}
