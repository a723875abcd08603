package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned for a mode outside the four pedagogical modes.
var ErrUnknownMode = errors.New("unknown pipeline mode")

// Mode is the pedagogical context of a request.
type Mode string

const (
	ModeLearning         Mode = "learning"
	ModePractice         Mode = "practice"
	ModeAssessmentSoft   Mode = "assessment-soft"
	ModeAssessmentStrict Mode = "assessment-strict"
)

// Modes lists every valid mode.
func Modes() []Mode {
	return []Mode{ModeLearning, ModePractice, ModeAssessmentSoft, ModeAssessmentStrict}
}

// ParseMode validates s as a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// Validate reports ErrUnknownMode for invalid modes.
func (m Mode) Validate() error {
	switch m {
	case ModeLearning, ModePractice, ModeAssessmentSoft, ModeAssessmentStrict:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, string(m))
	}
}

// IsAssessment reports whether m is one of the assessment modes.
func (m Mode) IsAssessment() bool {
	return m == ModeAssessmentSoft || m == ModeAssessmentStrict
}

// ResponseType is the shape of answer a mode produces.
type ResponseType string

const (
	ResponseExplanation ResponseType = "explanation"
	ResponseHint        ResponseType = "hint"
	ResponseRestricted  ResponseType = "restricted"
)

// ResponseType maps a mode to its response type.
func (m Mode) ResponseType() (ResponseType, error) {
	switch m {
	case ModeLearning:
		return ResponseExplanation, nil
	case ModePractice, ModeAssessmentSoft:
		return ResponseHint, nil
	case ModeAssessmentStrict:
		return ResponseRestricted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, string(m))
	}
}
