// Package processing defines the closed enumerations shared across the
// pipeline: processing modes and supported languages.
package processing

import "fmt"

// Mode identifies the requested operation for a batch.
type Mode string

const (
	// ModeOCR produces a cleaned transcription without translation.
	ModeOCR Mode = "OCR"

	// ModeTranslate produces a general-purpose translation.
	ModeTranslate Mode = "TRANSLATE"

	// ModeTranslateJur produces a legal translation.
	ModeTranslateJur Mode = "TRANSLATE_JUR"

	// ModeSummarise produces a general summary.
	ModeSummarise Mode = "SUMMARISE"

	// ModeSummariseOnco produces an oncology-specialized summary.
	ModeSummariseOnco Mode = "SUMMARISE_ONCO"
)

// Modes lists every supported processing mode.
var Modes = []Mode{ModeOCR, ModeTranslate, ModeTranslateJur, ModeSummarise, ModeSummariseOnco}

// ParseMode validates a raw mode string.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// Validate checks that the mode belongs to the closed set.
func (m Mode) Validate() error {
	switch m {
	case ModeOCR, ModeTranslate, ModeTranslateJur, ModeSummarise, ModeSummariseOnco:
		return nil
	default:
		return fmt.Errorf("invalid mode: %q", string(m))
	}
}

// RequiresTarget reports whether the mode needs a target language.
// Recognition-only processing has no translation target.
func (m Mode) RequiresTarget() bool {
	return m != ModeOCR
}

// PromptTag returns the registry tag used to select the mode's chat prompt.
func (m Mode) PromptTag() string {
	switch m {
	case ModeOCR:
		return "ocr"
	case ModeTranslate:
		return "translate"
	case ModeTranslateJur:
		return "translate-jur"
	case ModeSummarise:
		return "summarise"
	case ModeSummariseOnco:
		return "summarise-onco"
	default:
		return ""
	}
}

// JobType returns the processing job type recorded for the mode.
func (m Mode) JobType() string {
	switch m {
	case ModeOCR:
		return "recognition"
	case ModeTranslate, ModeTranslateJur:
		return "translation"
	case ModeSummarise, ModeSummariseOnco:
		return "summarization"
	default:
		return "unknown"
	}
}
