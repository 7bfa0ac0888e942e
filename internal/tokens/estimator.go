// Package tokens computes advisory token estimates before processing and
// measured token usage after processing. All functions are pure.
package tokens

import "github.com/docuglot/docuglot/internal/processing"

const (
	// estimateBytesPerToken approximates how many raw file bytes produce
	// one billable token of extracted text. Binary formats (PDF, DOCX,
	// images) carry substantial structural overhead per character.
	estimateBytesPerToken = 48

	// charsPerToken approximates text characters per model token.
	charsPerToken = 4
)

// EstimateNeeded returns the advisory token estimate for processing files
// with the given aggregate byte size under the given mode. Recognition-only
// batches cost a single pass; translation and summarization modes apply a
// fixed class multiplier on top of extraction.
func EstimateNeeded(totalBytes int64, mode processing.Mode) int {
	if totalBytes <= 0 {
		return 0
	}

	base := ceilDiv64(totalBytes, estimateBytesPerToken)
	return int(base) * modeMultiplier(mode)
}

// Consumed returns the measured token usage from the combined input text
// length and the model output length.
func Consumed(inputLen, outputLen int) int {
	return ceilDiv(inputLen, charsPerToken) + ceilDiv(outputLen, charsPerToken)
}

// PerDocument divides a batch's total token usage evenly across its
// documents, rounding up so the recorded per-document sum never
// understates the debit.
func PerDocument(total, documents int) int {
	if documents <= 0 {
		return 0
	}
	return ceilDiv(total, documents)
}

func modeMultiplier(mode processing.Mode) int {
	switch mode {
	case processing.ModeOCR:
		return 1
	case processing.ModeSummarise, processing.ModeSummariseOnco:
		return 2
	case processing.ModeTranslate, processing.ModeTranslateJur:
		return 3
	default:
		return 3
	}
}

func ceilDiv(n, d int) int {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

func ceilDiv64(n, d int64) int64 {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}
