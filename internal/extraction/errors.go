package extraction

import "errors"

var (
	// ErrUnsupportedFormat marks documents whose format cannot be
	// extracted at all. The document fails without touching later tiers.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExtractionFailed marks a hard failure inside an extraction tier,
	// as opposed to a tier declining and deferring to the next one.
	ErrExtractionFailed = errors.New("text extraction failed")
)
