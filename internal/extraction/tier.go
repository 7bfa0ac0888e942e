package extraction

import (
	"context"
	"fmt"
)

// tierResult is the outcome of a single extraction tier. A skipped result
// defers to the next tier with a reason; otherwise text holds the
// extracted content.
type tierResult struct {
	text    string
	skipped bool
	reason  string
}

func skip(reason string) tierResult {
	return tierResult{skipped: true, reason: reason}
}

type tier struct {
	name string
	run  func(ctx context.Context) (tierResult, error)
}

// runChain executes tiers in order. A skip moves to the next tier, an
// error aborts the whole chain, and exhausting all tiers is a hard
// extraction failure.
func (e *extractor) runChain(ctx context.Context, input Input, chain []tier) (string, error) {
	for _, t := range chain {
		result, err := t.run(ctx)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrExtractionFailed, t.name, err)
		}

		if result.skipped {
			e.logger.Debug("extraction tier skipped",
				"document_id", input.DocumentID,
				"tier", t.name,
				"reason", result.reason,
			)
			continue
		}

		return result.text, nil
	}

	return "", fmt.Errorf("%w: all extraction tiers declined", ErrExtractionFailed)
}
