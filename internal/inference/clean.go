package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrModelReported indicates the model itself signaled it could not process
// the input, even though the transport call succeeded.
var ErrModelReported = errors.New("model reported error")

// ModelError carries the model's own failure reason.
type ModelError struct {
	Reason string
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model reported error: %s", e.Reason)
}

func (e *ModelError) Unwrap() error {
	return ErrModelReported
}

// cleanEnvelope is the structured payload some models wrap results in.
type cleanEnvelope struct {
	Text  *string `json:"text"`
	Error *string `json:"error"`
}

// Clean strips incidental fenced-JSON wrapping from raw model output.
// If the output is a ```json fenced block carrying an "error" field, the
// model's reason is surfaced as a *ModelError. A "text" field becomes the
// cleaned result. Anything that fails to parse passes through unchanged:
// cleaning is best-effort, never blocking.
func Clean(raw string) (string, error) {
	body, ok := fencedJSON(raw)
	if !ok {
		return raw, nil
	}

	var env cleanEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return raw, nil
	}

	if env.Error != nil && *env.Error != "" {
		return "", &ModelError{Reason: *env.Error}
	}

	if env.Text != nil {
		return *env.Text, nil
	}

	return raw, nil
}

// fencedJSON extracts the body of a ```json ... ``` block, tolerating
// surrounding whitespace. Returns false if the input is not such a block.
func fencedJSON(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)

	const open = "```json"
	if !strings.HasPrefix(trimmed, open) {
		return "", false
	}

	rest := strings.TrimPrefix(trimmed, open)
	if !strings.HasSuffix(rest, "```") {
		return "", false
	}

	return strings.TrimSpace(strings.TrimSuffix(rest, "```")), true
}
