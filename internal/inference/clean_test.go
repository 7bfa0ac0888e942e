package inference

import (
	"errors"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "plain text passes through",
			raw:      "Guten Tag, hier ist die Übersetzung.",
			expected: "Guten Tag, hier ist die Übersetzung.",
		},
		{
			name:     "fenced text field unwrapped",
			raw:      "```json\n{\"text\": \"the translated document\"}\n```",
			expected: "the translated document",
		},
		{
			name:     "surrounding whitespace tolerated",
			raw:      "  \n```json\n{\"text\": \"result\"}\n```  \n",
			expected: "result",
		},
		{
			name:     "malformed json passes through",
			raw:      "```json\n{\"text\": broken\n```",
			expected: "```json\n{\"text\": broken\n```",
		},
		{
			name:     "fenced json without known fields passes through",
			raw:      "```json\n{\"summary\": \"x\"}\n```",
			expected: "```json\n{\"summary\": \"x\"}\n```",
		},
		{
			name:     "non-json fence passes through",
			raw:      "```python\nprint('hi')\n```",
			expected: "```python\nprint('hi')\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Clean(tt.raw)
			if err != nil {
				t.Fatalf("Clean() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Clean() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCleanModelReportedError(t *testing.T) {
	_, err := Clean("```json\n{\"error\": \"document is illegible\"}\n```")
	if err == nil {
		t.Fatal("Clean() did not surface the model error")
	}

	if !errors.Is(err, ErrModelReported) {
		t.Errorf("Clean() error = %v, want ErrModelReported", err)
	}

	var modelErr *ModelError
	if !errors.As(err, &modelErr) {
		t.Fatalf("Clean() error type = %T, want *ModelError", err)
	}
	if modelErr.Reason != "document is illegible" {
		t.Errorf("ModelError.Reason = %q", modelErr.Reason)
	}
}

func TestCleanIdempotent(t *testing.T) {
	once, err := Clean("```json\n{\"text\": \"final text\"}\n```")
	if err != nil {
		t.Fatal(err)
	}

	twice, err := Clean(once)
	if err != nil {
		t.Fatal(err)
	}
	if twice != once {
		t.Errorf("Clean(Clean(x)) = %q, want %q", twice, once)
	}
}

func TestCleanEmptyErrorFieldIgnored(t *testing.T) {
	got, err := Clean("```json\n{\"text\": \"ok\", \"error\": \"\"}\n```")
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Clean() = %q, want %q", got, "ok")
	}
}
