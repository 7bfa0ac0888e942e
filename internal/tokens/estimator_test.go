package tokens

import (
	"testing"

	"github.com/docuglot/docuglot/internal/processing"
)

func TestEstimateNeeded(t *testing.T) {
	tests := []struct {
		name       string
		totalBytes int64
		mode       processing.Mode
		expected   int
	}{
		{"zero bytes", 0, processing.ModeOCR, 0},
		{"negative bytes", -10, processing.ModeOCR, 0},
		{"exact division ocr", 4800, processing.ModeOCR, 100},
		{"rounds up", 4801, processing.ModeOCR, 101},
		{"single byte", 1, processing.ModeOCR, 1},
		{"summarise doubles", 4800, processing.ModeSummarise, 200},
		{"oncology summary doubles", 4800, processing.ModeSummariseOnco, 200},
		{"translate triples", 4800, processing.ModeTranslate, 300},
		{"legal translate triples", 4800, processing.ModeTranslateJur, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateNeeded(tt.totalBytes, tt.mode); got != tt.expected {
				t.Errorf("EstimateNeeded(%d, %s) = %d, want %d",
					tt.totalBytes, tt.mode, got, tt.expected)
			}
		})
	}
}

func TestConsumed(t *testing.T) {
	tests := []struct {
		name      string
		inputLen  int
		outputLen int
		expected  int
	}{
		{"both empty", 0, 0, 0},
		{"exact division", 400, 200, 150},
		{"input rounds up", 401, 200, 151},
		{"both round up", 401, 201, 152},
		{"output only", 0, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Consumed(tt.inputLen, tt.outputLen); got != tt.expected {
				t.Errorf("Consumed(%d, %d) = %d, want %d",
					tt.inputLen, tt.outputLen, got, tt.expected)
			}
		})
	}
}

func TestPerDocument(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		documents int
		expected  int
	}{
		{"even split", 120, 2, 60},
		{"rounds up", 121, 2, 61},
		{"single document", 120, 1, 120},
		{"more documents than tokens", 2, 5, 1},
		{"no documents", 120, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PerDocument(tt.total, tt.documents); got != tt.expected {
				t.Errorf("PerDocument(%d, %d) = %d, want %d",
					tt.total, tt.documents, got, tt.expected)
			}
		})
	}
}
