package processing

import "testing"

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Mode
		wantErr bool
	}{
		{name: "ocr", input: "OCR", want: ModeOCR},
		{name: "translate", input: "TRANSLATE", want: ModeTranslate},
		{name: "legal translate", input: "TRANSLATE_JUR", want: ModeTranslateJur},
		{name: "summarise", input: "SUMMARISE", want: ModeSummarise},
		{name: "oncology summarise", input: "SUMMARISE_ONCO", want: ModeSummariseOnco},
		{name: "lowercase rejected", input: "ocr", wantErr: true},
		{name: "unknown rejected", input: "CLASSIFY", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMode(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestModeRequiresTarget(t *testing.T) {
	if ModeOCR.RequiresTarget() {
		t.Error("OCR must not require a target language")
	}
	for _, m := range []Mode{ModeTranslate, ModeTranslateJur, ModeSummarise, ModeSummariseOnco} {
		if !m.RequiresTarget() {
			t.Errorf("%s must require a target language", m)
		}
	}
}

func TestModePromptTag(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeOCR, "ocr"},
		{ModeTranslate, "translate"},
		{ModeTranslateJur, "translate-jur"},
		{ModeSummarise, "summarise"},
		{ModeSummariseOnco, "summarise-onco"},
	}

	for _, tt := range tests {
		if got := tt.mode.PromptTag(); got != tt.want {
			t.Errorf("%s.PromptTag() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestModeJobType(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeOCR, "recognition"},
		{ModeTranslate, "translation"},
		{ModeTranslateJur, "translation"},
		{ModeSummarise, "summarization"},
		{ModeSummariseOnco, "summarization"},
	}

	for _, tt := range tests {
		if got := tt.mode.JobType(); got != tt.want {
			t.Errorf("%s.JobType() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestParseLanguage(t *testing.T) {
	for _, code := range []string{"auto", "bg", "de", "en", "es", "fr", "it", "pl", "ru", "tr", "uk"} {
		if _, err := ParseLanguage(code); err != nil {
			t.Errorf("ParseLanguage(%q) error = %v", code, err)
		}
	}

	for _, code := range []string{"", "EN", "english", "zz"} {
		if _, err := ParseLanguage(code); err == nil {
			t.Errorf("ParseLanguage(%q) expected error", code)
		}
	}
}

func TestLanguageIsAuto(t *testing.T) {
	if !LanguageAuto.IsAuto() {
		t.Error("auto sentinel not detected")
	}
	if LanguageGerman.IsAuto() {
		t.Error("de must not be auto")
	}
}
