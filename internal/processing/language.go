package processing

import "fmt"

// Language is an ISO 639-1 code from the supported closed set.
type Language string

const (
	// LanguageAuto is the unspecified-source sentinel: the model detects
	// the source language itself.
	LanguageAuto Language = "auto"

	LanguageBulgarian Language = "bg"
	LanguageGerman    Language = "de"
	LanguageEnglish   Language = "en"
	LanguageSpanish   Language = "es"
	LanguageFrench    Language = "fr"
	LanguageItalian   Language = "it"
	LanguagePolish    Language = "pl"
	LanguageRussian   Language = "ru"
	LanguageTurkish   Language = "tr"
	LanguageUkrainian Language = "uk"
)

// Languages lists every supported language, including the auto sentinel.
var Languages = []Language{
	LanguageAuto,
	LanguageBulgarian,
	LanguageGerman,
	LanguageEnglish,
	LanguageSpanish,
	LanguageFrench,
	LanguageItalian,
	LanguagePolish,
	LanguageRussian,
	LanguageTurkish,
	LanguageUkrainian,
}

// ParseLanguage validates a raw language code.
func ParseLanguage(s string) (Language, error) {
	l := Language(s)
	if err := l.Validate(); err != nil {
		return "", err
	}
	return l, nil
}

// Validate checks that the language belongs to the closed set.
func (l Language) Validate() error {
	for _, known := range Languages {
		if l == known {
			return nil
		}
	}
	return fmt.Errorf("invalid language: %q", string(l))
}

// IsAuto reports whether the language is the unspecified-source sentinel.
func (l Language) IsAuto() bool {
	return l == LanguageAuto
}
