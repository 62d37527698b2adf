package services

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

var (
	languageDetector     lingua.LanguageDetector
	languageDetectorOnce sync.Once
)

func getLanguageDetector() lingua.LanguageDetector {
	languageDetectorOnce.Do(func() {
		languageDetector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English,
				lingua.Vietnamese,
				lingua.Chinese,
				lingua.Japanese,
				lingua.Korean,
				lingua.French,
				lingua.German,
				lingua.Spanish,
			).
			WithLowAccuracyMode().
			Build()
	})
	return languageDetector
}

// DetectLanguage returns the lowercase ISO 639-1 code of content, empty when unsure.
func DetectLanguage(content string) string {
	content = strings.TrimSpace(content)
	if len(content) == 0 {
		return ""
	}
	if language, ok := getLanguageDetector().DetectLanguageOf(content); ok {
		return strings.ToLower(language.IsoCode639_1().String())
	}
	return ""
}
