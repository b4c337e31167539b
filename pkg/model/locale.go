package model

import "golang.org/x/text/language"

// Locale is a supported UI and reply language
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleHindi   Locale = "hi"
	LocaleMarathi Locale = "mr"
)

var (
	supportedTags    = []language.Tag{language.English, language.Hindi, language.Marathi}
	supportedLocales = []Locale{LocaleEnglish, LocaleHindi, LocaleMarathi}
	localeMatcher    = language.NewMatcher(supportedTags)
)

// ParseLocale picks the best supported locale for an Accept-Language header.
// Anything unparseable or unsupported falls back to English.
func ParseLocale(acceptLanguage string) Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return LocaleEnglish
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(supportedLocales) {
		return LocaleEnglish
	}
	return supportedLocales[idx]
}

// LanguageName returns the English name of the locale's language
func (l Locale) LanguageName() string {
	switch l {
	case LocaleHindi:
		return "Hindi"
	case LocaleMarathi:
		return "Marathi"
	default:
		return "English"
	}
}
