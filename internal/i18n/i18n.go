// Package i18n translates report labels using golang.org/x/text catalogs.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Translator resolves source (English) labels into a supported language.
type Translator struct {
	catalog   *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
	fallback  language.Tag
}

// New builds a Translator seeded with the bundled report strings.
func New(fallback language.Tag) *Translator {
	if fallback == language.Und {
		fallback = language.English
	}
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, entries := range bundled {
		for key, msg := range entries {
			_ = b.SetString(tag, key, msg)
		}
	}
	supported := []language.Tag{fallback}
	for _, tag := range []language.Tag{language.English, language.Arabic} {
		if tag != fallback {
			supported = append(supported, tag)
		}
	}
	return &Translator{
		catalog:   b,
		supported: supported,
		matcher:   language.NewMatcher(supported),
		fallback:  fallback,
	}
}

// Match picks the best supported language for an Accept-Language header value.
func (t *Translator) Match(acceptLanguage string) language.Tag {
	if t == nil {
		return language.English
	}
	if acceptLanguage == "" {
		return t.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.fallback
	}
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return t.fallback
	}
	return t.supported[idx]
}

// T formats key in the requested language. Unknown keys are returned formatted as is.
func (t *Translator) T(tag language.Tag, key string, args ...any) string {
	if t == nil {
		return message.NewPrinter(language.English).Sprintf(key, args...)
	}
	return message.NewPrinter(tag, message.Catalog(t.catalog)).Sprintf(key, args...)
}

// Func binds the translator to a language for plain labels.
func (t *Translator) Func(tag language.Tag) func(string) string {
	return func(key string) string { return t.T(tag, key) }
}

// Formatter binds the translator to a language for labels with arguments.
func (t *Translator) Formatter(tag language.Tag) func(string, ...any) string {
	return func(key string, args ...any) string { return t.T(tag, key, args...) }
}

// Parse parses a BCP 47 tag, falling back to English.
func Parse(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return language.English
	}
	return tag
}

// IsRTL reports whether tag is written right to left.
func IsRTL(tag language.Tag) bool {
	base, _ := tag.Base()
	switch base.String() {
	case "ar", "fa", "he", "ur":
		return true
	}
	return false
}
