package interfaces

// Translator resolves a dotted translation key for a locale. Implementations
// return the key itself alongside an error when no value exists.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// ListTranslator resolves keys whose values are string lists (bullet points,
// benefit lists).
type ListTranslator interface {
	TranslateList(locale, key string) ([]string, error)
}

// MissingTranslationHandler decides what a template shows for an unresolved key.
type MissingTranslationHandler func(locale, key string, err error) string
