package domain

const (
	// LocaleParam is the query parameter carrying the visitor's language.
	LocaleParam = "lang"
	// DefaultLocale is used when neither end of a navigation names a language.
	DefaultLocale = "en"
)

// LocaleGuard makes sure to carries a locale. A missing value is inherited
// from the origin, then from fallback. The boolean is true when the returned
// location differs from to and the navigation must be redirected to it.
func LocaleGuard(to Location, from *Location, fallback string) (Location, bool) {
	if to.Locale() != "" {
		return to, false
	}

	lang := fallback
	if from != nil && from.Locale() != "" {
		lang = from.Locale()
	}
	if lang == "" {
		lang = DefaultLocale
	}
	return to.WithLocale(lang), true
}
