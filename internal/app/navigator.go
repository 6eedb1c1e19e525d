package app

import (
	"usergate/internal/domain"
)

// LocaleMatcher maps a requested language onto an available catalog.
type LocaleMatcher interface {
	Match(lang string) string
}

// Navigation is the result of the page navigation hook. Redirect is empty
// when the navigation may proceed; Locale is the catalog to render with.
type Navigation struct {
	Redirect string
	Locale   string
}

// Navigator runs the checks every page navigation goes through.
type Navigator struct {
	locales       LocaleMatcher
	defaultLocale string
}

// NewNavigator creates a Navigator. defaultLocale is put on navigations that
// name no language at either end.
func NewNavigator(locales LocaleMatcher, defaultLocale string) *Navigator {
	if defaultLocale == "" {
		defaultLocale = domain.DefaultLocale
	}
	return &Navigator{locales: locales, defaultLocale: defaultLocale}
}

// BeforeEach decides a navigation. A target without a locale is first
// redirected to itself with one; only then does the login guard run.
func (n *Navigator) BeforeEach(to domain.Location, from *domain.Location, sess *domain.Session) Navigation {
	if normalized, changed := domain.LocaleGuard(to, from, n.defaultLocale); changed {
		return Navigation{Redirect: normalized.FullPath()}
	}

	nav := Navigation{Locale: n.locales.Match(to.Locale())}
	nav.Redirect = domain.LoginGuard(to, from, sess).Redirect
	return nav
}
