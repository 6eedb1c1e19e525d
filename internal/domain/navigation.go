package domain

import (
	"net/url"
	"strings"
)

const (
	// RootPath is the sign-in page; it is the only page open to anonymous visitors.
	RootPath = "/"
	// LandingPath is where signed-in users go when nothing better is known.
	LandingPath = "/user"
	// UnderConstructionPath is a placeholder page for unfinished sections.
	UnderConstructionPath = "/under_construction"
)

// Location is one end of a navigation: a path and its query.
type Location struct {
	Path  string
	Query url.Values
}

// ParseLocation builds a Location from a request URI such as "/user?lang=fr".
func ParseLocation(raw string) (Location, error) {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return Location{}, err
	}
	return LocationFromURL(u), nil
}

// LocationFromURL builds a Location from the path and query of u.
func LocationFromURL(u *url.URL) Location {
	return Location{Path: u.Path, Query: u.Query()}
}

// FullPath returns the path with its encoded query, if any.
func (l Location) FullPath() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}

// Locale returns the value of the locale query parameter.
func (l Location) Locale() string {
	return l.Query.Get(LocaleParam)
}

// WithLocale returns a copy of l whose locale query parameter is lang.
func (l Location) WithLocale(lang string) Location {
	q := make(url.Values, len(l.Query)+1)
	for k, v := range l.Query {
		q[k] = append([]string(nil), v...)
	}
	q.Set(LocaleParam, lang)
	return Location{Path: l.Path, Query: q}
}

// IsLocalPath reports whether p names a page on this site. Browsers read
// "//host" and "/\host" as another host, so those are not local.
func IsLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") {
		return false
	}
	return len(p) == 1 || (p[1] != '/' && p[1] != '\\')
}

// Decision is the outcome of a guard: proceed when Redirect is empty,
// otherwise send the visitor to Redirect.
type Decision struct {
	Redirect string
}

// Proceed reports whether the navigation may continue to its target.
func (d Decision) Proceed() bool {
	return d.Redirect == ""
}

// LoginGuard decides whether a navigation from "from" to "to" may proceed for
// sess. A nil from marks the first navigation of a visit.
//
// Signed-in users asking for the root are sent back where they came from when
// that is a local page, or to LandingPath. Anonymous users asking for anything else are sent to the root.
func LoginGuard(to Location, from *Location, sess *Session) Decision {
	authed := sess.Authenticated()

	switch {
	case to.Path == RootPath && authed:
		// An origin on the root itself would redirect to the page being left.
		if from == nil || from.Path == RootPath || !IsLocalPath(from.Path) {
			return Decision{Redirect: LandingPath}
		}
		return Decision{Redirect: from.FullPath()}
	case to.Path != RootPath && !authed:
		return Decision{Redirect: RootPath}
	}
	return Decision{}
}
