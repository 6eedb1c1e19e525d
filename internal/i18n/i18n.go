// Package i18n serves the static message catalogs and maps requested
// languages onto the catalogs that exist.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

// Bundle holds every catalog and a matcher over their languages.
type Bundle struct {
	fallback string
	names    []string
	matcher  language.Matcher
	catalogs map[string]map[string]string
}

// New loads the embedded catalogs. fallback must name one of them; it answers
// for unsupported languages and for keys missing from another catalog.
func New(fallback string) (*Bundle, error) {
	entries, err := catalogFS.ReadDir("catalogs")
	if err != nil {
		return nil, fmt.Errorf("i18n: read catalogs: %w", err)
	}

	catalogs := make(map[string]map[string]string, len(entries))
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".yaml")
		raw, err := catalogFS.ReadFile(path.Join("catalogs", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", e.Name(), err)
		}
		msgs := map[string]string{}
		if err := yaml.Unmarshal(raw, &msgs); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
		}
		catalogs[name] = msgs
	}
	return newBundle(fallback, catalogs)
}

func newBundle(fallback string, catalogs map[string]map[string]string) (*Bundle, error) {
	if _, ok := catalogs[fallback]; !ok {
		return nil, fmt.Errorf("i18n: no catalog for fallback locale %q", fallback)
	}

	// The matcher answers with its first tag when nothing matches, so the
	// fallback goes first.
	names := []string{fallback}
	rest := make([]string, 0, len(catalogs)-1)
	for name := range catalogs {
		if name != fallback {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	tags := make([]language.Tag, 0, len(names))
	for _, name := range names {
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("i18n: catalog %q: %w", name, err)
		}
		tags = append(tags, tag)
	}

	return &Bundle{
		fallback: fallback,
		names:    names,
		matcher:  language.NewMatcher(tags),
		catalogs: catalogs,
	}, nil
}

// Fallback returns the locale used when nothing else matches.
func (b *Bundle) Fallback() string {
	return b.fallback
}

// Locales lists the available catalogs, fallback first.
func (b *Bundle) Locales() []string {
	return append([]string(nil), b.names...)
}

// Match returns the catalog locale best serving lang, which may be any
// BCP 47 tag ("fr-CA", "ja-JP"). Unknown or malformed tags get the fallback.
func (b *Bundle) Match(lang string) string {
	if lang == "" {
		return b.fallback
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(tag)
	if conf == language.No || idx < 0 || idx >= len(b.names) {
		return b.fallback
	}
	return b.names[idx]
}

// Message returns the text for key in lang's catalog, formatted with args.
// Keys missing from the catalog come from the fallback, then the key itself.
func (b *Bundle) Message(lang, key string, args ...any) string {
	msg, ok := b.catalogs[b.Match(lang)][key]
	if !ok {
		msg, ok = b.catalogs[b.fallback][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// Catalog returns a copy of lang's catalog with fallback entries filled in.
func (b *Bundle) Catalog(lang string) map[string]string {
	out := make(map[string]string, len(b.catalogs[b.fallback]))
	for k, v := range b.catalogs[b.fallback] {
		out[k] = v
	}
	for k, v := range b.catalogs[b.Match(lang)] {
		out[k] = v
	}
	return out
}
