package adapthttp

import (
	"net/http"

	"usergate/internal/domain"
)

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	locale := s.messages.Match(r.URL.Query().Get(domain.LocaleParam))
	writeJSON(w, http.StatusOK, map[string]any{
		"locale":   locale,
		"messages": s.messages.Catalog(locale),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"auth_mode":      s.authMode,
		"sso_enabled":    s.oidcConfig.Enabled,
		"locales":        s.messages.Locales(),
		"default_locale": s.messages.Fallback(),
	})
}
