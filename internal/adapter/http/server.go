package adapthttp

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"usergate/internal/app"
	"usergate/internal/config"
	"usergate/internal/i18n"

	"github.com/go-chi/chi/v5"
)

// Options carries the settings the HTTP adapter needs from the configuration.
type Options struct {
	WebDir        string
	AuthMode      string
	SecureCookies bool
	OIDC          OIDCConfig
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	authSvc    *app.AuthService
	nav        *app.Navigator
	messages   *i18n.Bundle
	logger     *slog.Logger
	webDir     string
	authMode   string
	secure     bool
	oidcConfig OIDCConfig
}

// New creates a Server wired to the given application services.
func New(authSvc *app.AuthService, nav *app.Navigator, messages *i18n.Bundle, logger *slog.Logger, opts Options) *Server {
	if opts.AuthMode == "" {
		opts.AuthMode = config.AuthModeMock
	}
	return &Server{
		authSvc:    authSvc,
		nav:        nav,
		messages:   messages,
		logger:     logger.With("component", "http"),
		webDir:     opts.WebDir,
		authMode:   opts.AuthMode,
		secure:     opts.SecureCookies,
		oidcConfig: opts.OIDC,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.loggingMiddleware, withNoCache)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
		r.Get("/config", s.handleConfig)
		r.Get("/messages", s.handleMessages)
		r.Post("/setup", s.handleSetupUser)

		r.Group(func(r chi.Router) {
			r.Use(s.sessionMiddleware)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Get("/session", s.handleSession)
		})
	})

	r.Get("/auth/sso/login", s.handleSSOLogin)
	r.Get("/auth/sso/callback", s.handleSSOCallback)

	assets := http.FileServer(http.Dir(filepath.Join(s.webDir, "assets")))
	r.Handle("/assets/*", http.StripPrefix("/assets/", assets))

	// Every other path is a page and goes through the navigation hook.
	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware, s.navigationGuard)
		r.Get("/", s.handlePage)
		r.Get("/*", s.handlePage)
	})

	return r
}
