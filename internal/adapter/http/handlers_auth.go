// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"

	"usergate/internal/app"
	"usergate/internal/config"
	"usergate/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess, err := s.authSvc.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, app.ErrInvalidCredentials) {
		s.logger.InfoContext(r.Context(), "login rejected", "email", req.Email)
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "login failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// A login replaces whatever session the caller held before.
	if prev := sessionFromContext(r.Context()); prev.Token != "" {
		if err := s.authSvc.Logout(r.Context(), prev.Token); err != nil {
			s.logger.WarnContext(r.Context(), "revoke previous session", "error", err)
		}
	}

	setSessionCookie(w, sess, s.secure, http.SameSiteStrictMode)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "user": sess.Profile})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := sessionFromContext(r.Context()); sess.Token != "" {
		if err := s.authSvc.Logout(r.Context(), sess.Token); err != nil {
			s.logger.ErrorContext(r.Context(), "logout failed", "error", err)
		}
	}

	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	var user *domain.Profile
	if sess.Authenticated() {
		user = &sess.Profile
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": sess.Authenticated(),
		"user":          user,
		"locale":        s.messages.Match(r.URL.Query().Get(domain.LocaleParam)),
	})
}

func (s *Server) handleSetupUser(w http.ResponseWriter, r *http.Request) {
	if s.authMode != config.AuthModePassword {
		http.NotFound(w, r)
		return
	}

	var req struct {
		domain.Profile
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	_, err := s.authSvc.CreateInitialUser(r.Context(), req.Profile, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, app.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, app.ErrUsersExist):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, app.ErrPasswordAuthDisabled):
		http.NotFound(w, r)
	default:
		s.logger.ErrorContext(r.Context(), "create initial user", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	if !s.oidcConfig.Enabled {
		http.Error(w, "sso disabled", http.StatusNotFound)
		return
	}
	state := generateState()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil || s.secure,
		SameSite: http.SameSiteLaxMode, // Lax required for cross-site redirect returns
		MaxAge:   300,
	})
	http.Redirect(w, r, s.oidcConfig.OAuth2Config.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleSSOCallback(w http.ResponseWriter, r *http.Request) {
	if !s.oidcConfig.Enabled {
		http.Error(w, "sso disabled", http.StatusNotFound)
		return
	}

	state, err := r.Cookie("oauth_state")
	if err != nil || state.Value == "" || r.URL.Query().Get("state") != state.Value {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "oauth_state", MaxAge: -1, Path: "/"})

	token, err := s.oidcConfig.OAuth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		s.logger.WarnContext(r.Context(), "sso token exchange failed", "error", err)
		http.Error(w, "failed to exchange token", http.StatusInternalServerError)
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		http.Error(w, "no id_token", http.StatusInternalServerError)
		return
	}

	idToken, err := s.oidcConfig.Provider.Verifier(&oidc.Config{ClientID: s.oidcConfig.OAuth2Config.ClientID}).Verify(r.Context(), rawIDToken)
	if err != nil {
		s.logger.WarnContext(r.Context(), "sso id token rejected", "error", err)
		http.Error(w, "failed to verify token", http.StatusInternalServerError)
		return
	}

	var claims struct {
		Email      string `json:"email"`
		Sub        string `json:"sub"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Nickname   string `json:"nickname"`
	}
	if err = idToken.Claims(&claims); err != nil {
		http.Error(w, "failed to parse claims", http.StatusInternalServerError)
		return
	}

	email := claims.Email
	if email == "" {
		email = claims.Sub
	}

	sess, err := s.authSvc.LoginWithProfile(r.Context(), domain.Profile{
		Email:     email,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
		Nickname:  claims.Nickname,
	})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "sso login failed", "error", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	s.completeSSOLogin(w, r, sess)
}

// completeSSOLogin hands out the session at the end of the identity
// provider's redirect chain. Browsers withhold Strict cookies on a chain that
// started on another site, so this cookie is Lax.
func (s *Server) completeSSOLogin(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	setSessionCookie(w, sess, s.secure, http.SameSiteLaxMode)
	// The navigation guard forwards signed-in visitors from the root.
	http.Redirect(w, r, domain.RootPath, http.StatusFound)
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
