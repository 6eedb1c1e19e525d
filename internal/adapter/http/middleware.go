package adapthttp

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"usergate/internal/app"
	"usergate/internal/domain"

	"github.com/google/uuid"
)

type contextKey string

const sessionContextKey contextKey = "session"

// sessionFromContext returns the caller's session. It is never nil; an
// anonymous caller gets a zero Session.
func sessionFromContext(ctx context.Context) *domain.Session {
	if sess, ok := ctx.Value(sessionContextKey).(*domain.Session); ok && sess != nil {
		return sess
	}
	return &domain.Session{}
}

// sessionMiddleware loads the session named by the cookie. Unknown or
// expired cookies are cleared and the request continues anonymously.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := &domain.Session{}

		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			found, err := s.authSvc.ValidateSession(r.Context(), cookie.Value)
			switch {
			case err == nil:
				sess = found
			case errors.Is(err, app.ErrSessionNotFound), errors.Is(err, app.ErrSessionExpired):
				clearSessionCookie(w)
			default:
				s.logger.ErrorContext(r.Context(), "session lookup failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// navigationGuard runs the navigation hook for page requests and either
// redirects or announces the resolved locale in Content-Language.
func (s *Server) navigationGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		to := domain.LocationFromURL(r.URL)
		from := originFromReferer(r)
		sess := sessionFromContext(r.Context())

		nav := s.nav.BeforeEach(to, from, sess)
		if nav.Redirect != "" {
			s.logger.DebugContext(r.Context(), "navigation redirected",
				"to", to.FullPath(), "redirect", nav.Redirect, "authenticated", sess.Authenticated())
			http.Redirect(w, r, nav.Redirect, http.StatusFound)
			return
		}

		w.Header().Set("Content-Language", nav.Locale)
		next.ServeHTTP(w, r)
	})
}

// originFromReferer returns the page the visitor came from, or nil when the
// Referer is missing or points at another host, directly or through a
// protocol-relative path.
func originFromReferer(r *http.Request) *domain.Location {
	ref := r.Referer()
	if ref == "" {
		return nil
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return nil
	}
	loc := domain.LocationFromURL(u)
	if loc.Path == "" {
		loc.Path = domain.RootPath
	}
	if !domain.IsLocalPath(loc.Path) {
		return nil
	}
	return &loc
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs one line per request and tags it with a request id,
// reusing a well-formed X-Request-ID from the caller.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"request_id", reqID,
		)
	})
}
