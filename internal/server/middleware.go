package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"contestatii/internal"
	"contestatii/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const contextKeyIdentity contextKey = "identity"

var (
	errNotAuthenticated = errors.New("You are not authenticated")
	errBadToken         = errors.New("Token is not okay")
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

func (s *Service) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := routeLabel(r.URL.Path)
		s.metrics.requests.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
		s.metrics.duration.WithLabelValues(r.Method, route).Observe(time.Since(started).Seconds())
	})
}

// RequireAuth rejects requests without a valid session with 401 and adds the
// verified identity to the context otherwise.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.authenticate(r)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
	})
}

// RequireAuthInBody is RequireAuth for the session-check endpoints: failures
// are reported as 200 {"Status":"Error","Error":...}.
func (s *Service) RequireAuthInBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.authenticate(r)
		if err != nil {
			s.writeJSON(w, http.StatusOK, sessionResponse{Status: "Error", Error: err.Error()})
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
	})
}

// authenticate reads the session token from the bearer header or, failing
// that, from the sealed session cookie.
func (s *Service) authenticate(r *http.Request) (*types.Identity, error) {
	var raw string

	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		raw = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	} else {
		cookie, err := r.Cookie(internal.COOKIE_SESSION_TOKEN_NAME)
		if err != nil {
			s.logger.WithError(err).Debug("no session cookie found")
			return nil, errNotAuthenticated
		}

		err = s.cookie.Decode(internal.COOKIE_SESSION_TOKEN_NAME, cookie.Value, &raw)
		if err != nil {
			s.logger.WithError(err).Warn("failed to decrypt session cookie")
			return nil, errBadToken
		}
	}

	if raw == "" {
		return nil, errNotAuthenticated
	}

	identity, err := s.tokens.Verify(raw)
	if err != nil {
		s.logger.WithError(err).Debug("failed to verify session token")
		return nil, errBadToken
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": identity.UserID,
		"email":   identity.Email,
	}).Debug("authenticated user")

	return identity, nil
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			// 308 keeps the method and body of API calls
			http.Redirect(w, r, newURL.String(), http.StatusPermanentRedirect)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func withIdentity(ctx context.Context, identity *types.Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, identity)
}

func identityFromContext(ctx context.Context) *types.Identity {
	identity, _ := ctx.Value(contextKeyIdentity).(*types.Identity)
	return identity
}
