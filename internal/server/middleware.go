package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"countyconnect/internal/metrics"
	"countyconnect/pkg/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeyUser      contextKey = "user"
	contextKeyRequestID contextKey = "request_id"
)

const headerRequestID = "X-Request-ID"

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

		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(headerRequestID, requestID)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)

		next.ServeHTTP(rw, r.WithContext(ctx))

		took := time.Since(started)
		metrics.ObserveRequest(r.Method, rw.statusCode, took)

		s.logger.WithFields(logrus.Fields{
			"request_id":  requestID,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": took.Milliseconds(),
		}).Info("http request")
	})
}

// Authenticate resolves the caller when a token is present. Anonymous
// requests pass through; a token that fails verification is rejected.
func (s *Service) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := s.accessToken(r)
		if errors.Is(err, errNoToken) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			s.logger.WithError(err).Debug("unusable access token")
			s.writeError(w, r, types.ErrNotAuthenticated)
			return
		}

		identity, err := s.verifier.Verify(r.Context(), token)
		if err != nil {
			s.logger.WithError(err).Debug("access token rejected")
			s.writeError(w, r, types.ErrNotAuthenticated)
			return
		}

		user, err := s.directory.EnsureUser(r.Context(), identity.Subject, identity.Email)
		if err != nil {
			s.logger.WithError(err).WithField("user_id", identity.Subject).Error("failed to load user")
			s.writeError(w, r, err)
			return
		}

		s.logger.WithFields(logrus.Fields{
			"user_id": user.ID,
			"role":    user.Role,
		}).Debug("authenticated user")

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects anonymous callers
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userFromContext(r.Context()) == nil {
			s.writeError(w, r, types.ErrNotAuthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects callers without the admin role
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := userFromContext(r.Context())
		if user == nil {
			s.writeError(w, r, types.ErrNotAuthenticated)
			return
		}
		if !user.IsAdmin() {
			s.writeError(w, r, types.ErrPermissionDenied)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			// Preserve query string
			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func userFromContext(ctx context.Context) *types.User {
	user, _ := ctx.Value(contextKeyUser).(*types.User)
	return user
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}
