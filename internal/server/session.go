package server

import (
	"net/http"
	"strings"
	"time"

	"countyconnect/internal"
	"countyconnect/pkg/types"
)

const defaultSessionAge = time.Hour

type sessionInput struct {
	AccessToken string `json:"access_token"`
}

// handlePostSession trades a Cognito access token for the encrypted session
// cookie, for browser clients that would rather not keep the token in JS.
func (s *Service) handlePostSession(w http.ResponseWriter, r *http.Request) {
	var input sessionInput
	if err := decodeJSON(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	token := strings.TrimSpace(input.AccessToken)
	if token == "" {
		s.writeError(w, r, types.FieldError("access_token", "access_token is required"))
		return
	}

	identity, err := s.verifier.Verify(r.Context(), token)
	if err != nil {
		s.logger.WithError(err).Debug("session token rejected")
		s.writeError(w, r, types.ErrNotAuthenticated)
		return
	}

	user, err := s.directory.EnsureUser(r.Context(), identity.Subject, identity.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	encryptedToken, err := s.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	maxAge := defaultSessionAge
	if !identity.ExpiresAt.IsZero() {
		maxAge = time.Until(identity.ExpiresAt)
	}
	if maxAge <= 0 {
		s.writeError(w, r, types.ErrNotAuthenticated)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   s.config.Environment != "development",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
		Path:     "/",
	})

	s.logger.WithField("user_id", user.ID).Info("session started")

	s.writeJSON(w, http.StatusOK, user)
}

func (s *Service) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   s.config.Environment != "development",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Path:     "/",
	})

	w.WriteHeader(http.StatusNoContent)
}
