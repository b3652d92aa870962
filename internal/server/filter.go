package server

import (
	"net/http"
	"time"

	"countyconnect/internal"
	"countyconnect/pkg/types"
)

const locationFilterMaxAge = 90 * 24 * time.Hour

// savedFilter returns the location filter stored in the session cookie, or
// nil when there is none or it can't be read.
func (s *Service) savedFilter(r *http.Request) *types.LocationFilterState {
	cookie, err := r.Cookie(internal.COOKIE_LOCATION_FILTER_NAME)
	if err != nil {
		return nil
	}

	var state types.LocationFilterState
	if err := s.cookie.Decode(internal.COOKIE_LOCATION_FILTER_NAME, cookie.Value, &state); err != nil {
		s.logger.WithError(err).Debug("ignoring unreadable location filter cookie")
		return nil
	}

	if _, err := types.ParseLocationMode(string(state.Mode)); err != nil {
		return nil
	}

	return &state
}

func (s *Service) handleGetLocationFilter(w http.ResponseWriter, r *http.Request) {
	state, err := s.directory.ResolveFilter(userFromContext(r.Context()), types.ListingOptions{}, s.savedFilter(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, state)
}

func (s *Service) handlePutLocationFilter(w http.ResponseWriter, r *http.Request) {
	var input types.LocationFilterState
	if err := decodeJSON(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	mode, err := types.ParseLocationMode(string(input.Mode))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	state := input.WithMode(mode)
	if mode != types.LocationModeCustom {
		state = state.WithTowns(nil)
	}

	encoded, err := s.cookie.Encode(internal.COOKIE_LOCATION_FILTER_NAME, state)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_LOCATION_FILTER_NAME,
		Value:    encoded,
		HttpOnly: true,
		Secure:   s.config.Environment != "development",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(locationFilterMaxAge.Seconds()),
		Path:     "/",
	})

	s.writeJSON(w, http.StatusOK, state)
}
