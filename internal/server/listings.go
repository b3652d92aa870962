package server

import (
	"net/http"

	"countyconnect/internal/lifecycle"
	"countyconnect/pkg/types"
)

func (s *Service) handleGetListings(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts, err := listingOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	page, err := s.directory.LoadPublic(r.Context(), userFromContext(r.Context()), kind, opts, s.savedFilter(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, page)
}

func (s *Service) handleGetListing(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	listing, err := s.directory.Listing(r.Context(), userFromContext(r.Context()), kind, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, listing)
}

func (s *Service) handleGetMyListings(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	listings, err := s.directory.LoadOwned(r.Context(), userFromContext(r.Context()), kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, listings)
}

func (s *Service) handlePostListing(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var input types.ListingInput
	if err := decodeJSON(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	listing, err := s.directory.CreateListing(r.Context(), userFromContext(r.Context()), kind, input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, listing)
}

func (s *Service) handlePatchListing(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var input types.ListingInput
	if err := decodeJSON(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	listing, err := s.directory.UpdateListing(r.Context(), userFromContext(r.Context()), kind, r.PathValue("id"), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, listing)
}

func (s *Service) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.directory.DeleteListing(r.Context(), userFromContext(r.Context()), kind, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleSubmitListing(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, types.ActionSubmit)
}

func (s *Service) handlePostTransition(w http.ResponseWriter, r *http.Request) {
	action, err := lifecycle.ParseAction(r.PathValue("action"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.transition(w, r, action)
}

func (s *Service) transition(w http.ResponseWriter, r *http.Request, action types.LifecycleAction) {
	kind, err := kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	listing, err := s.directory.Transition(r.Context(), userFromContext(r.Context()), kind, r.PathValue("id"), action)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, listing)
}

func (s *Service) handleGetTransitions(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	transitions, err := s.directory.Transitions(r.Context(), userFromContext(r.Context()), kind, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, transitions)
}

func (s *Service) handleGetModeration(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts, err := listingOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	listings, err := s.directory.LoadModeration(r.Context(), userFromContext(r.Context()), kind, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, listings)
}

func listingOptions(r *http.Request) (types.ListingOptions, error) {
	var opts types.ListingOptions
	if err := decoder.Decode(&opts, r.URL.Query()); err != nil {
		return opts, types.NewValidationError("invalid query parameters", nil)
	}
	return opts, nil
}
