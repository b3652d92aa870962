package server

import (
	"net/http"

	"countyconnect/pkg/types"
)

func (s *Service) handleGetTowns(w http.ResponseWriter, r *http.Request) {
	towns, err := s.directory.Towns(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, towns)
}

func (s *Service) handleGetTown(w http.ResponseWriter, r *http.Request) {
	town, err := s.directory.Town(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, town)
}

func (s *Service) handlePostTown(w http.ResponseWriter, r *http.Request) {
	var input types.TownInput
	if err := decodeJSON(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	town, err := s.directory.CreateTown(r.Context(), userFromContext(r.Context()), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, town)
}

func (s *Service) handleGetMe(w http.ResponseWriter, r *http.Request) {
	me, err := s.directory.Me(r.Context(), userFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, me)
}

func (s *Service) handlePatchMe(w http.ResponseWriter, r *http.Request) {
	var input types.UserUpdate
	if err := decodeJSON(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	me, err := s.directory.UpdateMe(r.Context(), userFromContext(r.Context()), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, me)
}
