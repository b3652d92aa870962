package server

import (
	"net/http"

	"countyconnect/pkg/types"
)

func (s *Service) handlePostClaim(w http.ResponseWriter, r *http.Request) {
	var input types.ClaimInput
	if err := decodeJSON(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	claim, err := s.directory.RequestClaim(r.Context(), userFromContext(r.Context()), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, claim)
}

func (s *Service) handleGetClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := s.directory.Claims(r.Context(), userFromContext(r.Context()), r.URL.Query().Get("status"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, claims)
}

func (s *Service) handleApproveClaim(w http.ResponseWriter, r *http.Request) {
	s.resolveClaim(w, r, true)
}

func (s *Service) handleRejectClaim(w http.ResponseWriter, r *http.Request) {
	s.resolveClaim(w, r, false)
}

func (s *Service) resolveClaim(w http.ResponseWriter, r *http.Request, approve bool) {
	var resolution types.ClaimResolution
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &resolution); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	claim, err := s.directory.ResolveClaim(r.Context(), userFromContext(r.Context()), r.PathValue("id"), approve, resolution)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, claim)
}
