package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"countyconnect/pkg/types"
)

const maxJSONBody = 1 << 20

func (s *Service) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Anything outside
// it is logged and reported as a bare 500.
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *types.ValidationError

	switch {
	case errors.As(err, &verr):
		s.writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: verr.Message, Fields: verr.Fields})
	case errors.Is(err, types.ErrValidation):
		s.writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	case errors.Is(err, types.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, types.ErrorResponse{Error: err.Error()})
	case errors.Is(err, types.ErrNotAuthenticated):
		s.writeJSON(w, http.StatusUnauthorized, types.ErrorResponse{Error: err.Error()})
	case errors.Is(err, types.ErrPermissionDenied):
		s.writeJSON(w, http.StatusForbidden, types.ErrorResponse{Error: err.Error()})
	case errors.Is(err, types.ErrInvalidTransition), errors.Is(err, types.ErrConflict):
		s.writeJSON(w, http.StatusConflict, types.ErrorResponse{Error: err.Error()})
	default:
		s.logger.WithError(err).
			WithField("request_id", requestIDFromContext(r.Context())).
			WithField("path", r.URL.Path).
			Error("request failed")
		s.writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
	}
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return types.NewValidationError("request body is empty", nil)
		}
		return types.NewValidationError(fmt.Sprintf("malformed request body: %s", err), nil)
	}

	if dec.More() {
		return types.NewValidationError("request body must contain a single JSON object", nil)
	}

	return nil
}

func kindParam(r *http.Request) (types.ListingKind, error) {
	return types.ParseListingKind(r.PathValue("kind"))
}
