package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"countyconnect/internal/directory"
	"countyconnect/internal/metrics"
	"countyconnect/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

// Uploader stores an uploaded file and returns the URL it is served from.
type Uploader interface {
	UploadFile(ctx context.Context, key string, body io.Reader, contentType string, size int64) (string, error)
}

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	directory *directory.Service
	verifier  TokenVerifier
	uploader  Uploader

	cookie *securecookie.SecureCookie

	server *http.Server
}

// New builds the HTTP API. uploader may be nil, in which case uploads
// answer 503.
func New(
	config *types.Config,
	logger *logrus.Logger,
	dir *directory.Service,
	verifier TokenVerifier,
	uploader Uploader,
) (*Service, error) {
	mux := flow.New()

	cookie, err := newSecureCookie(config, logger)
	if err != nil {
		return nil, err
	}

	s := &Service{
		logger:    logger,
		config:    config,
		directory: dir,
		verifier:  verifier,
		uploader:  uploader,
		cookie:    cookie,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func newSecureCookie(config *types.Config, logger *logrus.Logger) (*securecookie.SecureCookie, error) {
	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("decode COOKIE_HASH_KEY: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("decode COOKIE_BLOCK_KEY: %w", err)
	}

	if len(hashKey) == 0 {
		logger.Warn("COOKIE_HASH_KEY is not set, cookies will not survive a restart")
		hashKey = securecookie.GenerateRandomKey(64)
	}
	if len(blockKey) == 0 {
		blockKey = nil
	}

	return securecookie.New(hashKey, blockKey), nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, types.ErrNotFound)
	})
	r.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusMethodNotAllowed, types.ErrorResponse{Error: "method not allowed"})
	})

	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", metrics.Handler(), http.MethodGet)

	r.HandleFunc("/api/session", s.handlePostSession, http.MethodPost)
	r.HandleFunc("/api/session", s.handleDeleteSession, http.MethodDelete)

	r.Group(func(r *flow.Mux) {
		r.Use(s.Authenticate)

		r.HandleFunc("/api/towns", s.handleGetTowns, http.MethodGet)
		r.HandleFunc("/api/towns/:id", s.handleGetTown, http.MethodGet)

		r.HandleFunc("/api/location-filter", s.handleGetLocationFilter, http.MethodGet)
		r.HandleFunc("/api/location-filter", s.handlePutLocationFilter, http.MethodPut)

		r.HandleFunc("/api/listings/:kind", s.handleGetListings, http.MethodGet)
		r.HandleFunc("/api/listings/:kind/:id", s.handleGetListing, http.MethodGet)

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireAuth)

			r.HandleFunc("/api/me", s.handleGetMe, http.MethodGet)
			r.HandleFunc("/api/me", s.handlePatchMe, http.MethodPatch)

			r.HandleFunc("/api/listings/:kind", s.handlePostListing, http.MethodPost)
			r.HandleFunc("/api/listings/:kind/:id", s.handlePatchListing, http.MethodPatch)
			r.HandleFunc("/api/listings/:kind/:id", s.handleDeleteListing, http.MethodDelete)
			r.HandleFunc("/api/listings/:kind/:id/submit", s.handleSubmitListing, http.MethodPost)
			r.HandleFunc("/api/listings/:kind/:id/transitions", s.handleGetTransitions, http.MethodGet)
			r.HandleFunc("/api/my/listings/:kind", s.handleGetMyListings, http.MethodGet)

			r.HandleFunc("/api/claims", s.handlePostClaim, http.MethodPost)
			r.HandleFunc("/api/uploads", s.handlePostUpload, http.MethodPost)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireAdmin)

			r.HandleFunc("/api/admin/towns", s.handlePostTown, http.MethodPost)

			r.HandleFunc("/api/admin/listings/:kind", s.handleGetModeration, http.MethodGet)
			r.HandleFunc("/api/admin/listings/:kind/:id/transitions", s.handleGetTransitions, http.MethodGet)
			r.HandleFunc("/api/admin/listings/:kind/:id/:action", s.handlePostTransition, http.MethodPost)

			r.HandleFunc("/api/admin/claims", s.handleGetClaims, http.MethodGet)
			r.HandleFunc("/api/admin/claims/:id/approve", s.handleApproveClaim, http.MethodPost)
			r.HandleFunc("/api/admin/claims/:id/reject", s.handleRejectClaim, http.MethodPost)
		})
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
