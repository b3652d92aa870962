package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"countyconnect/internal"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

var errNoToken = errors.New("no access token")

// Identity is what a verified access token says about its bearer.
type Identity struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// TokenVerifier checks an access token issued by the identity provider.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// JWKSVerifier validates Cognito tokens against the pool's published keys.
type JWKSVerifier struct {
	cache    *jwk.Cache
	jwksURL  string
	issuer   string
	clientID string
}

func NewJWKSVerifier(ctx context.Context, issuerURL, clientID string) (*JWKSVerifier, error) {
	if issuerURL == "" {
		return nil, fmt.Errorf("set COGNITO_ISSUER_URL")
	}

	cache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	issuer := strings.TrimRight(issuerURL, "/")
	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", issuer)

	if err := cache.Register(ctx, jwksURL); err != nil {
		return nil, fmt.Errorf("failed to register cognito jwks with cache: %w", err)
	}

	return &JWKSVerifier{cache: cache, jwksURL: jwksURL, issuer: issuer, clientID: clientID}, nil
}

func (v *JWKSVerifier) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	set, err := v.cache.Lookup(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(accessToken),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	// Cognito access tokens carry the app client in client_id, ID tokens in aud
	if v.clientID != "" {
		var clientID string
		_ = token.Get("client_id", &clientID)
		aud, _ := token.Audience()
		if clientID != v.clientID && !contains(aud, v.clientID) {
			return nil, fmt.Errorf("token was issued for another client")
		}
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf("no user ID in JWT subject claim")
	}

	identity := &Identity{Subject: subject}
	// email is optional
	_ = token.Get("email", &identity.Email)
	if exp, ok := token.Expiration(); ok {
		identity.ExpiresAt = exp
	}

	return identity, nil
}

// accessToken reads the bearer token, falling back to the encrypted session
// cookie.
func (s *Service) accessToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", fmt.Errorf("malformed authorization header")
		}
		return strings.TrimSpace(token), nil
	}

	cookie, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
	if err != nil {
		return "", errNoToken
	}

	var token string
	if err := s.cookie.Decode(internal.COOKIE_ACCESS_TOKEN_NAME, cookie.Value, &token); err != nil {
		return "", fmt.Errorf("failed to decrypt access token: %w", err)
	}

	return token, nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
