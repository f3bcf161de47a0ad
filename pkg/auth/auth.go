// Package auth verifies OpenID Connect ID tokens and exposes the resulting
// principal, with its per-module permission levels, to handlers.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Authenticator resolves the principal behind a request.
type Authenticator interface {
	Authenticate(r *http.Request) (*Principal, error)
}

type verifier struct {
	verifier   *oidc.IDTokenVerifier
	cookieName string
}

type claims struct {
	Email       string           `json:"email"`
	Name        string           `json:"name"`
	AutoridadID int64            `json:"autoridad_id"`
	Permisos    map[string]Level `json:"permisos"`
}

// New discovers the issuer's keys and returns an Authenticator that accepts
// ID tokens from the Authorization header or the configured cookie.
// With no issuer configured every request fails with ErrNotConfigured.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (Authenticator, error) {
	if !cfg.Enabled() {
		logger.With("system", "auth").Warn("authentication not configured, protected routes will reject every request")
		return disabled{}, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery %s: %w", cfg.Issuer, err)
	}

	return NewVerifier(provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}), cfg.CookieName), nil
}

// NewVerifier wraps an existing ID token verifier.
func NewVerifier(v *oidc.IDTokenVerifier, cookieName string) Authenticator {
	return &verifier{verifier: v, cookieName: cookieName}
}

func (v *verifier) Authenticate(r *http.Request) (*Principal, error) {
	raw := bearerToken(r)
	if raw == "" && v.cookieName != "" {
		if c, err := r.Cookie(v.cookieName); err == nil {
			raw = c.Value
		}
	}
	if raw == "" {
		return nil, ErrUnauthenticated
	}

	token, err := v.verifier.Verify(r.Context(), raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	var c claims
	if err := token.Claims(&c); err != nil {
		return nil, fmt.Errorf("%w: decode claims: %w", ErrUnauthenticated, err)
	}

	return &Principal{
		Subject:     token.Subject,
		Email:       c.Email,
		Name:        c.Name,
		AutoridadID: c.AutoridadID,
		Permisos:    c.Permisos,
	}, nil
}

type disabled struct{}

func (disabled) Authenticate(*http.Request) (*Principal, error) {
	return nil, ErrNotConfigured
}

// Require returns middleware that authenticates the request and checks that
// the principal holds level on module before calling next.
func Require(a Authenticator, module string, level Level) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := a.Authenticate(r)
			if err != nil {
				http.Error(w, http.StatusText(MapHTTPStatus(err)), MapHTTPStatus(err))
				return
			}
			if !p.Can(module, level) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireFunc is Require applied to a single handler function.
func RequireFunc(a Authenticator, module string, level Level, fn http.HandlerFunc) http.HandlerFunc {
	return Require(a, module, level)(fn).ServeHTTP
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
