package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/auth"
)

type contextKey string

const principalKey contextKey = "principal"

// Authenticator resolves a raw bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Principal, error)
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// JWTAuth rejects requests without a valid bearer token and stores the
// principal in the request context.
func JWTAuth(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				unauthorized(w, apperr.Unauthenticated("missing bearer token"))
				return
			}
			p, err := a.Authenticate(r.Context(), token)
			if err != nil {
				if apperr.HTTPStatus(err) != http.StatusUnauthorized {
					log.Printf("Error authenticating request: %v", err)
				}
				unauthorized(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), principalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFrom returns the authenticated principal, or nil outside JWTAuth.
func PrincipalFrom(ctx context.Context) *auth.Principal {
	p, _ := ctx.Value(principalKey).(*auth.Principal)
	return p
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func unauthorized(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	msg := err.Error()
	code := apperr.CodeOf(err)
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	body := map[string]string{"error": msg}
	if code != "" {
		body["code"] = code
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
