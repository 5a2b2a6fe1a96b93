package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/auth"
	"feedback-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type staticAuth map[string]*auth.Principal

func (s staticAuth) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	if p, ok := s[token]; ok {
		return p, nil
	}
	return nil, apperr.Unauthenticated("invalid or expired token")
}

func TestJWTAuth(t *testing.T) {
	p := &auth.Principal{UserID: bson.NewObjectID(), Role: models.RoleEmployee}
	var seen *auth.Principal
	h := JWTAuth(staticAuth{"good": p})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = PrincipalFrom(r.Context())
	}))

	cases := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Basic abc", http.StatusUnauthorized},
		{"Bearer bad", http.StatusUnauthorized},
		{"Bearer good", http.StatusOK},
		{"bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("%q: status = %d, want %d", tc.header, rec.Code, tc.want)
		}
		if tc.want == http.StatusOK && seen != p {
			t.Errorf("%q: principal not stored in context", tc.header)
		}
	}
}

func TestPrincipalFromEmptyContext(t *testing.T) {
	if PrincipalFrom(context.Background()) != nil {
		t.Fatalf("expected nil principal")
	}
}
