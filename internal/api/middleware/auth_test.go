package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/film-catalog/internal/core/domain"
)

type stubVerifier struct {
	claims *domain.Claims
	err    error
	got    string
}

func (s *stubVerifier) Verify(token string) (*domain.Claims, error) {
	s.got = token
	return s.claims, s.err
}

func newAuthContext(authorization string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthenticate_ValidToken(t *testing.T) {
	verifier := &stubVerifier{claims: &domain.Claims{Subject: "42", Email: "a@x.com", Role: domain.RoleUser}}
	c, rec := newAuthContext("Bearer good-token")

	called := false
	handler := Authenticate(verifier)(func(c echo.Context) error {
		called = true
		if c.Get(ContextKeyRole) != domain.RoleUser {
			t.Fatalf("role not set")
		}
		claims, ok := ClaimsFrom(c)
		if !ok || claims.Subject != "42" || claims.Email != "a@x.com" {
			t.Fatalf("claims not set: %+v", claims)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if verifier.got != "good-token" {
		t.Fatalf("verifier received %q", verifier.got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		verify error
		want   error
	}{
		{"missing header", "", nil, domain.ErrUnauthenticated},
		{"wrong scheme", "Token abc", nil, domain.ErrTokenMalformed},
		{"empty bearer", "Bearer ", nil, domain.ErrTokenMalformed},
		{"expired", "Bearer old", domain.ErrTokenExpired, domain.ErrTokenExpired},
		{"bad signature", "Bearer forged", domain.ErrTokenMalformed, domain.ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newAuthContext(tt.header)
			handler := Authenticate(&stubVerifier{err: tt.verify})(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			err := handler(c)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if domain.KindOf(err) != domain.KindUnauthorized {
				t.Fatalf("expected Unauthorized kind, got %s", domain.KindOf(err))
			}
		})
	}
}
