package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/film-catalog/internal/core/domain"
)

var testTokenConfig = TokenConfig{
	Secret:   []byte("test-secret"),
	Issuer:   "film-catalog",
	Audience: "film-catalog-clients",
	TTL:      time.Hour,
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewJWTIssuer(testTokenConfig)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	user := &domain.User{ID: "42", Email: "a@x.com", Role: domain.RoleAdmin}
	token, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "42" || claims.Email != "a@x.com" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt); got != time.Hour {
		t.Fatalf("expected 1h lifetime, got %s", got)
	}
}

func TestJWTIssuer_DeterministicForSameClock(t *testing.T) {
	clock := fixedClock(time.Now().Truncate(time.Second))
	a, _ := newJWTIssuer(testTokenConfig, clock)
	b, _ := newJWTIssuer(testTokenConfig, clock)

	user := &domain.User{ID: "1", Email: "a@x.com", Role: domain.RoleUser}
	t1, err := a.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	t2, err := b.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if t1 != t2 {
		t.Fatalf("expected identical tokens for identical inputs")
	}
}

func TestJWTIssuer_Expired(t *testing.T) {
	past, _ := newJWTIssuer(testTokenConfig, fixedClock(time.Now().Add(-2*time.Hour)))
	token, err := past.Issue(&domain.User{ID: "1", Email: "a@x.com", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	issuer, _ := NewJWTIssuer(testTokenConfig)
	if _, err := issuer.Verify(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTIssuer_TamperedSignature(t *testing.T) {
	issuer, _ := NewJWTIssuer(testTokenConfig)
	token, err := issuer.Issue(&domain.User{ID: "1", Email: "a@x.com", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := issuer.Verify(tampered); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestJWTIssuer_OtherKey(t *testing.T) {
	other, _ := NewJWTIssuer(TokenConfig{Secret: []byte("other"), Issuer: testTokenConfig.Issuer, Audience: testTokenConfig.Audience})
	token, _ := other.Issue(&domain.User{ID: "1", Email: "a@x.com", Role: domain.RoleUser})

	issuer, _ := NewJWTIssuer(testTokenConfig)
	if _, err := issuer.Verify(token); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestJWTIssuer_GarbageInput(t *testing.T) {
	issuer, _ := NewJWTIssuer(testTokenConfig)
	for _, in := range []string{"", "not-a-token", "a.b.c", "....", "eyJhbGciOiJub25lIn0.e30."} {
		if _, err := issuer.Verify(in); !errors.Is(err, domain.ErrTokenMalformed) {
			t.Fatalf("Verify(%q): expected ErrTokenMalformed, got %v", in, err)
		}
	}
}

func TestJWTIssuer_WrongIssuerAndAudience(t *testing.T) {
	issuer, _ := NewJWTIssuer(testTokenConfig)
	user := &domain.User{ID: "1", Email: "a@x.com", Role: domain.RoleUser}

	wrongIss := testTokenConfig
	wrongIss.Issuer = "someone-else"
	other, _ := NewJWTIssuer(wrongIss)
	token, _ := other.Issue(user)
	if _, err := issuer.Verify(token); !errors.Is(err, domain.ErrTokenWrongIssuer) {
		t.Fatalf("expected ErrTokenWrongIssuer, got %v", err)
	}

	wrongAud := testTokenConfig
	wrongAud.Audience = "another-app"
	other, _ = NewJWTIssuer(wrongAud)
	token, _ = other.Issue(user)
	if _, err := issuer.Verify(token); !errors.Is(err, domain.ErrTokenWrongAudience) {
		t.Fatalf("expected ErrTokenWrongAudience, got %v", err)
	}
}

func TestJWTIssuer_RejectsOtherAlgorithms(t *testing.T) {
	claims := tokenClaims{
		Role: "Admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    testTokenConfig.Issuer,
			Audience:  jwt.ClaimStrings{testTokenConfig.Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testTokenConfig.Secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	issuer, _ := NewJWTIssuer(testTokenConfig)
	if _, err := issuer.Verify(token); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestNewJWTIssuer_RequiresSecret(t *testing.T) {
	if _, err := NewJWTIssuer(TokenConfig{}); !errors.Is(err, ErrMissingSigningKey) {
		t.Fatalf("expected ErrMissingSigningKey, got %v", err)
	}
}
