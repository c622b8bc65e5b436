package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/film-catalog/internal/core/domain"
)

// ErrMissingSigningKey is returned when the issuer is built without a key.
var ErrMissingSigningKey = errors.New("jwt signing key is empty")

// TokenConfig holds the signing parameters shared by issue and verify.
type TokenConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// tokenClaims is the JWT body: sub/iss/aud/iat/exp plus email and role.
type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and verifies HS256 bearer tokens.
type JWTIssuer struct {
	cfg    TokenConfig
	now    func() time.Time
	parser *jwt.Parser
}

// NewJWTIssuer fails when the secret is empty; callers treat that as fatal.
func NewJWTIssuer(cfg TokenConfig) (*JWTIssuer, error) {
	return newJWTIssuer(cfg, time.Now)
}

func newJWTIssuer(cfg TokenConfig, now func() time.Time) (*JWTIssuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSigningKey
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}

	// Issuer and audience are checked by hand so each mismatch maps to its own error.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(now),
	)

	return &JWTIssuer{cfg: cfg, now: now, parser: parser}, nil
}

// Issue mints a token for user that expires after the configured TTL.
func (i *JWTIssuer) Issue(user *domain.User) (string, error) {
	now := i.now().UTC()
	claims := tokenClaims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry, issuer and audience. It never panics on
// untrusted input; every failure is one of the domain token errors.
func (i *JWTIssuer) Verify(token string) (*domain.Claims, error) {
	var claims tokenClaims
	_, err := i.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.cfg.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenMalformed
	}

	if claims.Issuer != i.cfg.Issuer {
		return nil, domain.ErrTokenWrongIssuer
	}
	if !audienceContains(claims.Audience, i.cfg.Audience) {
		return nil, domain.ErrTokenWrongAudience
	}
	if claims.Subject == "" || claims.Role == "" {
		return nil, domain.ErrTokenMalformed
	}

	out := &domain.Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    domain.Role(claims.Role),
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func audienceContains(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
