package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/film-catalog/internal/core/domain"
	"github.com/99minutos/film-catalog/internal/core/ports"
	"github.com/99minutos/film-catalog/internal/pkg/metrics"
)

// dummyPassword is hashed once and verified against when a login names an
// unknown email, so both failure paths cost one bcrypt comparison.
const dummyPassword = "film-catalog/timing-equaliser"

// AuthOptions tunes signup policy.
type AuthOptions struct {
	// AllowAdminSignup permits callers to self-assign domain.RoleAdmin.
	AllowAdminSignup bool
}

// AuthService implements signup and login.
type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	opts   AuthOptions
	log    zerolog.Logger

	dummyHash string
}

// NewAuthService hashes the placeholder password up front. A hasher that
// cannot produce it is a startup error.
func NewAuthService(
	ctx context.Context,
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	opts AuthOptions,
	log zerolog.Logger,
) (*AuthService, error) {
	dummyHash, err := hasher.Hash(ctx, dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("auth service: prepare placeholder hash: %w", err)
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		opts:      opts,
		log:       log.With().Str("component", "auth").Logger(),
		dummyHash: dummyHash,
	}, nil
}

// SignUp registers a user with the requested role and returns a token for it.
func (s *AuthService) SignUp(ctx context.Context, email, password, role string) (*ports.AuthResult, error) {
	res, err := s.signUp(ctx, email, password, role)
	metrics.AuthAttemptsTotal.WithLabelValues("signup", outcome(err)).Inc()
	return res, err
}

func (s *AuthService) signUp(ctx context.Context, email, password, role string) (*ports.AuthResult, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	if r == domain.RoleAdmin && !s.opts.AllowAdminSignup {
		return nil, domain.ErrAdminSignupDisabled
	}

	// Fast path only: the store's unique index is what settles concurrent signups.
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("signup: lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("signup: hash password: %w", err)
	}

	created, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         r,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("signup: create user: %w", err)
	}

	token, err := s.tokens.Issue(created)
	if err != nil {
		return nil, fmt.Errorf("signup: issue token: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user signed up")

	return &ports.AuthResult{Token: token, Email: created.Email, Role: created.Role}, nil
}

// Login authenticates by exact email match. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	res, err := s.login(ctx, email, password)
	metrics.AuthAttemptsTotal.WithLabelValues("login", outcome(err)).Inc()
	return res, err
}

func (s *AuthService) login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(ctx, password, s.dummyHash)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: lookup email: %w", err)
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	return &ports.AuthResult{Token: token, Email: user.Email, Role: user.Role}, nil
}

// outcome is the metrics label for an auth result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case domain.KindOf(err) == domain.KindValidation:
		return "invalid_input"
	default:
		return "error"
	}
}
