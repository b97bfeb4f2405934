package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/transactions-api/internal/core/domain"
	"github.com/sirpyerre/transactions-api/internal/core/ports"
)

// AuthService implements registration, authentication and profile lookup.
type AuthService struct {
	repo   ports.UserRepository
	cache  ports.UserCache
	hasher ports.PasswordHasher
	tokens ports.TokenService
	log    zerolog.Logger

	dummyOnce sync.Once
	dummy     string
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService wires the user registry. cache may be nil.
func NewAuthService(
	repo ports.UserRepository,
	cache ports.UserCache,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{repo: repo, cache: cache, hasher: hasher, tokens: tokens, log: log}
}

// Register creates an account. The first account the store ever holds becomes
// admin; the decision is made after the insert so a failed insert never takes
// the seat.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if err := domain.ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("register: create user: %w", err)
	}

	admin, err := s.repo.PromoteBootstrapAdmin(ctx, created.ID)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", created.ID).Msg("bootstrap admin promotion failed")
		return nil, fmt.Errorf("register: bootstrap admin: %w", err)
	}
	if admin {
		created.Role = domain.RoleAdmin
	}

	s.log.Info().Int64("user_id", created.ID).Str("role", created.Role).Msg("user registered")
	return withoutHash(created), nil
}

// Authenticate verifies credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Same bcrypt cost as a wrong password.
			s.hasher.Compare(s.dummyHash(), password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	return withoutHash(user), nil
}

// Login authenticates and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("login: issue token: %w", err)
	}
	return token, user, nil
}

// GetByID returns the user profile, reading through the cache when one is set.
// Users never change after creation, so cached entries never go stale.
func (s *AuthService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.Warn().Err(err).Int64("user_id", id).Msg("user cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user = withoutHash(user)

	if s.cache != nil {
		if err := s.cache.Set(ctx, user); err != nil {
			s.log.Warn().Err(err).Int64("user_id", id).Msg("user cache write failed")
		}
	}
	return user, nil
}

// dummyHash is compared against when the email is unknown.
func (s *AuthService) dummyHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("unknown-account-password")
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to build dummy password hash")
		}
		s.dummy = hash
	})
	return s.dummy
}

func withoutHash(u *domain.User) *domain.User {
	clone := *u
	clone.PasswordHash = ""
	return &clone
}
