package ports

import (
	"context"

	"github.com/sirpyerre/transactions-api/internal/core/domain"
)

// Identity is what a verified session token says about its bearer.
type Identity struct {
	UserID int64
	Role   string
}

// TokenService issues and resolves signed session tokens.
type TokenService interface {
	Issue(user *domain.User) (string, error)
	Resolve(token string) (Identity, error)
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
