package ports

import (
	"context"

	"github.com/sirpyerre/transactions-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create assigns an ID and stores the user. A uniqueness violation on
	// email is reported as domain.ErrDuplicateEmail.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)

	// PromoteBootstrapAdmin makes the stored user userID admin if it is the
	// first user in the store and no one has held the seat before. Called
	// after Create succeeds, so only a user that actually exists can win.
	// It returns true for exactly one user over the lifetime of the store.
	PromoteBootstrapAdmin(ctx context.Context, userID int64) (bool, error)
}

// UserCache is a best-effort cache of user profiles keyed by ID.
// Get returns (nil, nil) on a miss.
type UserCache interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}
