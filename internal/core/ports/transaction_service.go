package ports

import (
	"context"

	"github.com/sirpyerre/transactions-api/internal/core/domain"
)

// CreateTransactionInput is the DTO passed from the transport layer.
type CreateTransactionInput struct {
	Amount      float64
	Currency    string
	Description *string
}

// TransactionService defines the owner-scoped use cases. The actor is always
// the user resolved from the request's session token.
type TransactionService interface {
	Create(ctx context.Context, actor *domain.User, input CreateTransactionInput) (*domain.Transaction, error)
	Get(ctx context.Context, actor *domain.User, id int64) (*domain.Transaction, error)
	List(ctx context.Context, actor *domain.User) ([]*domain.Transaction, error)
	Update(ctx context.Context, actor *domain.User, id int64, patch domain.TransactionPatch) (*domain.Transaction, error)
	Delete(ctx context.Context, actor *domain.User, id int64) error
}
