package ports

import (
	"context"

	"github.com/sirpyerre/transactions-api/internal/core/domain"
)

// TransactionFilter narrows List. A nil OwnerID means every owner.
type TransactionFilter struct {
	OwnerID *int64
}

// TransactionRepository defines persistence operations for transactions.
// Each method is a single atomic write or read against the store.
type TransactionRepository interface {
	// Create assigns an ID and stores tx.
	Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	FindByID(ctx context.Context, id int64) (*domain.Transaction, error)
	// List returns matching transactions newest first, ties broken by ID descending.
	List(ctx context.Context, filter TransactionFilter) ([]*domain.Transaction, error)
	// Update applies the non-nil fields of patch and returns the stored result.
	Update(ctx context.Context, id int64, patch domain.TransactionPatch) (*domain.Transaction, error)
	Delete(ctx context.Context, id int64) error
}
