package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/transactions-api/internal/core/domain"
	"github.com/sirpyerre/transactions-api/internal/core/ports"
)

// TransactionService enforces validation and ownership over the transaction store.
//
// Reads and writes on a single transaction always check existence first and
// authorization second, so a missing record is 404 for everyone and an
// existing record owned by someone else is 403.
type TransactionService struct {
	repo   ports.TransactionRepository
	policy AccessPolicy
	logger zerolog.Logger
	now    func() time.Time
}

var _ ports.TransactionService = (*TransactionService)(nil)

func NewTransactionService(repo ports.TransactionRepository, logger zerolog.Logger) *TransactionService {
	return &TransactionService{repo: repo, logger: logger, now: time.Now}
}

func (s *TransactionService) Create(ctx context.Context, actor *domain.User, input ports.CreateTransactionInput) (*domain.Transaction, error) {
	if actor == nil {
		return nil, domain.ErrInvalidToken
	}
	if err := domain.ValidateTransaction(input.Amount, input.Currency, input.Description); err != nil {
		return nil, err
	}

	tx := &domain.Transaction{
		Amount:      input.Amount,
		Currency:    input.Currency,
		Description: sanitized(input.Description),
		OwnerID:     actor.ID,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
	}

	created, err := s.repo.Create(ctx, tx)
	if err != nil {
		s.logger.Error().Err(err).Int64("owner_id", actor.ID).Msg("failed to create transaction")
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.logger.Info().Int64("transaction_id", created.ID).Int64("owner_id", actor.ID).Msg("transaction created")
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, actor *domain.User, id int64) (*domain.Transaction, error) {
	return s.load(ctx, actor, id, OpRead)
}

// List returns the actor's own transactions, or every transaction for an admin.
func (s *TransactionService) List(ctx context.Context, actor *domain.User) ([]*domain.Transaction, error) {
	if actor == nil {
		return nil, domain.ErrInvalidToken
	}

	var filter ports.TransactionFilter
	if !actor.IsAdmin() {
		owner := actor.ID
		filter.OwnerID = &owner
	}

	txs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *TransactionService) Update(ctx context.Context, actor *domain.User, id int64, patch domain.TransactionPatch) (*domain.Transaction, error) {
	if err := domain.ValidatePatch(patch); err != nil {
		return nil, err
	}
	current, err := s.load(ctx, actor, id, OpUpdate)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return current, nil
	}
	patch.Description = sanitized(patch.Description)

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update transaction %d: %w", id, err)
	}

	s.logger.Info().Int64("transaction_id", id).Int64("actor_id", actor.ID).Msg("transaction updated")
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if _, err := s.load(ctx, actor, id, OpDelete); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}

	s.logger.Info().Int64("transaction_id", id).Int64("actor_id", actor.ID).Msg("transaction deleted")
	return nil
}

// load fetches the transaction and then checks the actor's rights on it.
func (s *TransactionService) load(ctx context.Context, actor *domain.User, id int64, op Operation) (*domain.Transaction, error) {
	if actor == nil {
		return nil, domain.ErrInvalidToken
	}

	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Authorize(actor, tx, op); err != nil {
		s.logger.Warn().
			Int64("transaction_id", id).
			Int64("actor_id", actor.ID).
			Str("op", string(op)).
			Msg("access denied")
		return nil, err
	}
	return tx, nil
}

func sanitized(description *string) *string {
	if description == nil {
		return nil
	}
	clean := domain.SanitizeDescription(*description)
	return &clean
}
