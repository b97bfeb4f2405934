package handler

import (
	"github.com/sirpyerre/transactions-api/internal/core/domain"
	"github.com/sirpyerre/transactions-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createTransactionRequest) ports.CreateTransactionInput {
	return ports.CreateTransactionInput{
		Amount:      *req.Amount,
		Currency:    *req.Currency,
		Description: req.Description,
	}
}

func toPatch(req updateTransactionRequest) domain.TransactionPatch {
	return domain.TransactionPatch{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
	}
}

// --- Service result → HTTP response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Role: u.Role}
}

func toTransactionResponse(tx *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Amount:      tx.Amount,
		Currency:    tx.Currency,
		Description: tx.Description,
		OwnerID:     tx.OwnerID,
		CreatedAt:   tx.CreatedAt.UTC(),
	}
}

func toTransactionList(txs []*domain.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionResponse(tx)
	}
	return out
}
