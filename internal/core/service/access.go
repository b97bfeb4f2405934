package service

import "github.com/sirpyerre/transactions-api/internal/core/domain"

// Operation names an action on an owned resource.
type Operation string

const (
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// AccessPolicy decides whether an actor may act on a resource owned by someone.
//
// Owners may do anything to their own resources. Admins may do anything to any
// resource. Everyone else is denied.
type AccessPolicy struct{}

func (AccessPolicy) CanAccess(actor *domain.User, ownerID int64, op Operation) bool {
	if actor == nil {
		return false
	}
	switch op {
	case OpRead, OpUpdate, OpDelete:
	default:
		return false
	}
	return actor.ID == ownerID || actor.IsAdmin()
}

// Authorize returns domain.ErrForbidden when actor may not perform op on tx.
func (p AccessPolicy) Authorize(actor *domain.User, tx *domain.Transaction, op Operation) error {
	if !p.CanAccess(actor, tx.OwnerID, op) {
		return domain.ErrForbidden
	}
	return nil
}
