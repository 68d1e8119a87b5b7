package repositories

import (
	"context"

	"github.com/SscSPs/split_ledger/internal/core/domain"
)

// AccountLookup answers the account questions the ledger needs before it
// accepts a transaction or a transfer target.
type AccountLookup interface {
	ExistsAndOwned(ctx context.Context, accountID domain.AccountID, ownerID domain.UserID) (bool, error)
	IsActive(ctx context.Context, accountID domain.AccountID) (bool, error)
}

// CategoryLookup checks category references on splits.
type CategoryLookup interface {
	ExistsAndOwned(ctx context.Context, categoryID domain.CategoryID, ownerID domain.UserID) (bool, error)
}

// PayeeStore resolves payees by name per owner.
type PayeeStore interface {
	// GetOrCreate returns the owner's payee with name, creating it on first use.
	GetOrCreate(ctx context.Context, ownerID domain.UserID, name string) (*domain.Payee, error)

	IncrementUsage(ctx context.Context, payeeID domain.PayeeID) error
}
