package repositories

import (
	"context"

	"github.com/SscSPs/split_ledger/internal/core/domain"
)

// TransactionReader defines read operations for ledger transactions.
type TransactionReader interface {
	// Get loads a transaction with its splits. Returns apperrors.ErrNotFound when missing.
	Get(ctx context.Context, transactionID domain.TransactionID) (*domain.Transaction, error)

	// GetForUpdate is Get with a row lock held until the unit of work ends.
	GetForUpdate(ctx context.Context, transactionID domain.TransactionID) (*domain.Transaction, error)

	// GetMirrorsForSource returns every mirror produced by the source transaction.
	GetMirrorsForSource(ctx context.Context, sourceID domain.TransactionID) ([]*domain.Transaction, error)

	// ListByAccount retrieves a page of an account's transactions, newest effective date first,
	// using token-based pagination. It returns the page and a token for the next one.
	ListByAccount(ctx context.Context, ownerID domain.UserID, accountID domain.AccountID, limit int, nextToken *string) ([]*domain.Transaction, *string, error)
}

// TransactionWriter defines write operations for ledger transactions.
type TransactionWriter interface {
	// Add inserts a new transaction and its splits.
	Add(ctx context.Context, tx *domain.Transaction) error

	// Update persists tx if its stored version still matches tx.Version().
	// Returns apperrors.ErrConflict otherwise.
	Update(ctx context.Context, tx *domain.Transaction) error

	// Delete removes a transaction and its splits.
	Delete(ctx context.Context, transactionID domain.TransactionID) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
