package repositories

import (
	"context"

	"github.com/SscSPs/split_ledger/internal/core/domain"
)

// UnitOfWork is one atomic database transaction spanning every store a
// ledger operation touches. Facts handed to CollectEvents become visible to
// subscribers only after Commit succeeds; Rollback discards them.
type UnitOfWork interface {
	Transactions() TransactionRepositoryFacade
	Accounts() AccountLookup
	Categories() CategoryLookup
	Payees() PayeeStore

	// CollectEvents queues facts for persistence and post-commit publication.
	CollectEvents(events ...domain.Event)

	Commit(ctx context.Context) error

	// Rollback is safe to call after Commit; it is then a no-op.
	Rollback(ctx context.Context) error
}

// UnitOfWorkFactory starts units of work.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
