package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SscSPs/split_ledger/internal/apperrors"
	"github.com/SscSPs/split_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/split_ledger/internal/core/ports/repositories"
)

// runInUnitOfWork executes fn within a single unit of work. It commits when fn
// succeeds and rolls back otherwise, so facts collected by a failed fn are
// never published.
func runInUnitOfWork[T any](ctx context.Context, s *BaseService, factory portsrepo.UnitOfWorkFactory, fn func(uow portsrepo.UnitOfWork) (T, error)) (T, error) {
	var zero T

	uow, err := factory.Begin(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to begin unit of work")
		return zero, apperrors.NewAppError(http.StatusInternalServerError, "failed to begin unit of work", err)
	}
	defer func() {
		if rbErr := uow.Rollback(ctx); rbErr != nil {
			s.LogError(ctx, rbErr, "Failed to roll back unit of work")
		}
	}()

	result, err := fn(uow)
	if err != nil {
		return zero, err
	}

	if err := uow.Commit(ctx); err != nil {
		s.LogError(ctx, err, "Failed to commit unit of work")
		return zero, fmt.Errorf("failed to commit unit of work: %w", err)
	}
	return result, nil
}

// collect drains the pending facts of each aggregate into uow, in argument order.
func collect(uow portsrepo.UnitOfWork, txs ...*domain.Transaction) {
	for _, tx := range txs {
		if events := tx.PullEvents(); len(events) > 0 {
			uow.CollectEvents(events...)
		}
	}
}
