package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/split_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/split_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/split_ledger/internal/events"
	"github.com/SscSPs/split_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxUnitOfWorkFactory opens units of work backed by one pgx transaction each.
type PgxUnitOfWorkFactory struct {
	BaseRepository
	publisher events.Publisher
}

func newPgxUnitOfWorkFactory(pool *pgxpool.Pool, publisher events.Publisher) *PgxUnitOfWorkFactory {
	return &PgxUnitOfWorkFactory{
		BaseRepository: BaseRepository{Pool: pool},
		publisher:      publisher,
	}
}

var _ portsrepo.UnitOfWorkFactory = (*PgxUnitOfWorkFactory)(nil)

func (f *PgxUnitOfWorkFactory) Begin(ctx context.Context) (portsrepo.UnitOfWork, error) {
	tx, err := f.BaseRepository.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxUnitOfWork{
		base:         &f.BaseRepository,
		tx:           tx,
		publisher:    f.publisher,
		transactions: newPgxTransactionRepository(tx),
		accounts:     newPgxAccountLookup(tx),
		categories:   &PgxCategoryLookup{db: tx},
		payees:       &PgxPayeeStore{db: tx},
	}, nil
}

type pgxUnitOfWork struct {
	base      *BaseRepository
	tx        pgx.Tx
	publisher events.Publisher

	transactions *PgxTransactionRepository
	accounts     *PgxAccountLookup
	categories   *PgxCategoryLookup
	payees       *PgxPayeeStore

	pending   []domain.Event
	committed bool
}

func (u *pgxUnitOfWork) Transactions() portsrepo.TransactionRepositoryFacade { return u.transactions }
func (u *pgxUnitOfWork) Accounts() portsrepo.AccountLookup                   { return u.accounts }
func (u *pgxUnitOfWork) Categories() portsrepo.CategoryLookup                { return u.categories }
func (u *pgxUnitOfWork) Payees() portsrepo.PayeeStore                        { return u.payees }

func (u *pgxUnitOfWork) CollectEvents(events ...domain.Event) {
	u.pending = append(u.pending, events...)
}

// Commit appends the collected facts to the outbox in the same database
// transaction, commits, and only then hands the facts to the publisher.
func (u *pgxUnitOfWork) Commit(ctx context.Context) error {
	if err := u.writeOutbox(ctx); err != nil {
		return err
	}
	if err := u.base.Commit(ctx, u.tx); err != nil {
		return err
	}
	u.committed = true

	if u.publisher != nil && len(u.pending) > 0 {
		u.publisher.Publish(ctx, u.pending...)
	}
	u.pending = nil
	return nil
}

func (u *pgxUnitOfWork) Rollback(ctx context.Context) error {
	u.pending = nil
	if u.committed {
		return nil
	}
	return u.base.Rollback(ctx, u.tx)
}

func (u *pgxUnitOfWork) writeOutbox(ctx context.Context) error {
	if len(u.pending) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `
		INSERT INTO domain_events (event_id, aggregate_id, aggregate_type, event_type, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for _, e := range u.pending {
		row, err := mapping.ToModelDomainEvent(e)
		if err != nil {
			return err
		}
		batch.Queue(query, row.EventID, row.AggregateID, row.AggregateType, row.EventType, row.Payload, row.OccurredAt)
	}
	if err := u.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to write domain events: %w", err)
	}
	return nil
}
