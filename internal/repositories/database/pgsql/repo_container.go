package pgsql

import (
	portsrepo "github.com/SscSPs/split_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/split_ledger/internal/events"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the pgx stores. Facts committed by a unit of
// work are handed to publisher; a nil publisher only records them in the outbox.
func NewRepositoryProvider(dbPool *pgxpool.Pool, publisher events.Publisher) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UnitOfWork: newPgxUnitOfWorkFactory(dbPool, publisher),
	}
}
