package services

import (
	"context"
	"time"

	"github.com/SscSPs/split_ledger/internal/core/domain"
	"github.com/SscSPs/split_ledger/internal/dto"
)

// TransactionReaderSvc defines read operations for ledger transactions.
type TransactionReaderSvc interface {
	// GetTransaction retrieves a transaction owned by ownerID.
	GetTransaction(ctx context.Context, ownerID domain.UserID, txID domain.TransactionID) (*domain.Transaction, error)

	// ListTransactionsByAccount retrieves a page of an account's transactions.
	ListTransactionsByAccount(ctx context.Context, ownerID domain.UserID, accountID domain.AccountID, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

	// GetMirrors returns the mirrors produced by a source transaction.
	GetMirrors(ctx context.Context, ownerID domain.UserID, txID domain.TransactionID) ([]*domain.Transaction, error)
}

// TransactionWriterSvc defines write operations for ledger transactions.
// Every call runs inside a single unit of work together with its mirror changes.
type TransactionWriterSvc interface {
	// CreateTransaction records a transaction and one mirror per transfer split.
	CreateTransaction(ctx context.Context, ownerID domain.UserID, req dto.CreateTransactionRequest) (*domain.Transaction, error)

	// UpdateSplits replaces splits and amount, then resynchronizes mirrors.
	UpdateSplits(ctx context.Context, ownerID domain.UserID, txID domain.TransactionID, req dto.UpdateSplitsRequest) (*domain.Transaction, error)

	// UpdateTransaction changes descriptive fields. Mirrors accept only a posted date.
	UpdateTransaction(ctx context.Context, ownerID domain.UserID, txID domain.TransactionID, req dto.UpdateTransactionRequest) (*domain.Transaction, error)

	// DeleteTransaction deletes a source transaction and all of its mirrors.
	DeleteTransaction(ctx context.Context, ownerID domain.UserID, txID domain.TransactionID) error
}

// TransactionStatusSvc defines the status lifecycle operations.
type TransactionStatusSvc interface {
	MarkCleared(ctx context.Context, ownerID domain.UserID, txID domain.TransactionID, postedDate *time.Time) (*domain.Transaction, error)
	MarkReconciled(ctx context.Context, ownerID domain.UserID, txID domain.TransactionID) (*domain.Transaction, error)

	// UpdateStatus dispatches a requested target status to the matching transition.
	UpdateStatus(ctx context.Context, ownerID domain.UserID, txID domain.TransactionID, req dto.UpdateStatusRequest) (*domain.Transaction, error)
}

// TransactionSvcFacade combines all transaction service interfaces.
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
	TransactionStatusSvc
}
