package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/split_ledger/internal/apperrors"
	"github.com/SscSPs/split_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/split_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/split_ledger/internal/core/ports/services"
	"github.com/SscSPs/split_ledger/internal/dto"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// transactionService implements the TransactionSvcFacade interface. Every
// operation, reads included, runs inside one unit of work.
type transactionService struct {
	BaseService
	uowFactory      portsrepo.UnitOfWorkFactory
	defaultPageSize int
	maxPageSize     int
}

// TransactionServiceOption is a functional option for configuring the transaction service
type TransactionServiceOption func(*transactionService)

// WithPageSizes overrides the default and maximum list page sizes.
func WithPageSizes(defaultSize, maxSize int) TransactionServiceOption {
	return func(s *transactionService) {
		if defaultSize > 0 {
			s.defaultPageSize = defaultSize
		}
		if maxSize >= s.defaultPageSize {
			s.maxPageSize = maxSize
		}
	}
}

// NewTransactionService creates a new transaction service with the provided options
func NewTransactionService(uowFactory portsrepo.UnitOfWorkFactory, options ...TransactionServiceOption) portssvc.TransactionSvcFacade {
	svc := &transactionService{
		uowFactory:      uowFactory,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure transactionService implements the TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) CreateTransaction(ctx context.Context, ownerID domain.UserID, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	tx, err := runInUnitOfWork(ctx, &s.BaseService, s.uowFactory, func(uow portsrepo.UnitOfWork) (*domain.Transaction, error) {
		accountID := domain.AccountID(req.AccountID)
		if err := s.validateAccount(ctx, uow, accountID, ownerID); err != nil {
			return nil, err
		}

		amount, err := domain.NewMoney(req.Amount, req.CurrencyCode)
		if err != nil {
			return nil, err
		}
		splits, err := s.buildSplits(ctx, uow, ownerID, amount.Currency(), req.Splits, nil)
		if err != nil {
			return nil, err
		}

		source := domain.SourceManual
		if req.Source != "" {
			if source, err = domain.ParseTransactionSource(req.Source); err != nil {
				return nil, err
			}
		}

		params := domain.NewTransactionParams{
			OwnerID:       ownerID,
			AccountID:     accountID,
			EffectiveDate: req.EffectiveDate,
			PostedDate:    req.PostedDate,
			Amount:        amount,
			Splits:        splits,
			Source:        source,
			Memo:          normalizeText(req.Memo),
			CheckNumber:   normalizeText(req.CheckNumber),
		}
		if name := normalizeText(req.PayeeName); name != nil {
			payee, err := uow.Payees().GetOrCreate(ctx, ownerID, *name)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve payee: %w", err)
			}
			if err := uow.Payees().IncrementUsage(ctx, payee.PayeeID); err != nil {
				return nil, fmt.Errorf("failed to record payee usage: %w", err)
			}
			params.PayeeID = &payee.PayeeID
			params.PayeeName = &payee.DisplayName
		}

		tx, err := domain.NewTransaction(params)
		if err != nil {
			return nil, err
		}
		if err := uow.Transactions().Add(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to save transaction: %w", err)
		}
		collect(uow, tx)

		for _, split := range tx.TransferSplits() {
			if _, err := s.createMirror(ctx, uow, tx, split, *split.TransferAccountID()); err != nil {
				return nil, err
			}
		}
		return tx, nil
	})
	if err != nil {
		s.LogWarn(ctx, err, "Failed to create transaction", slog.String("account_id", req.AccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction created", slog.String("transaction_id", string(tx.ID())),
		slog.Int("mirrors", len(tx.TransferSplits())))
	return tx, nil
}

func (s *transactionService) UpdateSplits(ctx context.Context, ownerID domain.UserID, txID domain.TransactionID, req dto.UpdateSplitsRequest) (*domain.Transaction, error) {
	tx, err := runInUnitOfWork(ctx, &s.BaseService, s.uowFactory, func(uow portsrepo.UnitOfWork) (*domain.Transaction, error) {
		tx, err := s.loadOwned(ctx, uow, ownerID, txID, true)
		if err != nil {
			return nil, err
		}
		if tx.IsMirror() {
			return nil, apperrors.New(apperrors.CodeCannotModifyMirror,
				"transaction %s is a mirror; edit its source transaction instead", txID)
		}
		if err := checkVersion(tx, req.ExpectedVersion); err != nil {
			return nil, err
		}

		amount, err := domain.NewMoney(req.Amount, req.CurrencyCode)
		if err != nil {
			return nil, err
		}
		if amount.Currency() != tx.Amount().Currency() {
			return nil, apperrors.New(apperrors.CodeValidation,
				"currency cannot change from %s to %s", tx.Amount().Currency(), amount.Currency())
		}
		oldSplits := tx.Splits()
		known := make(map[domain.SplitID]struct{}, len(oldSplits))
		for _, split := range oldSplits {
			known[split.ID()] = struct{}{}
		}
		splits, err := s.buildSplits(ctx, uow, ownerID, amount.Currency(), req.Splits, known)
		if err != nil {
			return nil, err
		}

		existing, err := uow.Transactions().GetMirrorsForSource(ctx, tx.ID())
		if err != nil {
			return nil, fmt.Errorf("failed to load mirrors: %w", err)
		}

		if err := tx.UpdateSplits(splits, amount); err != nil {
			return nil, err
		}
		if err := uow.Transactions().Update(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to save transaction: %w", err)
		}
		collect(uow, tx)

		if err := s.syncMirrors(ctx, uow, tx, oldSplits, existing); err != nil {
			return nil, err
		}
		return tx, nil
	})
	if err != nil {
		s.LogWarn(ctx, err, "Failed to update splits", slog.String("transaction_id", string(txID)))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction splits updated", slog.String("transaction_id", string(txID)))
	return tx, nil
}

// syncMirrors applies the mirror plan for a source whose splits changed.
func (s *transactionService) syncMirrors(ctx context.Context, uow portsrepo.UnitOfWork, source *domain.Transaction, oldSplits []domain.SplitLine, existing []*domain.Transaction) error {
	for _, op := range domain.PlanMirrorSync(oldSplits, source.Splits(), existing) {
		switch op.Action {
		case domain.MirrorDelete:
			if err := s.deleteMirror(ctx, uow, source, op.Mirror); err != nil {
				return err
			}
		case domain.MirrorUpdate:
			if err := op.Mirror.UpdateAmount(op.Split.Amount().Neg()); err != nil {
				return err
			}
			if !op.Mirror.HasPendingEvents() {
				continue
			}
			if err := uow.Transactions().Update(ctx, op.Mirror); err != nil {
				return fmt.Errorf("failed to update mirror %s: %w", op.Mirror.ID(), err)
			}
			collect(uow, op.Mirror)
			s.LogDebug(ctx, "Mirror amount updated", slog.String("mirror_id", string(op.Mirror.ID())))
		case domain.MirrorCreate:
			if _, err := s.createMirror(ctx, uow, source, op.Split, op.TargetAccountID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *transactionService) createMirror(ctx context.Context, uow portsrepo.UnitOfWork, source *domain.Transaction, split domain.SplitLine, target domain.AccountID) (*domain.Transaction, error) {
	mirror, err := domain.NewMirrorTransaction(source, split, target, split.Amount(), source.EffectiveDate())
	if err != nil {
		return nil, err
	}
	if err := uow.Transactions().Add(ctx, mirror); err != nil {
		return nil, fmt.Errorf("failed to save mirror: %w", err)
	}
	source.RecordMirrorCreated(mirror)
	collect(uow, mirror, source)
	s.LogDebug(ctx, "Mirror created",
		slog.String("mirror_id", string(mirror.ID())),
		slog.String("target_account_id", string(target)))
	return mirror, nil
}

func (s *transactionService) deleteMirror(ctx context.Context, uow portsrepo.UnitOfWork, source, mirror *domain.Transaction) error {
	mirror.Delete()
	if err := uow.Transactions().Delete(ctx, mirror.ID()); err != nil {
		return fmt.Errorf("failed to delete mirror %s: %w", mirror.ID(), err)
	}
	source.RecordMirrorDeleted(mirror)
	collect(uow, mirror, source)
	s.LogDebug(ctx, "Mirror deleted", slog.String("mirror_id", string(mirror.ID())))
	return nil
}

func (s *transactionService) UpdateTransaction(ctx context.Context, ownerID domain.UserID, txID domain.TransactionID, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	tx, err := runInUnitOfWork(ctx, &s.BaseService, s.uowFactory, func(uow portsrepo.UnitOfWork) (*domain.Transaction, error) {
		tx, err := s.loadOwned(ctx, uow, ownerID, txID, true)
		if err != nil {
			return nil, err
		}
		if err := checkVersion(tx, req.ExpectedVersion); err != nil {
			return nil, err
		}

		sourceOwned := req.Memo != nil || req.PayeeName != nil || req.CheckNumber != nil || req.EffectiveDate != nil
		if tx.IsMirror() && sourceOwned {
			return nil, apperrors.New(apperrors.CodeCannotUpdateMirror,
				"only the posted date of mirror transaction %s can be changed", txID)
		}

		if req.Memo != nil {
			tx.UpdateMemo(normalizeText(req.Memo))
		}
		if req.PayeeName != nil {
			if err := s.applyPayee(ctx, uow, ownerID, tx, normalizeText(req.PayeeName)); err != nil {
				return nil, err
			}
		}
		if req.CheckNumber != nil {
			tx.UpdateCheckNumber(normalizeText(req.CheckNumber))
		}
		if req.EffectiveDate != nil {
			tx.UpdateEffectiveDate(*req.EffectiveDate)
		}
		if req.PostedDate != nil {
			tx.UpdatePostedDate(req.PostedDate)
		}

		if !tx.HasPendingEvents() {
			return tx, nil
		}
		if err := uow.Transactions().Update(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to save transaction: %w", err)
		}
		collect(uow, tx)

		if !tx.IsMirror() && (req.Memo != nil || req.PayeeName != nil || req.EffectiveDate != nil) {
			if err := s.propagateToMirrors(ctx, uow, tx); err != nil {
				return nil, err
			}
		}
		return tx, nil
	})
	if err != nil {
		s.LogWarn(ctx, err, "Failed to update transaction", slog.String("transaction_id", string(txID)))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction updated", slog.String("transaction_id", string(txID)))
	return tx, nil
}

func (s *transactionService) applyPayee(ctx context.Context, uow portsrepo.UnitOfWork, ownerID domain.UserID, tx *domain.Transaction, name *string) error {
	if name == nil {
		tx.UpdatePayee(nil, nil)
		return nil
	}
	payee, err := uow.Payees().GetOrCreate(ctx, ownerID, *name)
	if err != nil {
		return fmt.Errorf("failed to resolve payee: %w", err)
	}
	current := tx.PayeeID()
	if current != nil && *current == payee.PayeeID {
		return nil
	}
	if err := uow.Payees().IncrementUsage(ctx, payee.PayeeID); err != nil {
		return fmt.Errorf("failed to record payee usage: %w", err)
	}
	tx.UpdatePayee(&payee.PayeeID, &payee.DisplayName)
	return nil
}

// propagateToMirrors copies the source-owned descriptive fields onto every mirror.
func (s *transactionService) propagateToMirrors(ctx context.Context, uow portsrepo.UnitOfWork, source *domain.Transaction) error {
	mirrors, err := uow.Transactions().GetMirrorsForSource(ctx, source.ID())
	if err != nil {
		return fmt.Errorf("failed to load mirrors: %w", err)
	}
	for _, m := range mirrors {
		m.UpdateMemo(source.Memo())
		m.UpdatePayee(source.PayeeID(), source.PayeeName())
		m.UpdateEffectiveDate(source.EffectiveDate())
		if !m.HasPendingEvents() {
			continue
		}
		if err := uow.Transactions().Update(ctx, m); err != nil {
			return fmt.Errorf("failed to update mirror %s: %w", m.ID(), err)
		}
		collect(uow, m)
	}
	return nil
}

func (s *transactionService) MarkCleared(ctx context.Context, ownerID domain.UserID, txID domain.TransactionID, postedDate *time.Time) (*domain.Transaction, error) {
	return s.changeStatus(ctx, ownerID, txID, func(tx *domain.Transaction) error {
		return tx.MarkCleared(postedDate)
	})
}

func (s *transactionService) MarkReconciled(ctx context.Context, ownerID domain.UserID, txID domain.TransactionID) (*domain.Transaction, error) {
	return s.changeStatus(ctx, ownerID, txID, func(tx *domain.Transaction) error {
		return tx.MarkReconciled()
	})
}

func (s *transactionService) UpdateStatus(ctx context.Context, ownerID domain.UserID, txID domain.TransactionID, req dto.UpdateStatusRequest) (*domain.Transaction, error) {
	target, err := domain.ParseTransactionStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if err != nil {
		return nil, err
	}
	switch target {
	case domain.StatusCleared:
		return s.MarkCleared(ctx, ownerID, txID, req.PostedDate)
	case domain.StatusReconciled:
		return s.MarkReconciled(ctx, ownerID, txID)
	default:
		return nil, apperrors.New(apperrors.CodeStatusError, "status %s cannot be requested", target)
	}
}

func (s *transactionService) changeStatus(ctx context.Context, ownerID domain.UserID, txID domain.TransactionID, transition func(*domain.Transaction) error) (*domain.Transaction, error) {
	tx, err := runInUnitOfWork(ctx, &s.BaseService, s.uowFactory, func(uow portsrepo.UnitOfWork) (*domain.Transaction, error) {
		tx, err := s.loadOwned(ctx, uow, ownerID, txID, true)
		if err != nil {
			return nil, err
		}
		if err := transition(tx); err != nil {
			return nil, err
		}
		if err := uow.Transactions().Update(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to save transaction: %w", err)
		}
		collect(uow, tx)
		return tx, nil
	})
	if err != nil {
		s.LogWarn(ctx, err, "Failed to change transaction status", slog.String("transaction_id", string(txID)))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction status changed",
		slog.String("transaction_id", string(txID)),
		slog.String("status", string(tx.Status())))
	return tx, nil
}

func (s *transactionService) DeleteTransaction(ctx context.Context, ownerID domain.UserID, txID domain.TransactionID) error {
	deleted, err := runInUnitOfWork(ctx, &s.BaseService, s.uowFactory, func(uow portsrepo.UnitOfWork) (int, error) {
		tx, err := s.loadOwned(ctx, uow, ownerID, txID, true)
		if err != nil {
			return 0, err
		}
		if tx.IsMirror() {
			return 0, apperrors.New(apperrors.CodeCannotDeleteMirror,
				"transaction %s is a mirror; delete its source transaction instead", txID)
		}

		mirrors, err := uow.Transactions().GetMirrorsForSource(ctx, tx.ID())
		if err != nil {
			return 0, fmt.Errorf("failed to load mirrors: %w", err)
		}
		for _, m := range mirrors {
			if err := s.deleteMirror(ctx, uow, tx, m); err != nil {
				return 0, err
			}
		}

		tx.Delete()
		if err := uow.Transactions().Delete(ctx, tx.ID()); err != nil {
			return 0, fmt.Errorf("failed to delete transaction: %w", err)
		}
		collect(uow, tx)
		return len(mirrors), nil
	})
	if err != nil {
		s.LogWarn(ctx, err, "Failed to delete transaction", slog.String("transaction_id", string(txID)))
		return err
	}

	s.LogInfo(ctx, "Transaction deleted", slog.String("transaction_id", string(txID)), slog.Int("mirrors_deleted", deleted))
	return nil
}

func (s *transactionService) GetTransaction(ctx context.Context, ownerID domain.UserID, txID domain.TransactionID) (*domain.Transaction, error) {
	return runInUnitOfWork(ctx, &s.BaseService, s.uowFactory, func(uow portsrepo.UnitOfWork) (*domain.Transaction, error) {
		return s.loadOwned(ctx, uow, ownerID, txID, false)
	})
}

func (s *transactionService) GetMirrors(ctx context.Context, ownerID domain.UserID, txID domain.TransactionID) ([]*domain.Transaction, error) {
	return runInUnitOfWork(ctx, &s.BaseService, s.uowFactory, func(uow portsrepo.UnitOfWork) ([]*domain.Transaction, error) {
		tx, err := s.loadOwned(ctx, uow, ownerID, txID, false)
		if err != nil {
			return nil, err
		}
		mirrors, err := uow.Transactions().GetMirrorsForSource(ctx, tx.ID())
		if err != nil {
			return nil, fmt.Errorf("failed to load mirrors: %w", err)
		}
		return mirrors, nil
	})
}

func (s *transactionService) ListTransactionsByAccount(ctx context.Context, ownerID domain.UserID, accountID domain.AccountID, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	return runInUnitOfWork(ctx, &s.BaseService, s.uowFactory, func(uow portsrepo.UnitOfWork) (*dto.ListTransactionsResponse, error) {
		owned, err := uow.Accounts().ExistsAndOwned(ctx, accountID, ownerID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up account: %w", err)
		}
		if !owned {
			return nil, apperrors.New(apperrors.CodeNotFound, "account %s not found", accountID)
		}

		txs, nextToken, err := uow.Transactions().ListByAccount(ctx, ownerID, accountID, limit, params.NextToken)
		if err != nil {
			s.LogError(ctx, err, "Failed to list transactions by account", slog.String("account_id", string(accountID)))
			return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
		}

		s.LogDebug(ctx, "Transactions listed for account", slog.Int("count", len(txs)))
		return &dto.ListTransactionsResponse{
			Transactions: dto.ToTransactionResponses(txs),
			NextToken:    nextToken,
		}, nil
	})
}

// loadOwned fetches a transaction and checks it belongs to ownerID.
func (s *transactionService) loadOwned(ctx context.Context, uow portsrepo.UnitOfWork, ownerID domain.UserID, txID domain.TransactionID, forUpdate bool) (*domain.Transaction, error) {
	var (
		tx  *domain.Transaction
		err error
	)
	if forUpdate {
		tx, err = uow.Transactions().GetForUpdate(ctx, txID)
	} else {
		tx, err = uow.Transactions().Get(ctx, txID)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.CodeNotFound, err, "transaction %s not found", txID)
		}
		return nil, fmt.Errorf("failed to load transaction %s: %w", txID, err)
	}
	if !tx.OwnedBy(ownerID) {
		return nil, apperrors.New(apperrors.CodeNotOwned, "transaction %s is not owned by caller", txID)
	}
	return tx, nil
}

// validateAccount requires an existing, owned and active account.
func (s *transactionService) validateAccount(ctx context.Context, uow portsrepo.UnitOfWork, accountID domain.AccountID, ownerID domain.UserID) error {
	owned, err := uow.Accounts().ExistsAndOwned(ctx, accountID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to look up account %s: %w", accountID, err)
	}
	if !owned {
		return apperrors.New(apperrors.CodeInvalidAccount, "account %s does not exist or is not owned by caller", accountID)
	}
	active, err := uow.Accounts().IsActive(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to look up account %s: %w", accountID, err)
	}
	if !active {
		return apperrors.New(apperrors.CodeInvalidAccount, "account %s is inactive", accountID)
	}
	return nil
}

// buildSplits converts request splits to domain splits in currency and checks
// every category and transfer target they reference. A request split may only
// carry an id from known, the splits of the transaction being edited.
func (s *transactionService) buildSplits(ctx context.Context, uow portsrepo.UnitOfWork, ownerID domain.UserID, currency string, reqs []dto.SplitRequest, known map[domain.SplitID]struct{}) ([]domain.SplitLine, error) {
	splits := make([]domain.SplitLine, 0, len(reqs))
	for _, r := range reqs {
		amount, err := domain.NewMoney(r.Amount, currency)
		if err != nil {
			return nil, err
		}
		params := domain.SplitLineParams{Amount: amount, Memo: normalizeText(r.Memo)}
		if r.ID != nil {
			params.ID = domain.SplitID(*r.ID)
			if _, ok := known[params.ID]; !ok {
				return nil, apperrors.New(apperrors.CodeInvalidSplits,
					"split id %s does not belong to this transaction", params.ID)
			}
		}
		if r.CategoryID != nil {
			id := domain.CategoryID(*r.CategoryID)
			params.CategoryID = &id
		}
		if r.TransferAccountID != nil {
			id := domain.AccountID(*r.TransferAccountID)
			params.TransferAccountID = &id
		}

		split, err := domain.NewSplitLine(params)
		if err != nil {
			return nil, err
		}

		if params.CategoryID != nil {
			owned, err := uow.Categories().ExistsAndOwned(ctx, *params.CategoryID, ownerID)
			if err != nil {
				return nil, fmt.Errorf("failed to look up category %s: %w", *params.CategoryID, err)
			}
			if !owned {
				return nil, apperrors.New(apperrors.CodeInvalidCategory,
					"category %s does not exist or is not owned by caller", *params.CategoryID)
			}
		}
		if params.TransferAccountID != nil {
			if err := s.validateAccount(ctx, uow, *params.TransferAccountID, ownerID); err != nil {
				return nil, err
			}
		}
		splits = append(splits, split)
	}
	return splits, nil
}

func checkVersion(tx *domain.Transaction, expected *int64) error {
	if expected != nil && *expected != tx.Version() {
		return apperrors.New(apperrors.CodeConflict,
			"transaction %s is at version %d, expected %d", tx.ID(), tx.Version(), *expected)
	}
	return nil
}

// normalizeText trims s and maps blank values to nil.
func normalizeText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
