package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/SscSPs/split_ledger/internal/apperrors"
	"github.com/SscSPs/split_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/split_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/split_ledger/internal/models"
	"github.com/SscSPs/split_ledger/internal/utils/mapping"
	"github.com/SscSPs/split_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

// selectTransaction reads a transaction row with its payee display name.
const selectTransaction = `
	SELECT t.transaction_id, t.owner_id, t.account_id, t.effective_date, t.posted_date,
	       t.amount, t.currency_code, t.status, t.source, t.payee_id, p.display_name,
	       t.memo, t.check_number, t.is_mirror, t.source_transaction_id, t.source_split_id,
	       t.created_at, t.updated_at, t.version
	FROM transactions t
	LEFT JOIN payees p ON p.payee_id = t.payee_id
`

// PgxTransactionRepository stores ledger transactions and their splits. It
// only ever runs inside the database transaction of its unit of work.
type PgxTransactionRepository struct {
	db dbtx
}

func newPgxTransactionRepository(db dbtx) *PgxTransactionRepository {
	return &PgxTransactionRepository{db: db}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func (r *PgxTransactionRepository) Get(ctx context.Context, transactionID domain.TransactionID) (*domain.Transaction, error) {
	return r.getOne(ctx, selectTransaction+` WHERE t.transaction_id = $1;`, transactionID)
}

func (r *PgxTransactionRepository) GetForUpdate(ctx context.Context, transactionID domain.TransactionID) (*domain.Transaction, error) {
	return r.getOne(ctx, selectTransaction+` WHERE t.transaction_id = $1 FOR UPDATE OF t;`, transactionID)
}

func (r *PgxTransactionRepository) getOne(ctx context.Context, query string, transactionID domain.TransactionID) (*domain.Transaction, error) {
	m, err := scanTransaction(r.db.QueryRow(ctx, query, string(transactionID)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query transaction %s: %w", transactionID, err)
	}

	rows := []models.Transaction{m}
	if err := r.attachSplits(ctx, rows); err != nil {
		return nil, err
	}
	return mapping.ToDomainTransaction(rows[0])
}

func (r *PgxTransactionRepository) GetMirrorsForSource(ctx context.Context, sourceID domain.TransactionID) ([]*domain.Transaction, error) {
	query := selectTransaction + `
		WHERE t.source_transaction_id = $1
		ORDER BY t.created_at, t.transaction_id
		FOR UPDATE OF t;
	`
	ms, err := r.queryMany(ctx, query, string(sourceID))
	if err != nil {
		return nil, fmt.Errorf("failed to query mirrors of %s: %w", sourceID, err)
	}
	return mapping.ToDomainTransactionSlice(ms)
}

// ListByAccount pages through an account's transactions ordered by effective
// date, then creation time, then id, all descending. The returned token points
// at the last row of the page.
func (r *PgxTransactionRepository) ListByAccount(ctx context.Context, ownerID domain.UserID, accountID domain.AccountID, limit int, nextToken *string) ([]*domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	query := selectTransaction + ` WHERE t.owner_id = $1 AND t.account_id = $2`
	args := []any{string(ownerID), string(accountID)}
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid nextToken")
		}
		query += ` AND (t.effective_date, t.created_at, t.transaction_id) < ($3, $4, $5)`
		args = append(args, cursor.EffectiveDate, cursor.CreatedAt, cursor.ID)
	}
	query += ` ORDER BY t.effective_date DESC, t.created_at DESC, t.transaction_id DESC LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	ms, err := r.queryMany(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}

	var nextTokenVal *string
	if len(ms) > limit {
		ms = ms[:limit]
		last := ms[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{
			EffectiveDate: last.EffectiveDate,
			CreatedAt:     last.CreatedAt,
			ID:            last.TransactionID,
		})
		nextTokenVal = &token
	}

	txs, err := mapping.ToDomainTransactionSlice(ms)
	if err != nil {
		return nil, nil, err
	}
	return txs, nextTokenVal, nil
}

func (r *PgxTransactionRepository) queryMany(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ms []models.Transaction
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	if err := r.attachSplits(ctx, ms); err != nil {
		return nil, err
	}
	return ms, nil
}

// attachSplits loads the splits of every row in ms with a single query.
func (r *PgxTransactionRepository) attachSplits(ctx context.Context, ms []models.Transaction) error {
	if len(ms) == 0 {
		return nil
	}
	ids := make([]string, len(ms))
	index := make(map[string]int, len(ms))
	for i, m := range ms {
		ids[i] = m.TransactionID
		index[m.TransactionID] = i
	}

	query := `
		SELECT split_id, transaction_id, position, amount, category_id, transfer_account_id, memo
		FROM transaction_splits
		WHERE transaction_id = ANY($1)
		ORDER BY transaction_id, position;
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to query splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Split
		if err := rows.Scan(
			&s.SplitID,
			&s.TransactionID,
			&s.Position,
			&s.Amount,
			&s.CategoryID,
			&s.TransferAccountID,
			&s.Memo,
		); err != nil {
			return fmt.Errorf("failed to scan split row: %w", err)
		}
		i := index[s.TransactionID]
		ms[i].Splits = append(ms[i].Splits, s)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating split rows: %w", err)
	}
	return nil
}

func (r *PgxTransactionRepository) Add(ctx context.Context, tx *domain.Transaction) error {
	m := mapping.ToModelTransaction(tx)
	query := `
		INSERT INTO transactions (
			transaction_id, owner_id, account_id, effective_date, posted_date,
			amount, currency_code, status, source, payee_id, memo, check_number,
			is_mirror, source_transaction_id, source_split_id,
			created_at, updated_at, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := r.db.Exec(ctx, query,
		m.TransactionID,
		m.OwnerID,
		m.AccountID,
		m.EffectiveDate,
		m.PostedDate,
		m.Amount,
		m.CurrencyCode,
		m.Status,
		m.Source,
		m.PayeeID,
		m.Memo,
		m.CheckNumber,
		m.IsMirror,
		m.SourceTransactionID,
		m.SourceSplitID,
		m.CreatedAt,
		m.UpdatedAt,
		m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", m.TransactionID, err)
	}
	return r.insertSplits(ctx, m)
}

// Update writes every mutable column and replaces the split set, guarded by
// the version the aggregate was loaded at.
func (r *PgxTransactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	m := mapping.ToModelTransaction(tx)
	query := `
		UPDATE transactions
		SET effective_date = $2, posted_date = $3, amount = $4, status = $5,
		    payee_id = $6, memo = $7, check_number = $8, updated_at = $9,
		    version = version + 1
		WHERE transaction_id = $1 AND version = $10;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		m.TransactionID,
		m.EffectiveDate,
		m.PostedDate,
		m.Amount,
		m.Status,
		m.PayeeID,
		m.Memo,
		m.CheckNumber,
		m.UpdatedAt,
		m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", m.TransactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE transaction_id = $1);`, m.TransactionID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check transaction %s: %w", m.TransactionID, err)
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: transaction %s was modified concurrently", apperrors.ErrConflict, m.TransactionID)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM transaction_splits WHERE transaction_id = $1;`, m.TransactionID); err != nil {
		return fmt.Errorf("failed to clear splits of %s: %w", m.TransactionID, err)
	}
	if err := r.insertSplits(ctx, m); err != nil {
		return err
	}

	tx.MarkPersisted()
	return nil
}

func (r *PgxTransactionRepository) insertSplits(ctx context.Context, m models.Transaction) error {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO transaction_splits (split_id, transaction_id, position, amount, category_id, transfer_account_id, memo)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, s := range m.Splits {
		batch.Queue(query, s.SplitID, s.TransactionID, s.Position, s.Amount, s.CategoryID, s.TransferAccountID, s.Memo)
	}
	// Close the batch results to surface the error of any queued insert.
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert splits of %s: %w", m.TransactionID, err)
	}
	return nil
}

func (r *PgxTransactionRepository) Delete(ctx context.Context, transactionID domain.TransactionID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, string(transactionID))
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.OwnerID,
		&m.AccountID,
		&m.EffectiveDate,
		&m.PostedDate,
		&m.Amount,
		&m.CurrencyCode,
		&m.Status,
		&m.Source,
		&m.PayeeID,
		&m.PayeeName,
		&m.Memo,
		&m.CheckNumber,
		&m.IsMirror,
		&m.SourceTransactionID,
		&m.SourceSplitID,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.Version,
	)
	return m, err
}
