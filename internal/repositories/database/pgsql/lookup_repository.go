package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/split_ledger/internal/apperrors"
	"github.com/SscSPs/split_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/split_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/split_ledger/internal/models"
	"github.com/SscSPs/split_ledger/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PgxAccountLookup reads each account at most once per unit of work.
type PgxAccountLookup struct {
	db    dbtx
	cache map[domain.AccountID]*domain.Account
}

var _ portsrepo.AccountLookup = (*PgxAccountLookup)(nil)

func newPgxAccountLookup(db dbtx) *PgxAccountLookup {
	return &PgxAccountLookup{db: db, cache: make(map[domain.AccountID]*domain.Account)}
}

// find returns nil without error when the account does not exist.
func (r *PgxAccountLookup) find(ctx context.Context, accountID domain.AccountID) (*domain.Account, error) {
	if acc, ok := r.cache[accountID]; ok {
		return acc, nil
	}

	query := `
		SELECT account_id, owner_id, name, currency_code, is_active, created_at, updated_at, version
		FROM accounts
		WHERE account_id = $1;
	`
	var m models.Account
	err := r.db.QueryRow(ctx, query, string(accountID)).Scan(
		&m.AccountID,
		&m.OwnerID,
		&m.Name,
		&m.CurrencyCode,
		&m.IsActive,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.Version,
	)
	var acc *domain.Account
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	default:
		found := mapping.ToDomainAccount(m)
		acc = &found
	}
	r.cache[accountID] = acc
	return acc, nil
}

func (r *PgxAccountLookup) ExistsAndOwned(ctx context.Context, accountID domain.AccountID, ownerID domain.UserID) (bool, error) {
	acc, err := r.find(ctx, accountID)
	if err != nil {
		return false, err
	}
	return acc != nil && acc.OwnedBy(ownerID), nil
}

// IsActive reports false for accounts that do not exist.
func (r *PgxAccountLookup) IsActive(ctx context.Context, accountID domain.AccountID) (bool, error) {
	acc, err := r.find(ctx, accountID)
	if err != nil {
		return false, err
	}
	return acc != nil && acc.IsActive, nil
}

type PgxCategoryLookup struct {
	db dbtx
}

var _ portsrepo.CategoryLookup = (*PgxCategoryLookup)(nil)

func (r *PgxCategoryLookup) ExistsAndOwned(ctx context.Context, categoryID domain.CategoryID, ownerID domain.UserID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM categories WHERE category_id = $1 AND owner_id = $2);`
	if err := r.db.QueryRow(ctx, query, string(categoryID), string(ownerID)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check category %s: %w", categoryID, err)
	}
	return exists, nil
}

// PgxPayeeStore keeps one payee per owner and case-insensitive name.
type PgxPayeeStore struct {
	db dbtx
}

var _ portsrepo.PayeeStore = (*PgxPayeeStore)(nil)

func (r *PgxPayeeStore) GetOrCreate(ctx context.Context, ownerID domain.UserID, name string) (*domain.Payee, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `
		INSERT INTO payees (payee_id, owner_id, display_name, normalized_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id, normalized_name)
		DO UPDATE SET normalized_name = EXCLUDED.normalized_name
		RETURNING payee_id, owner_id, display_name, usage_count;
	`
	var m models.Payee
	err := r.db.QueryRow(ctx, query, uuid.NewString(), string(ownerID), name, strings.ToLower(name)).Scan(
		&m.PayeeID,
		&m.OwnerID,
		&m.DisplayName,
		&m.UsageCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert payee %q: %w", name, err)
	}
	payee := mapping.ToDomainPayee(m)
	return &payee, nil
}

func (r *PgxPayeeStore) IncrementUsage(ctx context.Context, payeeID domain.PayeeID) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE payees SET usage_count = usage_count + 1 WHERE payee_id = $1;`, string(payeeID))
	if err != nil {
		return fmt.Errorf("failed to increment usage of payee %s: %w", payeeID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
