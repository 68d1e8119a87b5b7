package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the transactions table. Splits are loaded separately.
type Transaction struct {
	TransactionID       string          `db:"transaction_id"`
	OwnerID             string          `db:"owner_id"`
	AccountID           string          `db:"account_id"`
	EffectiveDate       time.Time       `db:"effective_date"`
	PostedDate          *time.Time      `db:"posted_date"` // Nullable
	Amount              decimal.Decimal `db:"amount"`
	CurrencyCode        string          `db:"currency_code"`
	Status              string          `db:"status"`
	Source              string          `db:"source"`
	PayeeID             *string         `db:"payee_id"`   // Nullable
	PayeeName           *string         `db:"payee_name"` // Joined from payees
	Memo                *string         `db:"memo"`
	CheckNumber         *string         `db:"check_number"`
	IsMirror            bool            `db:"is_mirror"`
	SourceTransactionID *string         `db:"source_transaction_id"` // Set on mirrors only
	SourceSplitID       *string         `db:"source_split_id"`       // Set on mirrors only
	AuditFields
	Splits []Split `db:"-"`
}

// Split is a row of the transaction_splits table.
type Split struct {
	SplitID           string          `db:"split_id"`
	TransactionID     string          `db:"transaction_id"`
	Position          int             `db:"position"`
	Amount            decimal.Decimal `db:"amount"`
	CategoryID        *string         `db:"category_id"`
	TransferAccountID *string         `db:"transfer_account_id"`
	Memo              *string         `db:"memo"`
}
