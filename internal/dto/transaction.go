package dto

import (
	"time"

	"github.com/SscSPs/split_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SplitRequest describes one split line. An absent ID means a new line; a
// present ID must name a split of the transaction being edited.
type SplitRequest struct {
	ID                *string         `json:"id"`
	Amount            decimal.Decimal `json:"amount"`
	CategoryID        *string         `json:"categoryID"`
	TransferAccountID *string         `json:"transferAccountID"`
	Memo              *string         `json:"memo"`
}

// CreateTransactionRequest defines the data needed to record a transaction.
type CreateTransactionRequest struct {
	AccountID     string          `json:"accountID" binding:"required"`
	EffectiveDate time.Time       `json:"effectiveDate" binding:"required"`
	PostedDate    *time.Time      `json:"postedDate"`
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currencyCode" binding:"required,currency"`
	Splits        []SplitRequest  `json:"splits" binding:"dive"`
	Source        string          `json:"source" binding:"omitempty,oneof=MANUAL DOWNLOADED"`
	PayeeName     *string         `json:"payeeName"`
	Memo          *string         `json:"memo"`
	CheckNumber   *string         `json:"checkNumber"`
}

// UpdateSplitsRequest replaces the split lines and amount of a transaction.
// ExpectedVersion, when set, must match the stored version.
type UpdateSplitsRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currencyCode" binding:"required,currency"`
	Splits          []SplitRequest  `json:"splits" binding:"dive"`
	ExpectedVersion *int64          `json:"expectedVersion"`
}

// UpdateTransactionRequest defines the descriptive fields that may be changed.
// Nil fields are left untouched; an empty string clears a text field.
type UpdateTransactionRequest struct {
	Memo            *string    `json:"memo"`
	PayeeName       *string    `json:"payeeName"`
	CheckNumber     *string    `json:"checkNumber"`
	EffectiveDate   *time.Time `json:"effectiveDate"`
	PostedDate      *time.Time `json:"postedDate"`
	ExpectedVersion *int64     `json:"expectedVersion"`
}

// UpdateStatusRequest moves a transaction forward in its status lifecycle.
type UpdateStatusRequest struct {
	Status     string     `json:"status" binding:"required"`
	PostedDate *time.Time `json:"postedDate"`
}

// ListTransactionsParams defines parameters for listing an account's transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// SplitResponse defines the data returned for a split line.
type SplitResponse struct {
	SplitID           string          `json:"splitID"`
	Amount            decimal.Decimal `json:"amount"`
	CategoryID        *string         `json:"categoryID,omitempty"`
	TransferAccountID *string         `json:"transferAccountID,omitempty"`
	Memo              *string         `json:"memo,omitempty"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID       string          `json:"transactionID"`
	AccountID           string          `json:"accountID"`
	EffectiveDate       time.Time       `json:"effectiveDate"`
	PostedDate          *time.Time      `json:"postedDate,omitempty"`
	Amount              decimal.Decimal `json:"amount"`
	CurrencyCode        string          `json:"currencyCode"`
	DisplayAmount       string          `json:"displayAmount"`
	Status              string          `json:"status"`
	Source              string          `json:"source"`
	Splits              []SplitResponse `json:"splits"`
	PayeeID             *string         `json:"payeeID,omitempty"`
	PayeeName           *string         `json:"payeeName,omitempty"`
	Memo                *string         `json:"memo,omitempty"`
	CheckNumber         *string         `json:"checkNumber,omitempty"`
	IsMirror            bool            `json:"isMirror"`
	SourceTransactionID *string         `json:"sourceTransactionID,omitempty"`
	SourceSplitID       *string         `json:"sourceSplitID,omitempty"`
	Version             int64           `json:"version"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ErrorResponse is the body returned for every failed request.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(tx *domain.Transaction) TransactionResponse {
	st := tx.State()
	splits := make([]SplitResponse, len(st.Splits))
	for i, s := range st.Splits {
		splits[i] = SplitResponse{
			SplitID:           string(s.ID),
			Amount:            s.Amount.Amount(),
			CategoryID:        stringPtr(s.CategoryID),
			TransferAccountID: stringPtr(s.TransferAccountID),
			Memo:              s.Memo,
		}
	}
	return TransactionResponse{
		TransactionID:       string(st.ID),
		AccountID:           string(st.AccountID),
		EffectiveDate:       st.EffectiveDate,
		PostedDate:          st.PostedDate,
		Amount:              st.Amount.Amount(),
		CurrencyCode:        st.Amount.Currency(),
		DisplayAmount:       st.Amount.Display(),
		Status:              string(st.Status),
		Source:              string(st.Source),
		Splits:              splits,
		PayeeID:             stringPtr(st.PayeeID),
		PayeeName:           st.PayeeName,
		Memo:                st.Memo,
		CheckNumber:         st.CheckNumber,
		IsMirror:            st.IsMirror,
		SourceTransactionID: stringPtr(st.SourceTransactionID),
		SourceSplitID:       stringPtr(st.SourceSplitID),
		Version:             st.Version,
		CreatedAt:           st.CreatedAt,
		UpdatedAt:           st.UpdatedAt,
	}
}

// ToTransactionResponses converts a slice of transactions to []TransactionResponse.
func ToTransactionResponses(txs []*domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		responses[i] = ToTransactionResponse(tx)
	}
	return responses
}

func stringPtr[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
