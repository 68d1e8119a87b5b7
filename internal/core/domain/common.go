package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// Version is incremented on every persisted update and guards against
	// concurrent edits (optimistic locking).
	Version int64 `json:"version"`
}

// Typed identifiers. They are produced from plain strings once, at the
// persistence mapping boundary, and never coerced afterwards.
type (
	UserID        string
	AccountID     string
	CategoryID    string
	PayeeID       string
	TransactionID string
	SplitID       string
)

// NewTransactionID returns a fresh random transaction identifier.
func NewTransactionID() TransactionID { return TransactionID(uuid.NewString()) }

// NewSplitID returns a fresh random split identifier.
func NewSplitID() SplitID { return SplitID(uuid.NewString()) }

// CalendarDate truncates t to midnight UTC of its UTC calendar day, the
// precision effective dates are stored with.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	return ptr(*p)
}
