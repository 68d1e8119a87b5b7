package domain

import "time"

// AggregateTypeTransaction tags every fact recorded by the Transaction aggregate.
const AggregateTypeTransaction = "Transaction"

// Fact type names, as stored in the outbox and used for bus subscriptions.
const (
	EventTransactionCreated       = "TransactionCreated"
	EventTransactionUpdated       = "TransactionUpdated"
	EventTransactionStatusChanged = "TransactionStatusChanged"
	EventTransactionDeleted       = "TransactionDeleted"
	EventMirrorTransactionCreated = "MirrorTransactionCreated"
	EventMirrorTransactionDeleted = "MirrorTransactionDeleted"
)

// Event is a fact recorded by an aggregate during a unit of work. Facts are
// buffered on the aggregate and drained with PullEvents.
type Event interface {
	AggregateID() string
	AggregateType() string
	EventType() string
	OccurredAt() time.Time
}

// EventMeta carries the fields shared by every transaction fact.
type EventMeta struct {
	TransactionID TransactionID `json:"transactionID"`
	At            time.Time     `json:"occurredAt"`
}

func (m EventMeta) AggregateID() string   { return string(m.TransactionID) }
func (m EventMeta) AggregateType() string { return AggregateTypeTransaction }
func (m EventMeta) OccurredAt() time.Time { return m.At }

type TransactionCreated struct {
	EventMeta
	AccountID AccountID `json:"accountID"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	IsMirror  bool      `json:"isMirror"`
}

func (TransactionCreated) EventType() string { return EventTransactionCreated }

// TransactionUpdated records a single field change. Values are rendered as
// strings; an absent optional value is the empty string.
type TransactionUpdated struct {
	EventMeta
	Field    string `json:"field"`
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

func (TransactionUpdated) EventType() string { return EventTransactionUpdated }

type TransactionStatusChanged struct {
	EventMeta
	OldStatus TransactionStatus `json:"oldStatus"`
	NewStatus TransactionStatus `json:"newStatus"`
}

func (TransactionStatusChanged) EventType() string { return EventTransactionStatusChanged }

type TransactionDeleted struct {
	EventMeta
	AccountID AccountID `json:"accountID"`
	IsMirror  bool      `json:"isMirror"`
}

func (TransactionDeleted) EventType() string { return EventTransactionDeleted }

// MirrorTransactionCreated is recorded on the source when one of its transfer
// splits produces a mirror.
type MirrorTransactionCreated struct {
	EventMeta
	SourceTransactionID TransactionID `json:"sourceTransactionID"`
	MirrorTransactionID TransactionID `json:"mirrorTransactionID"`
	TargetAccountID     AccountID     `json:"targetAccountID"`
}

func (MirrorTransactionCreated) EventType() string { return EventMirrorTransactionCreated }

type MirrorTransactionDeleted struct {
	EventMeta
	SourceTransactionID TransactionID `json:"sourceTransactionID"`
	MirrorTransactionID TransactionID `json:"mirrorTransactionID"`
	TargetAccountID     AccountID     `json:"targetAccountID"`
}

func (MirrorTransactionDeleted) EventType() string { return EventMirrorTransactionDeleted }

// Now is the clock used for timestamps and fact times. Tests may replace it.
var Now = func() time.Time { return time.Now().UTC() }
