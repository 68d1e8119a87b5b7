package domain

import (
	"time"

	"github.com/SscSPs/split_ledger/internal/apperrors"
)

// Updatable field names carried by TransactionUpdated facts.
const (
	FieldSplits        = "splits"
	FieldAmount        = "amount"
	FieldMemo          = "memo"
	FieldPayee         = "payee"
	FieldCheckNumber   = "check_number"
	FieldEffectiveDate = "effective_date"
	FieldPostedDate    = "posted_date"
)

const dateLayout = "2006-01-02"

// Transaction is the ledger aggregate. It owns its split lines, enforces the
// split invariants on every mutation and buffers the facts it records.
//
// Invariants:
//   - at least one split
//   - the splits sum exactly to amount, all in amount's currency
//   - no split transfers to the owning account
//   - no two splits transfer to the same account
type Transaction struct {
	id            TransactionID
	ownerID       UserID
	accountID     AccountID
	effectiveDate time.Time
	postedDate    *time.Time
	amount        Money
	status        TransactionStatus
	source        TransactionSource
	splits        []SplitLine
	payeeID       *PayeeID
	payeeName     *string
	memo          *string
	checkNumber   *string

	isMirror            bool
	sourceTransactionID *TransactionID
	sourceSplitID       *SplitID

	createdAt time.Time
	updatedAt time.Time
	version   int64

	events []Event
}

// NewTransactionParams holds the inputs for NewTransaction.
type NewTransactionParams struct {
	OwnerID       UserID
	AccountID     AccountID
	EffectiveDate time.Time
	PostedDate    *time.Time
	Amount        Money
	Splits        []SplitLine
	Source        TransactionSource
	PayeeID       *PayeeID
	PayeeName     *string
	Memo          *string
	CheckNumber   *string
}

// NewTransaction validates the split invariants and returns a PENDING
// transaction with a TransactionCreated fact recorded.
func NewTransaction(p NewTransactionParams) (*Transaction, error) {
	if err := validateSplits(p.AccountID, p.Amount, p.Splits); err != nil {
		return nil, err
	}
	source := p.Source
	if source == "" {
		source = SourceManual
	}

	now := Now()
	t := &Transaction{
		id:            NewTransactionID(),
		ownerID:       p.OwnerID,
		accountID:     p.AccountID,
		effectiveDate: CalendarDate(p.EffectiveDate),
		postedDate:    clonePtr(p.PostedDate),
		amount:        p.Amount,
		status:        StatusPending,
		source:        source,
		splits:        cloneSplits(p.Splits),
		payeeID:       clonePtr(p.PayeeID),
		payeeName:     clonePtr(p.PayeeName),
		memo:          clonePtr(p.Memo),
		checkNumber:   clonePtr(p.CheckNumber),
		createdAt:     now,
		updatedAt:     now,
	}
	t.recordCreated()
	return t, nil
}

// NewMirrorTransaction builds the incoming side of sourceSplit in targetAccount.
// The mirror carries |amount| on a single uncategorized split, inherits memo and
// payee from source and starts without a posted date.
func NewMirrorTransaction(source *Transaction, sourceSplit SplitLine, targetAccount AccountID, amount Money, effectiveDate time.Time) (*Transaction, error) {
	if source == nil {
		return nil, apperrors.New(apperrors.CodeValidation, "mirror requires a source transaction")
	}
	if source.isMirror {
		return nil, apperrors.New(apperrors.CodeCannotModifyMirror, "a mirror cannot produce mirrors")
	}
	if targetAccount == source.accountID {
		return nil, apperrors.New(apperrors.CodeInvalidSplits, "mirror cannot live in the source account")
	}

	incoming := amount.Abs()
	split, err := NewSplitLine(SplitLineParams{Amount: incoming})
	if err != nil {
		return nil, err
	}

	now := Now()
	t := &Transaction{
		id:                  NewTransactionID(),
		ownerID:             source.ownerID,
		accountID:           targetAccount,
		effectiveDate:       CalendarDate(effectiveDate),
		amount:              incoming,
		status:              StatusPending,
		source:              SourceManual,
		splits:              []SplitLine{split},
		payeeID:             clonePtr(source.payeeID),
		payeeName:           clonePtr(source.payeeName),
		memo:                clonePtr(source.memo),
		isMirror:            true,
		sourceTransactionID: ptr(source.id),
		sourceSplitID:       ptr(sourceSplit.ID()),
		createdAt:           now,
		updatedAt:           now,
	}
	t.recordCreated()
	return t, nil
}

func validateSplits(accountID AccountID, amount Money, splits []SplitLine) error {
	if len(splits) == 0 {
		return apperrors.New(apperrors.CodeNoSplits, "transaction must have at least one split")
	}

	total, err := ZeroMoney(amount.Currency())
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidSplits, err, "invalid transaction amount")
	}
	targets := make(map[AccountID]struct{}, len(splits))
	ids := make(map[SplitID]struct{}, len(splits))
	for i, s := range splits {
		if _, dup := ids[s.ID()]; dup {
			return apperrors.New(apperrors.CodeInvalidSplits, "split id %s is used more than once", s.ID())
		}
		ids[s.ID()] = struct{}{}
		if s.Amount().Currency() != amount.Currency() {
			return apperrors.New(apperrors.CodeInvalidSplits,
				"split %d currency %s does not match transaction currency %s", i, s.Amount().Currency(), amount.Currency())
		}
		if s.IsTransfer() {
			target := s.transferTarget()
			if target == accountID {
				return apperrors.New(apperrors.CodeInvalidSplits, "split %d transfers to the transaction's own account", i)
			}
			if _, dup := targets[target]; dup {
				return apperrors.New(apperrors.CodeInvalidSplits, "more than one split transfers to account %s", target)
			}
			targets[target] = struct{}{}
			if !s.Amount().IsNegative() {
				return apperrors.New(apperrors.CodeInvalidSplits, "transfer split %d must be negative", i)
			}
		}
		if total, err = total.Add(s.Amount()); err != nil {
			return apperrors.Wrap(apperrors.CodeInvalidSplits, err, "failed to sum splits")
		}
	}
	if !total.Equal(amount) {
		return apperrors.New(apperrors.CodeInvalidSplits,
			"splits sum to %s but transaction amount is %s", total, amount)
	}
	return nil
}

// Getters. Slices and pointers are returned as copies.

func (t *Transaction) ID() TransactionID         { return t.id }
func (t *Transaction) OwnerID() UserID           { return t.ownerID }
func (t *Transaction) AccountID() AccountID      { return t.accountID }
func (t *Transaction) EffectiveDate() time.Time  { return t.effectiveDate }
func (t *Transaction) PostedDate() *time.Time    { return clonePtr(t.postedDate) }
func (t *Transaction) Amount() Money             { return t.amount }
func (t *Transaction) Status() TransactionStatus { return t.status }
func (t *Transaction) Source() TransactionSource { return t.source }
func (t *Transaction) Splits() []SplitLine       { return cloneSplits(t.splits) }
func (t *Transaction) PayeeID() *PayeeID         { return clonePtr(t.payeeID) }
func (t *Transaction) PayeeName() *string        { return clonePtr(t.payeeName) }
func (t *Transaction) Memo() *string             { return clonePtr(t.memo) }
func (t *Transaction) CheckNumber() *string      { return clonePtr(t.checkNumber) }
func (t *Transaction) IsMirror() bool            { return t.isMirror }
func (t *Transaction) CreatedAt() time.Time      { return t.createdAt }
func (t *Transaction) UpdatedAt() time.Time      { return t.updatedAt }
func (t *Transaction) Version() int64            { return t.version }
func (t *Transaction) OwnedBy(owner UserID) bool { return t.ownerID == owner }
func (t *Transaction) HasPendingEvents() bool    { return len(t.events) > 0 }
func (t *Transaction) SourceSplitID() *SplitID   { return clonePtr(t.sourceSplitID) }

func (t *Transaction) SourceTransactionID() *TransactionID {
	if t.sourceTransactionID == nil {
		return nil
	}
	return ptr(*t.sourceTransactionID)
}

// TransferSplits returns the splits that move money to another account, in order.
func (t *Transaction) TransferSplits() []SplitLine {
	var out []SplitLine
	for _, s := range t.splits {
		if s.IsTransfer() {
			out = append(out, s)
		}
	}
	return out
}

// UpdateSplits replaces the splits and amount together. Nothing changes when
// the new set violates an invariant.
func (t *Transaction) UpdateSplits(splits []SplitLine, amount Money) error {
	if t.isMirror {
		return apperrors.New(apperrors.CodeCannotModifyMirror, "splits of mirror transaction %s cannot be edited", t.id)
	}
	if err := validateSplits(t.accountID, amount, splits); err != nil {
		return err
	}
	old := t.amount
	t.splits = cloneSplits(splits)
	t.amount = amount
	t.touch()
	t.record(TransactionUpdated{
		EventMeta: t.meta(),
		Field:     FieldSplits,
		OldValue:  old.String(),
		NewValue:  amount.String(),
	})
	return nil
}

// UpdateAmount changes the amount of a mirror. A single split is rebuilt with
// the new amount and keeps its identity. An equal amount is a no-op.
func (t *Transaction) UpdateAmount(amount Money) error {
	if t.amount.Equal(amount) {
		return nil
	}
	splits := t.splits
	if t.isMirror && len(t.splits) == 1 {
		rebuilt, err := t.splits[0].WithAmount(amount)
		if err != nil {
			return err
		}
		splits = []SplitLine{rebuilt}
	}
	if err := validateSplits(t.accountID, amount, splits); err != nil {
		return err
	}
	old := t.amount
	t.splits = cloneSplits(splits)
	t.amount = amount
	t.touch()
	t.record(TransactionUpdated{
		EventMeta: t.meta(),
		Field:     FieldAmount,
		OldValue:  old.String(),
		NewValue:  amount.String(),
	})
	return nil
}

// MarkCleared moves PENDING to CLEARED, optionally setting the posted date.
func (t *Transaction) MarkCleared(postedDate *time.Time) error {
	if err := checkTransition(t.status, StatusCleared); err != nil {
		return err
	}
	if postedDate != nil {
		t.postedDate = clonePtr(postedDate)
	}
	t.changeStatus(StatusCleared)
	return nil
}

// MarkReconciled moves CLEARED to RECONCILED.
func (t *Transaction) MarkReconciled() error {
	if err := checkTransition(t.status, StatusReconciled); err != nil {
		return err
	}
	t.changeStatus(StatusReconciled)
	return nil
}

func (t *Transaction) changeStatus(next TransactionStatus) {
	old := t.status
	t.status = next
	t.touch()
	t.record(TransactionStatusChanged{EventMeta: t.meta(), OldStatus: old, NewStatus: next})
}

func (t *Transaction) UpdateMemo(memo *string) {
	if equalStrings(t.memo, memo) {
		return
	}
	old := t.memo
	t.memo = clonePtr(memo)
	t.fieldChanged(FieldMemo, deref(old), deref(memo))
}

// UpdatePayee sets both the payee reference and its display name.
func (t *Transaction) UpdatePayee(payeeID *PayeeID, name *string) {
	if equalPayeeIDs(t.payeeID, payeeID) && equalStrings(t.payeeName, name) {
		return
	}
	old := t.payeeName
	t.payeeID = clonePtr(payeeID)
	t.payeeName = clonePtr(name)
	t.fieldChanged(FieldPayee, deref(old), deref(name))
}

func (t *Transaction) UpdateCheckNumber(checkNumber *string) {
	if equalStrings(t.checkNumber, checkNumber) {
		return
	}
	old := t.checkNumber
	t.checkNumber = clonePtr(checkNumber)
	t.fieldChanged(FieldCheckNumber, deref(old), deref(checkNumber))
}

func (t *Transaction) UpdateEffectiveDate(date time.Time) {
	date = CalendarDate(date)
	if t.effectiveDate.Equal(date) {
		return
	}
	old := t.effectiveDate
	t.effectiveDate = date
	t.fieldChanged(FieldEffectiveDate, old.Format(dateLayout), date.Format(dateLayout))
}

func (t *Transaction) UpdatePostedDate(date *time.Time) {
	if equalTimes(t.postedDate, date) {
		return
	}
	old := t.postedDate
	t.postedDate = clonePtr(date)
	t.fieldChanged(FieldPostedDate, formatDate(old), formatDate(date))
}

func (t *Transaction) fieldChanged(field, oldValue, newValue string) {
	t.touch()
	t.record(TransactionUpdated{EventMeta: t.meta(), Field: field, OldValue: oldValue, NewValue: newValue})
}

// Delete records a TransactionDeleted fact. Removing the stored record is the
// caller's job, inside the same unit of work.
func (t *Transaction) Delete() {
	t.record(TransactionDeleted{EventMeta: t.meta(), AccountID: t.accountID, IsMirror: t.isMirror})
}

// RecordMirrorCreated records on the source that mirror was created for it.
func (t *Transaction) RecordMirrorCreated(mirror *Transaction) {
	t.record(MirrorTransactionCreated{
		EventMeta:           t.meta(),
		SourceTransactionID: t.id,
		MirrorTransactionID: mirror.id,
		TargetAccountID:     mirror.accountID,
	})
}

// RecordMirrorDeleted records on the source that mirror was deleted.
func (t *Transaction) RecordMirrorDeleted(mirror *Transaction) {
	t.record(MirrorTransactionDeleted{
		EventMeta:           t.meta(),
		SourceTransactionID: t.id,
		MirrorTransactionID: mirror.id,
		TargetAccountID:     mirror.accountID,
	})
}

// PullEvents returns the buffered facts in recording order and clears the buffer.
func (t *Transaction) PullEvents() []Event {
	events := t.events
	t.events = nil
	return events
}

// MarkPersisted is called by stores after a successful versioned write.
func (t *Transaction) MarkPersisted() {
	t.version++
}

func (t *Transaction) recordCreated() {
	t.record(TransactionCreated{
		EventMeta: t.meta(),
		AccountID: t.accountID,
		Amount:    t.amount.Amount().StringFixed(MoneyScale),
		Currency:  t.amount.Currency(),
		IsMirror:  t.isMirror,
	})
}

func (t *Transaction) meta() EventMeta {
	return EventMeta{TransactionID: t.id, At: Now()}
}

func (t *Transaction) record(e Event) {
	t.events = append(t.events, e)
}

func (t *Transaction) touch() {
	t.updatedAt = Now()
}

// TransactionState is the fully typed, plain representation of a Transaction
// exchanged with the persistence mapping layer.
type TransactionState struct {
	ID                  TransactionID
	OwnerID             UserID
	AccountID           AccountID
	EffectiveDate       time.Time
	PostedDate          *time.Time
	Amount              Money
	Status              TransactionStatus
	Source              TransactionSource
	Splits              []SplitLineState
	PayeeID             *PayeeID
	PayeeName           *string
	Memo                *string
	CheckNumber         *string
	IsMirror            bool
	SourceTransactionID *TransactionID
	SourceSplitID       *SplitID
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Version             int64
}

// State snapshots the aggregate. Pending facts are not included.
func (t *Transaction) State() TransactionState {
	splits := make([]SplitLineState, len(t.splits))
	for i, s := range t.splits {
		splits[i] = s.State()
	}
	return TransactionState{
		ID:                  t.id,
		OwnerID:             t.ownerID,
		AccountID:           t.accountID,
		EffectiveDate:       t.effectiveDate,
		PostedDate:          t.PostedDate(),
		Amount:              t.amount,
		Status:              t.status,
		Source:              t.source,
		Splits:              splits,
		PayeeID:             t.PayeeID(),
		PayeeName:           t.PayeeName(),
		Memo:                t.Memo(),
		CheckNumber:         t.CheckNumber(),
		IsMirror:            t.isMirror,
		SourceTransactionID: t.SourceTransactionID(),
		SourceSplitID:       t.SourceSplitID(),
		CreatedAt:           t.createdAt,
		UpdatedAt:           t.updatedAt,
		Version:             t.version,
	}
}

// Rehydrate rebuilds a Transaction from stored state, re-checking its
// invariants. No facts are recorded.
func Rehydrate(s TransactionState) (*Transaction, error) {
	if s.ID == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "stored transaction has no id")
	}
	if _, err := ParseTransactionStatus(string(s.Status)); err != nil {
		return nil, err
	}
	if _, err := ParseTransactionSource(string(s.Source)); err != nil {
		return nil, err
	}
	splits := make([]SplitLine, 0, len(s.Splits))
	for _, ss := range s.Splits {
		split, err := NewSplitLine(SplitLineParams(ss))
		if err != nil {
			return nil, err
		}
		splits = append(splits, split)
	}
	if err := validateSplits(s.AccountID, s.Amount, splits); err != nil {
		return nil, err
	}
	return &Transaction{
		id:                  s.ID,
		ownerID:             s.OwnerID,
		accountID:           s.AccountID,
		effectiveDate:       s.EffectiveDate,
		postedDate:          clonePtr(s.PostedDate),
		amount:              s.Amount,
		status:              s.Status,
		source:              s.Source,
		splits:              splits,
		payeeID:             clonePtr(s.PayeeID),
		payeeName:           clonePtr(s.PayeeName),
		memo:                clonePtr(s.Memo),
		checkNumber:         clonePtr(s.CheckNumber),
		isMirror:            s.IsMirror,
		sourceTransactionID: clonePtr(s.SourceTransactionID),
		sourceSplitID:       clonePtr(s.SourceSplitID),
		createdAt:           s.CreatedAt,
		updatedAt:           s.UpdatedAt,
		version:             s.Version,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func equalStrings(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalPayeeIDs(a, b *PayeeID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTimes(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
