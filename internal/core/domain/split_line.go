package domain

import (
	"github.com/SscSPs/split_ledger/internal/apperrors"
)

// SplitLine is one signed allocation of a transaction's amount. It is tied to a
// category, to a transfer target account, or to neither (uncategorized).
// SplitLine is immutable; build a replacement to change it.
type SplitLine struct {
	id                SplitID
	amount            Money
	categoryID        *CategoryID
	transferAccountID *AccountID
	memo              *string
}

// SplitLineParams holds the raw inputs for NewSplitLine. An empty ID means a new line.
type SplitLineParams struct {
	ID                SplitID
	Amount            Money
	CategoryID        *CategoryID
	TransferAccountID *AccountID
	Memo              *string
}

// NewSplitLine validates p and returns the split.
func NewSplitLine(p SplitLineParams) (SplitLine, error) {
	if p.Amount.Currency() == "" {
		return SplitLine{}, apperrors.New(apperrors.CodeInvalidSplit, "split amount is required")
	}
	if p.CategoryID != nil && p.TransferAccountID != nil {
		return SplitLine{}, apperrors.New(apperrors.CodeInvalidSplit,
			"split cannot have both a category and a transfer account")
	}
	if p.TransferAccountID != nil && !p.Amount.IsNegative() {
		return SplitLine{}, apperrors.New(apperrors.CodeInvalidSplit,
			"transfer split amount must be negative, got %s", p.Amount)
	}

	id := p.ID
	if id == "" {
		id = NewSplitID()
	}

	s := SplitLine{
		id:     id,
		amount: p.Amount,
		memo:   clonePtr(p.Memo),
	}
	if p.CategoryID != nil {
		s.categoryID = ptr(*p.CategoryID)
	}
	if p.TransferAccountID != nil {
		s.transferAccountID = ptr(*p.TransferAccountID)
	}
	return s, nil
}

func (s SplitLine) ID() SplitID   { return s.id }
func (s SplitLine) Amount() Money { return s.amount }
func (s SplitLine) Memo() *string { return clonePtr(s.memo) }

func (s SplitLine) CategoryID() *CategoryID {
	if s.categoryID == nil {
		return nil
	}
	return ptr(*s.categoryID)
}

func (s SplitLine) TransferAccountID() *AccountID {
	if s.transferAccountID == nil {
		return nil
	}
	return ptr(*s.transferAccountID)
}

func (s SplitLine) IsTransfer() bool      { return s.transferAccountID != nil }
func (s SplitLine) IsCategorized() bool   { return s.categoryID != nil }
func (s SplitLine) IsUncategorized() bool { return s.categoryID == nil && s.transferAccountID == nil }

// transferTarget returns the target account, or "" for non-transfer splits.
func (s SplitLine) transferTarget() AccountID {
	if s.transferAccountID == nil {
		return ""
	}
	return *s.transferAccountID
}

// WithAmount returns a replacement split carrying amount and the same identity.
func (s SplitLine) WithAmount(amount Money) (SplitLine, error) {
	return NewSplitLine(SplitLineParams{
		ID:                s.id,
		Amount:            amount,
		CategoryID:        s.categoryID,
		TransferAccountID: s.transferAccountID,
		Memo:              s.memo,
	})
}

// SplitLineState is the plain representation used at the persistence boundary.
type SplitLineState struct {
	ID                SplitID
	Amount            Money
	CategoryID        *CategoryID
	TransferAccountID *AccountID
	Memo              *string
}

func (s SplitLine) State() SplitLineState {
	return SplitLineState{
		ID:                s.id,
		Amount:            s.amount,
		CategoryID:        s.CategoryID(),
		TransferAccountID: s.TransferAccountID(),
		Memo:              s.Memo(),
	}
}

func cloneSplits(splits []SplitLine) []SplitLine {
	out := make([]SplitLine, len(splits))
	copy(out, splits)
	return out
}
