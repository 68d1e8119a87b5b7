package domain

import (
	"github.com/SscSPs/split_ledger/internal/apperrors"
)

// TransactionStatus is the reconciliation state of a transaction.
// It only ever moves forward: PENDING -> CLEARED -> RECONCILED.
type TransactionStatus string

const (
	StatusPending    TransactionStatus = "PENDING"
	StatusCleared    TransactionStatus = "CLEARED"
	StatusReconciled TransactionStatus = "RECONCILED"
)

// ParseTransactionStatus converts a stored or requested value into a status.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch st := TransactionStatus(s); st {
	case StatusPending, StatusCleared, StatusReconciled:
		return st, nil
	}
	return "", apperrors.New(apperrors.CodeStatusError, "unknown transaction status %q", s)
}

// next returns the only status reachable from s, if any.
func (s TransactionStatus) next() (TransactionStatus, bool) {
	switch s {
	case StatusPending:
		return StatusCleared, true
	case StatusCleared:
		return StatusReconciled, true
	}
	return "", false
}

// CanTransitionTo reports whether target is the single legal successor of s.
func (s TransactionStatus) CanTransitionTo(target TransactionStatus) bool {
	n, ok := s.next()
	return ok && n == target
}

func checkTransition(from, to TransactionStatus) error {
	if from.CanTransitionTo(to) {
		return nil
	}
	if from == StatusPending && to == StatusReconciled {
		return apperrors.New(apperrors.CodeInvalidStatusTransition,
			"cannot transition from %s to %s: transaction must be cleared first", from, to)
	}
	return apperrors.New(apperrors.CodeInvalidStatusTransition, "cannot transition from %s to %s", from, to)
}

// TransactionSource records how a transaction entered the ledger.
type TransactionSource string

const (
	SourceManual     TransactionSource = "MANUAL"
	SourceDownloaded TransactionSource = "DOWNLOADED"
)

// ParseTransactionSource converts a stored value into a source.
func ParseTransactionSource(s string) (TransactionSource, error) {
	switch src := TransactionSource(s); src {
	case SourceManual, SourceDownloaded:
		return src, nil
	}
	return "", apperrors.New(apperrors.CodeValidation, "unknown transaction source %q", s)
}
