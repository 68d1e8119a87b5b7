package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/split_ledger/internal/apperrors"
	"github.com/SscSPs/split_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner    = domain.UserID("user-1")
	checking = domain.AccountID("checking")
	savings  = domain.AccountID("savings")
	brokers  = domain.AccountID("brokerage")
)

var effective = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func categorySplit(t *testing.T, amount, category string) domain.SplitLine {
	t.Helper()
	s, err := domain.NewSplitLine(domain.SplitLineParams{Amount: domain.MustMoney(amount, "USD"), CategoryID: categoryPtr(category)})
	require.NoError(t, err)
	return s
}

func transferSplit(t *testing.T, amount string, target domain.AccountID) domain.SplitLine {
	t.Helper()
	s, err := domain.NewSplitLine(domain.SplitLineParams{Amount: domain.MustMoney(amount, "USD"), TransferAccountID: &target})
	require.NoError(t, err)
	return s
}

func splitWithID(t *testing.T, id domain.SplitID, amount string, target *domain.AccountID) domain.SplitLine {
	t.Helper()
	s, err := domain.NewSplitLine(domain.SplitLineParams{ID: id, Amount: domain.MustMoney(amount, "USD"), TransferAccountID: target})
	require.NoError(t, err)
	return s
}

func newTx(t *testing.T, amount string, splits ...domain.SplitLine) *domain.Transaction {
	t.Helper()
	memo := "rent"
	tx, err := domain.NewTransaction(domain.NewTransactionParams{
		OwnerID:       owner,
		AccountID:     checking,
		EffectiveDate: effective,
		Amount:        domain.MustMoney(amount, "USD"),
		Splits:        splits,
		Memo:          &memo,
	})
	require.NoError(t, err)
	return tx
}

func TestNewTransaction_Invariants(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		splits   func(t *testing.T) []domain.SplitLine
		wantCode apperrors.Code
	}{
		{
			name:   "balanced category splits",
			amount: "-100",
			splits: func(t *testing.T) []domain.SplitLine {
				return []domain.SplitLine{categorySplit(t, "-70", "food"), categorySplit(t, "-30", "fuel")}
			},
		},
		{
			name:     "no splits",
			amount:   "-100",
			splits:   func(t *testing.T) []domain.SplitLine { return nil },
			wantCode: apperrors.CodeNoSplits,
		},
		{
			name:   "sum mismatch",
			amount: "-90",
			splits: func(t *testing.T) []domain.SplitLine {
				return []domain.SplitLine{categorySplit(t, "-70", "food"), categorySplit(t, "-30", "fuel")}
			},
			wantCode: apperrors.CodeInvalidSplits,
		},
		{
			name:   "self transfer",
			amount: "-100",
			splits: func(t *testing.T) []domain.SplitLine {
				return []domain.SplitLine{transferSplit(t, "-100", checking)}
			},
			wantCode: apperrors.CodeInvalidSplits,
		},
		{
			name:   "duplicate transfer target",
			amount: "-100",
			splits: func(t *testing.T) []domain.SplitLine {
				return []domain.SplitLine{transferSplit(t, "-40", savings), transferSplit(t, "-60", savings)}
			},
			wantCode: apperrors.CodeInvalidSplits,
		},
		{
			name:   "duplicate split id across transfers",
			amount: "-100",
			splits: func(t *testing.T) []domain.SplitLine {
				sv, br := savings, brokers
				return []domain.SplitLine{splitWithID(t, "dup", "-40", &sv), splitWithID(t, "dup", "-60", &br)}
			},
			wantCode: apperrors.CodeInvalidSplits,
		},
		{
			name:   "duplicate split id on categorized lines",
			amount: "-100",
			splits: func(t *testing.T) []domain.SplitLine {
				return []domain.SplitLine{splitWithID(t, "same", "-70", nil), splitWithID(t, "same", "-30", nil)}
			},
			wantCode: apperrors.CodeInvalidSplits,
		},
		{
			name:   "split currency differs",
			amount: "-100",
			splits: func(t *testing.T) []domain.SplitLine {
				s, err := domain.NewSplitLine(domain.SplitLineParams{Amount: domain.MustMoney("-100", "EUR")})
				require.NoError(t, err)
				return []domain.SplitLine{s}
			},
			wantCode: apperrors.CodeInvalidSplits,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits := tt.splits(t)
			tx, err := domain.NewTransaction(domain.NewTransactionParams{
				OwnerID:       owner,
				AccountID:     checking,
				EffectiveDate: effective,
				Amount:        domain.MustMoney(tt.amount, "USD"),
				Splits:        splits,
			})
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
				assert.Nil(t, tx)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.StatusPending, tx.Status())
			assert.ElementsMatch(t, splits, tx.Splits())

			events := tx.PullEvents()
			require.Len(t, events, 1)
			created, ok := events[0].(domain.TransactionCreated)
			require.True(t, ok)
			assert.False(t, created.IsMirror)
			assert.Equal(t, checking, created.AccountID)
			assert.Equal(t, "USD", created.Currency)
			assert.Empty(t, tx.PullEvents())
		})
	}
}

func TestTransaction_UpdateSplits(t *testing.T) {
	tx := newTx(t, "-100", categorySplit(t, "-70", "food"), categorySplit(t, "-30", "fuel"))
	tx.PullEvents()
	original := tx.Splits()

	err := tx.UpdateSplits(original, domain.MustMoney("-90", "USD"))
	assert.Equal(t, apperrors.CodeInvalidSplits, apperrors.CodeOf(err))
	assert.True(t, tx.Amount().Equal(domain.MustMoney("-100", "USD")))
	assert.Equal(t, original, tx.Splits())
	assert.Empty(t, tx.PullEvents())

	replacement := []domain.SplitLine{categorySplit(t, "-50", "food"), transferSplit(t, "-40", savings)}
	require.NoError(t, tx.UpdateSplits(replacement, domain.MustMoney("-90", "USD")))
	assert.Equal(t, replacement, tx.Splits())
	assert.Len(t, tx.TransferSplits(), 1)

	events := tx.PullEvents()
	require.Len(t, events, 1)
	updated := events[0].(domain.TransactionUpdated)
	assert.Equal(t, domain.FieldSplits, updated.Field)
	assert.Equal(t, "-100.0000 USD", updated.OldValue)
	assert.Equal(t, "-90.0000 USD", updated.NewValue)
}

func TestNewMirrorTransaction(t *testing.T) {
	split := transferSplit(t, "-100", savings)
	source := newTx(t, "-100", split)

	for _, amount := range []string{"-100", "100"} {
		mirror, err := domain.NewMirrorTransaction(source, split, savings, domain.MustMoney(amount, "USD"), source.EffectiveDate())
		require.NoError(t, err)

		assert.True(t, mirror.IsMirror())
		assert.True(t, mirror.Amount().Equal(domain.MustMoney("100", "USD")))
		assert.Equal(t, savings, mirror.AccountID())
		require.Len(t, mirror.Splits(), 1)
		assert.True(t, mirror.Splits()[0].IsUncategorized())
		assert.Equal(t, split.ID(), *mirror.SourceSplitID())
		assert.Equal(t, source.ID(), *mirror.SourceTransactionID())
		assert.Nil(t, mirror.PostedDate())
		assert.Equal(t, "rent", *mirror.Memo())

		events := mirror.PullEvents()
		require.Len(t, events, 1)
		assert.True(t, events[0].(domain.TransactionCreated).IsMirror)
	}

	mirror, err := domain.NewMirrorTransaction(source, split, savings, split.Amount(), effective)
	require.NoError(t, err)
	_, err = domain.NewMirrorTransaction(mirror, mirror.Splits()[0], brokers, split.Amount(), effective)
	assert.Error(t, err)
}

func TestTransaction_UpdateAmountOnMirror(t *testing.T) {
	split := transferSplit(t, "-100", savings)
	source := newTx(t, "-100", split)
	mirror, err := domain.NewMirrorTransaction(source, split, savings, split.Amount(), effective)
	require.NoError(t, err)
	mirror.PullEvents()
	splitID := mirror.Splits()[0].ID()

	require.NoError(t, mirror.UpdateAmount(domain.MustMoney("100", "USD")))
	assert.False(t, mirror.HasPendingEvents())

	require.NoError(t, mirror.UpdateAmount(domain.MustMoney("150", "USD")))
	assert.True(t, mirror.Amount().Equal(domain.MustMoney("150", "USD")))
	require.Len(t, mirror.Splits(), 1)
	assert.Equal(t, splitID, mirror.Splits()[0].ID())
	assert.True(t, mirror.Splits()[0].Amount().Equal(domain.MustMoney("150", "USD")))

	events := mirror.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.FieldAmount, events[0].(domain.TransactionUpdated).Field)

	err = mirror.UpdateSplits(mirror.Splits(), mirror.Amount())
	assert.Equal(t, apperrors.CodeCannotModifyMirror, apperrors.CodeOf(err))
}

func TestTransaction_StatusLifecycle(t *testing.T) {
	tx := newTx(t, "-10", categorySplit(t, "-10", "food"))
	tx.PullEvents()

	err := tx.MarkReconciled()
	assert.Equal(t, apperrors.CodeInvalidStatusTransition, apperrors.CodeOf(err))
	assert.Equal(t, domain.StatusPending, tx.Status())

	posted := effective.AddDate(0, 0, 2)
	require.NoError(t, tx.MarkCleared(&posted))
	assert.Equal(t, domain.StatusCleared, tx.Status())
	assert.True(t, tx.PostedDate().Equal(posted))

	err = tx.MarkCleared(nil)
	assert.Equal(t, apperrors.CodeInvalidStatusTransition, apperrors.CodeOf(err))

	require.NoError(t, tx.MarkReconciled())
	assert.Equal(t, domain.StatusReconciled, tx.Status())

	err = tx.MarkReconciled()
	assert.Equal(t, apperrors.CodeInvalidStatusTransition, apperrors.CodeOf(err))

	events := tx.PullEvents()
	require.Len(t, events, 2)
	cleared := events[0].(domain.TransactionStatusChanged)
	assert.Equal(t, domain.StatusPending, cleared.OldStatus)
	assert.Equal(t, domain.StatusCleared, cleared.NewStatus)
	assert.Equal(t, domain.StatusReconciled, events[1].(domain.TransactionStatusChanged).NewStatus)
}

func TestTransaction_FieldUpdates(t *testing.T) {
	tx := newTx(t, "-10", categorySplit(t, "-10", "food"))
	tx.PullEvents()

	same := "rent"
	tx.UpdateMemo(&same)
	assert.False(t, tx.HasPendingEvents())

	memo := "groceries"
	tx.UpdateMemo(&memo)
	check := "1042"
	tx.UpdateCheckNumber(&check)
	tx.UpdateEffectiveDate(effective.AddDate(0, 0, 1))
	payee := domain.PayeeID("payee-1")
	name := "Corner Shop"
	tx.UpdatePayee(&payee, &name)
	tx.UpdatePostedDate(nil)

	events := tx.PullEvents()
	require.Len(t, events, 4)
	fields := make([]string, 0, len(events))
	for _, e := range events {
		fields = append(fields, e.(domain.TransactionUpdated).Field)
	}
	assert.Equal(t, []string{domain.FieldMemo, domain.FieldCheckNumber, domain.FieldEffectiveDate, domain.FieldPayee}, fields)
	memoChange := events[0].(domain.TransactionUpdated)
	assert.Equal(t, "rent", memoChange.OldValue)
	assert.Equal(t, "groceries", memoChange.NewValue)
	assert.Equal(t, "2026-03-15", events[2].(domain.TransactionUpdated).NewValue)
}

func TestTransaction_DeleteAndMirrorFacts(t *testing.T) {
	split := transferSplit(t, "-100", savings)
	source := newTx(t, "-100", split)
	mirror, err := domain.NewMirrorTransaction(source, split, savings, split.Amount(), effective)
	require.NoError(t, err)
	source.PullEvents()

	source.RecordMirrorCreated(mirror)
	source.RecordMirrorDeleted(mirror)
	source.Delete()

	events := source.PullEvents()
	require.Len(t, events, 3)
	created := events[0].(domain.MirrorTransactionCreated)
	assert.Equal(t, mirror.ID(), created.MirrorTransactionID)
	assert.Equal(t, savings, created.TargetAccountID)
	assert.Equal(t, domain.EventMirrorTransactionDeleted, events[1].EventType())
	deleted := events[2].(domain.TransactionDeleted)
	assert.False(t, deleted.IsMirror)
	assert.Equal(t, string(source.ID()), deleted.AggregateID())
	assert.Equal(t, domain.AggregateTypeTransaction, deleted.AggregateType())
}

func TestRehydrate_RoundTripsState(t *testing.T) {
	tx := newTx(t, "-100", categorySplit(t, "-60", "food"), transferSplit(t, "-40", savings))
	tx.MarkPersisted()

	restored, err := domain.Rehydrate(tx.State())
	require.NoError(t, err)
	assert.Equal(t, tx.State(), restored.State())
	assert.Equal(t, int64(1), restored.Version())
	assert.False(t, restored.HasPendingEvents())

	broken := tx.State()
	broken.Amount = domain.MustMoney("-1", "USD")
	_, err = domain.Rehydrate(broken)
	assert.Equal(t, apperrors.CodeInvalidSplits, apperrors.CodeOf(err))

	broken = tx.State()
	broken.Status = "VOID"
	_, err = domain.Rehydrate(broken)
	assert.Equal(t, apperrors.CodeStatusError, apperrors.CodeOf(err))
}

func TestTransaction_EffectiveDateIsCalendarDate(t *testing.T) {
	eastern := time.FixedZone("EST", -5*60*60)
	evening := time.Date(2026, 3, 13, 22, 30, 0, 0, eastern)

	tx, err := domain.NewTransaction(domain.NewTransactionParams{
		OwnerID:       owner,
		AccountID:     checking,
		EffectiveDate: evening,
		Amount:        domain.MustMoney("-10", "USD"),
		Splits:        []domain.SplitLine{categorySplit(t, "-10", "food")},
	})
	require.NoError(t, err)
	assert.Equal(t, effective, tx.EffectiveDate())
	tx.PullEvents()

	tx.UpdateEffectiveDate(evening)
	tx.UpdateEffectiveDate(effective.Add(17 * time.Hour))
	assert.False(t, tx.HasPendingEvents())

	source := newTx(t, "-10", transferSplit(t, "-10", savings))
	mirror, err := domain.NewMirrorTransaction(source, source.Splits()[0], savings, domain.MustMoney("-10", "USD"), evening)
	require.NoError(t, err)
	assert.Equal(t, effective, mirror.EffectiveDate())
}
