package mapping

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/split_ledger/internal/core/domain"
)

func buildTransfer(t *testing.T) (*domain.Transaction, *domain.Transaction) {
	t.Helper()
	savings := domain.AccountID("savings")
	food := domain.CategoryID("food")

	transfer, err := domain.NewSplitLine(domain.SplitLineParams{
		Amount:            domain.MustMoney("-60", "USD"),
		TransferAccountID: &savings,
	})
	require.NoError(t, err)
	spend, err := domain.NewSplitLine(domain.SplitLineParams{
		Amount:     domain.MustMoney("-40", "USD"),
		CategoryID: &food,
	})
	require.NoError(t, err)

	memo := "paycheck split"
	source, err := domain.NewTransaction(domain.NewTransactionParams{
		OwnerID:       "owner-1",
		AccountID:     "checking",
		EffectiveDate: time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		Amount:        domain.MustMoney("-100", "USD"),
		Splits:        []domain.SplitLine{transfer, spend},
		Memo:          &memo,
	})
	require.NoError(t, err)

	mirror, err := domain.NewMirrorTransaction(source, transfer, savings, transfer.Amount(), source.EffectiveDate())
	require.NoError(t, err)
	return source, mirror
}

func TestTransactionMapping_PreservesSplitsAndMirrorLinks(t *testing.T) {
	source, mirror := buildTransfer(t)

	m := ToModelTransaction(source)
	require.Len(t, m.Splits, 2)
	assert.Equal(t, 0, m.Splits[0].Position)
	assert.Equal(t, "savings", *m.Splits[0].TransferAccountID)
	assert.Equal(t, "food", *m.Splits[1].CategoryID)
	assert.Equal(t, "USD", m.CurrencyCode)
	assert.Nil(t, m.SourceTransactionID)
	assert.Equal(t, source.CreatedAt(), m.CreatedAt)
	assert.Equal(t, source.UpdatedAt(), m.UpdatedAt)
	assert.Equal(t, source.Version(), m.Version)

	back, err := ToDomainTransaction(m)
	require.NoError(t, err)
	assert.Equal(t, source.State(), back.State())
	assert.False(t, back.HasPendingEvents())

	mm := ToModelTransaction(mirror)
	assert.True(t, mm.IsMirror)
	assert.Equal(t, string(source.ID()), *mm.SourceTransactionID)
	assert.Equal(t, string(source.Splits()[0].ID()), *mm.SourceSplitID)

	mirrorBack, err := ToDomainTransaction(mm)
	require.NoError(t, err)
	assert.True(t, mirrorBack.IsMirror())
	assert.Equal(t, source.ID(), *mirrorBack.SourceTransactionID())
}

func TestToDomainTransaction_RejectsCorruptRows(t *testing.T) {
	source, _ := buildTransfer(t)

	badStatus := ToModelTransaction(source)
	badStatus.Status = "VOID"
	_, err := ToDomainTransaction(badStatus)
	assert.Error(t, err)

	unbalanced := ToModelTransaction(source)
	unbalanced.Splits = unbalanced.Splits[:1]
	_, err = ToDomainTransaction(unbalanced)
	assert.Error(t, err)
}

func TestToModelDomainEvent(t *testing.T) {
	source, _ := buildTransfer(t)
	events := source.PullEvents()
	require.NotEmpty(t, events)

	row, err := ToModelDomainEvent(events[0])
	require.NoError(t, err)
	assert.NotEmpty(t, row.EventID)
	assert.Equal(t, string(source.ID()), row.AggregateID)
	assert.Equal(t, domain.AggregateTypeTransaction, row.AggregateType)
	assert.Equal(t, domain.EventTransactionCreated, row.EventType)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(row.Payload, &payload))
	assert.Equal(t, "checking", payload["accountID"])
	assert.Equal(t, "USD", payload["currency"])
}
