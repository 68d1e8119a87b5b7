package domain_test

import (
	"testing"

	"github.com/SscSPs/split_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mirrorFor(t *testing.T, source *domain.Transaction, split domain.SplitLine) *domain.Transaction {
	t.Helper()
	m, err := domain.NewMirrorTransaction(source, split, *split.TransferAccountID(), split.Amount(), effective)
	require.NoError(t, err)
	return m
}

func TestPlanMirrorSync(t *testing.T) {
	toSavings := transferSplit(t, "-100", savings)
	toBrokers := transferSplit(t, "-50", brokers)
	food := categorySplit(t, "-20", "food")
	source := newTx(t, "-170", toSavings, toBrokers, food)
	savingsMirror := mirrorFor(t, source, toSavings)
	brokersMirror := mirrorFor(t, source, toBrokers)
	existing := []*domain.Transaction{savingsMirror, brokersMirror}

	t.Run("amount change updates in place", func(t *testing.T) {
		changed, err := toSavings.WithAmount(domain.MustMoney("-150", "USD"))
		require.NoError(t, err)

		ops := domain.PlanMirrorSync(
			[]domain.SplitLine{toSavings}, []domain.SplitLine{changed},
			[]*domain.Transaction{savingsMirror})

		require.Len(t, ops, 1)
		assert.Equal(t, domain.MirrorUpdate, ops[0].Action)
		assert.Same(t, savingsMirror, ops[0].Mirror)
		assert.True(t, ops[0].Split.Amount().Neg().Equal(domain.MustMoney("150", "USD")))
	})

	t.Run("removed transfer deletes before other changes", func(t *testing.T) {
		toNew := transferSplit(t, "-10", domain.AccountID("wallet"))
		ops := domain.PlanMirrorSync(
			[]domain.SplitLine{toSavings, toBrokers, food},
			[]domain.SplitLine{toNew, toBrokers, food},
			existing)

		require.Len(t, ops, 3)
		assert.Equal(t, domain.MirrorDelete, ops[0].Action)
		assert.Equal(t, savings, ops[0].TargetAccountID)
		assert.Same(t, savingsMirror, ops[0].Mirror)
		assert.Equal(t, domain.MirrorCreate, ops[1].Action)
		assert.Equal(t, domain.AccountID("wallet"), ops[1].TargetAccountID)
		assert.Nil(t, ops[1].Mirror)
		assert.Equal(t, domain.MirrorUpdate, ops[2].Action)
		assert.Equal(t, brokers, ops[2].TargetAccountID)
	})

	t.Run("only categories left deletes every mirror", func(t *testing.T) {
		ops := domain.PlanMirrorSync([]domain.SplitLine{toSavings, toBrokers, food}, []domain.SplitLine{food}, existing)

		require.Len(t, ops, 2)
		for _, op := range ops {
			assert.Equal(t, domain.MirrorDelete, op.Action)
		}
		assert.Equal(t, savings, ops[0].TargetAccountID)
		assert.Equal(t, brokers, ops[1].TargetAccountID)
	})

	t.Run("same account re-added reuses mirror", func(t *testing.T) {
		readded := transferSplit(t, "-80", savings)
		ops := domain.PlanMirrorSync([]domain.SplitLine{toSavings}, []domain.SplitLine{readded}, []*domain.Transaction{savingsMirror})

		require.Len(t, ops, 1)
		assert.Equal(t, domain.MirrorUpdate, ops[0].Action)
		assert.Equal(t, readded.ID(), ops[0].Split.ID())
	})

	t.Run("no transfers yields empty plan", func(t *testing.T) {
		assert.Empty(t, domain.PlanMirrorSync([]domain.SplitLine{food}, []domain.SplitLine{food}, nil))
	})
}
