package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/split_ledger/internal/core/domain"
	"github.com/SscSPs/split_ledger/internal/events"
	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversByTypeAndWildcardInOrder(t *testing.T) {
	bus := events.NewBus(nil)
	var got []string

	bus.Subscribe(domain.EventTransactionDeleted, func(_ context.Context, e domain.Event) error {
		got = append(got, "deleted:"+e.AggregateID())
		return errors.New("handler failure is logged only")
	})
	bus.SubscribeAll(func(_ context.Context, e domain.Event) error {
		got = append(got, "all:"+e.EventType())
		return nil
	})

	meta := domain.EventMeta{TransactionID: "tx-1", At: time.Now()}
	bus.Publish(context.Background(),
		domain.MirrorTransactionDeleted{EventMeta: meta},
		domain.TransactionDeleted{EventMeta: meta},
	)

	assert.Equal(t, []string{
		"all:" + domain.EventMirrorTransactionDeleted,
		"deleted:tx-1",
		"all:" + domain.EventTransactionDeleted,
	}, got)
}
