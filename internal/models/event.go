package models

import (
	"encoding/json"
	"time"
)

// DomainEvent is a row of the domain_events outbox table.
type DomainEvent struct {
	EventID       string          `db:"event_id"`
	AggregateID   string          `db:"aggregate_id"`
	AggregateType string          `db:"aggregate_type"`
	EventType     string          `db:"event_type"`
	Payload       json.RawMessage `db:"payload"`
	OccurredAt    time.Time       `db:"occurred_at"`
}
