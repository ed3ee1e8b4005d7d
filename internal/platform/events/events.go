// Package events carries notifications about posted and reversed journal
// entries to downstream consumers, either in-process or over RabbitMQ.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Event types used as pubsub topics and AMQP routing keys.
const (
	TypeEntryPosted   = "journal_entry.posted"
	TypeEntryReversed = "journal_entry.reversed"
)

// LedgerEvent describes a single journal entry that was posted or reversed.
type LedgerEvent struct {
	Type             string          `json:"type"`
	SourceTable      string          `json:"sourceTable"`
	SourceID         string          `json:"sourceId"`
	EntryID          string          `json:"entryId"`
	EntryNumber      string          `json:"entryNumber"`
	Amount           decimal.Decimal `json:"amount"`
	CurrencyCode     string          `json:"currencyCode"`
	FunctionalAmount decimal.Decimal `json:"functionalAmount"`
	OccurredAt       time.Time       `json:"occurredAt"`
}

// Publisher delivers ledger events to whoever is listening. Publishing is
// best-effort from the caller's point of view: entries are already committed
// by the time an event goes out.
type Publisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
	Close() error
}

// NoopPublisher discards every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, LedgerEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
