package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Pubsub fans ledger events out to in-process subscribers keyed by event
// type. Publish blocks until every subscriber has taken the event, so
// subscribers should use buffered channels or drain promptly.
type Pubsub struct {
	mu   sync.RWMutex
	subs map[string]map[string]chan LedgerEvent
}

func NewPubsub() *Pubsub {
	ps := &Pubsub{}
	ps.subs = make(map[string]map[string]chan LedgerEvent)
	return ps
}

// Subscribe registers ch for events of the given type and returns the
// subscription id to pass to Unsubscribe.
func (ps *Pubsub) Subscribe(eventType string, ch chan LedgerEvent) string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.subs[eventType] == nil {
		ps.subs[eventType] = make(map[string]chan LedgerEvent)
	}
	subID := uuid.New().String()
	ps.subs[eventType][subID] = ch
	return subID
}

// Unsubscribe closes the subscription channel and removes it. Unknown ids
// are ignored.
func (ps *Pubsub) Unsubscribe(subID string, eventType string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.subs[eventType] == nil {
		return
	}
	if ps.subs[eventType][subID] == nil {
		return
	}
	close(ps.subs[eventType][subID])
	delete(ps.subs[eventType], subID)
}

// Publish delivers the event to every subscriber of event.Type.
func (ps *Pubsub) Publish(_ context.Context, event LedgerEvent) error {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, ch := range ps.subs[event.Type] {
		ch <- event
	}
	return nil
}

// Close drops all subscriptions and closes their channels.
func (ps *Pubsub) Close() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for eventType, subs := range ps.subs {
		for subID, ch := range subs {
			close(ch)
			delete(subs, subID)
		}
		delete(ps.subs, eventType)
	}
	return nil
}
