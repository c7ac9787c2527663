package events

import (
	"context"
	"sync"

	"coinsbot/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeAccountCreated EventType = "account_created"
	EventTypeLevelUp        EventType = "level_up"
	EventTypeGameResolved   EventType = "game_resolved"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID     int64
	Action     models.ActionType
	Delta      int64
	NewBalance int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent represents a new account creation
type AccountCreatedEvent struct {
	UserID          int64
	StartingBalance int64
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// LevelUpEvent represents one or more level-ups from a single
// experience grant
type LevelUpEvent struct {
	UserID   int64
	NewLevel int
	Bonus    int64
}

func (e LevelUpEvent) Type() EventType {
	return EventTypeLevelUp
}

// GameResolvedEvent represents a gambling action reaching a terminal
// outcome
type GameResolvedEvent struct {
	UserID  int64
	Game    models.ActionType
	Outcome models.GameOutcome
	Delta   int64
}

func (e GameResolvedEvent) Type() EventType {
	return EventTypeGameResolved
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus stashes events published during a unit of work and
// forwards them to the underlying bus only after the transaction
// commits. Discarded on rollback.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional bus wrapping the real one
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish queues an event until Flush or Discard
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush forwards pending events to the real bus. Called after a
// successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	for _, e := range b.pending {
		b.real.Emit(ctx, e)
	}
	b.pending = nil
}

// Discard drops pending events. Called on rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
