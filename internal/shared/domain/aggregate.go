package domain

import "time"

// AggregateRoot is a domain entity that records the events raised against it.
type AggregateRoot interface {
	DomainEvents() []DomainEvent
	ClearDomainEvents()
	AddDomainEvent(event DomainEvent)
}

// BaseAggregateRoot provides common aggregate functionality: creation and
// update timestamps plus uncommitted domain events.
type BaseAggregateRoot struct {
	createdAt    time.Time
	updatedAt    time.Time
	domainEvents []DomainEvent
}

// NewBaseAggregateRoot creates a new aggregate root with current timestamps.
func NewBaseAggregateRoot() BaseAggregateRoot {
	now := time.Now().UTC()
	return BaseAggregateRoot{
		createdAt:    now,
		updatedAt:    now,
		domainEvents: make([]DomainEvent, 0),
	}
}

// RehydrateBaseAggregateRoot recreates an aggregate from persisted state.
func RehydrateBaseAggregateRoot(createdAt, updatedAt time.Time) BaseAggregateRoot {
	return BaseAggregateRoot{
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		domainEvents: make([]DomainEvent, 0),
	}
}

func (a *BaseAggregateRoot) CreatedAt() time.Time { return a.createdAt }
func (a *BaseAggregateRoot) UpdatedAt() time.Time { return a.updatedAt }

// Touch updates the updatedAt timestamp.
func (a *BaseAggregateRoot) Touch() {
	a.updatedAt = time.Now().UTC()
}

// DomainEvents returns all uncommitted domain events.
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents removes all uncommitted domain events.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = make([]DomainEvent, 0)
}

// AddDomainEvent adds a domain event to the aggregate.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}
