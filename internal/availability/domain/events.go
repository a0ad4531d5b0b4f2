package domain

import (
	sharedDomain "github.com/felixgeelhaar/vaxsched/internal/shared/domain"
)

const (
	AggregateType = "AvailabilitySlot"

	RoutingKeySlotPublished = "availability.slot.published"
)

// SlotPublished is emitted when a caregiver publishes availability.
type SlotPublished struct {
	sharedDomain.BaseEvent
	Caregiver string `json:"caregiver"`
	Date      string `json:"date"`
}

// NewSlotPublished creates a SlotPublished event.
func NewSlotPublished(caregiver, date string) *SlotPublished {
	return &SlotPublished{
		BaseEvent: sharedDomain.NewBaseEvent(caregiver+"/"+date, AggregateType, RoutingKeySlotPublished),
		Caregiver: caregiver,
		Date:      date,
	}
}
