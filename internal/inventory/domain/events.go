package domain

import (
	sharedDomain "github.com/felixgeelhaar/vaxsched/internal/shared/domain"
)

const (
	AggregateType = "Vaccine"

	RoutingKeyDosesAdded = "inventory.doses.added"
)

// DosesAdded is emitted when doses are added to a vaccine lot.
type DosesAdded struct {
	sharedDomain.BaseEvent
	Vaccine    string `json:"vaccine"`
	Added      int    `json:"added"`
	TotalDoses int    `json:"total_doses"`
}

// NewDosesAdded creates a DosesAdded event.
func NewDosesAdded(vaccine string, added, totalDoses int) *DosesAdded {
	return &DosesAdded{
		BaseEvent:  sharedDomain.NewBaseEvent(vaccine, AggregateType, RoutingKeyDosesAdded),
		Vaccine:    vaccine,
		Added:      added,
		TotalDoses: totalDoses,
	}
}
