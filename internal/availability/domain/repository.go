package domain

import (
	"context"
	"time"
)

// SlotRepository persists caregiver availability slots.
type SlotRepository interface {
	// Publish stores a slot. Returns ErrSlotAlreadyPublished when the
	// (caregiver, date) pair already exists.
	Publish(ctx context.Context, slot *Slot) error

	// FindEarliestCaregiver returns the first caregiver with an open slot on
	// the date, username ascending. Returns ErrNoCaregiverAvailable when the
	// date has no open slots.
	FindEarliestCaregiver(ctx context.Context, date time.Time) (string, error)

	// Remove deletes a slot. Returns ErrSlotNotFound when the pair is absent,
	// which on the reserve path means the slot was taken concurrently.
	Remove(ctx context.Context, caregiver string, date time.Time) error

	// ListCaregiversByDate returns all caregivers with an open slot on the
	// date, username ascending.
	ListCaregiversByDate(ctx context.Context, date time.Time) ([]string, error)
}
