package domain

import "context"

// VaccineRepository persists vaccine lots.
type VaccineRepository interface {
	// FindByName retrieves a lot by name. Returns ErrVaccineNotFound when absent.
	FindByName(ctx context.Context, name string) (*Vaccine, error)

	// ListAll returns all lots ordered by name ascending.
	ListAll(ctx context.Context) ([]*Vaccine, error)

	// Upsert creates the lot or adds to its dose count when it already exists.
	Upsert(ctx context.Context, name string, doses int) (*Vaccine, error)

	// DecrementDoses atomically consumes one dose. The update is conditional
	// on doses >= 1; a miss returns ErrInsufficientDoses, an unknown name
	// ErrVaccineNotFound.
	DecrementDoses(ctx context.Context, name string) error
}
