package domain

import (
	"errors"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/vaxsched/internal/shared/domain"
)

var (
	ErrEmptyVaccineName  = errors.New("vaccine name cannot be empty")
	ErrVaccineNotFound   = errors.New("vaccine not found")
	ErrInvalidDoseCount  = errors.New("dose count must be positive")
	ErrInsufficientDoses = errors.New("not enough available doses")
)

// Vaccine is a vaccine lot: a named supply with an available dose count.
type Vaccine struct {
	sharedDomain.BaseAggregateRoot
	name  string
	doses int
}

// NewVaccineName validates a vaccine name.
func NewVaccineName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyVaccineName
	}
	return name, nil
}

// NewVaccine creates a new vaccine lot with an initial dose count.
func NewVaccine(name string, doses int) (*Vaccine, error) {
	name, err := NewVaccineName(name)
	if err != nil {
		return nil, err
	}
	if doses <= 0 {
		return nil, ErrInvalidDoseCount
	}

	v := &Vaccine{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		name:              name,
		doses:             doses,
	}

	v.AddDomainEvent(NewDosesAdded(name, doses, doses))

	return v, nil
}

// RehydrateVaccine recreates a vaccine lot from persisted state.
func RehydrateVaccine(name string, doses int, updatedAt time.Time) *Vaccine {
	return &Vaccine{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(updatedAt, updatedAt),
		name:              name,
		doses:             doses,
	}
}

// Getters
func (v *Vaccine) Name() string { return v.name }
func (v *Vaccine) Doses() int   { return v.doses }

// AddDoses increases the available dose count.
func (v *Vaccine) AddDoses(count int) error {
	if count <= 0 {
		return ErrInvalidDoseCount
	}

	v.doses += count
	v.Touch()

	v.AddDomainEvent(NewDosesAdded(v.name, count, v.doses))

	return nil
}
