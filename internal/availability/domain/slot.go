package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidDate          = errors.New("invalid date")
	ErrSlotAlreadyPublished = errors.New("availability already published for this date")
	ErrSlotNotFound         = errors.New("availability slot not found")
	ErrNoCaregiverAvailable = errors.New("no caregiver available on this date")
)

// DateLayout is the calendar-date wire format used throughout.
const DateLayout = "2006-01-02"

// Slot is one caregiver's open availability on a calendar date.
type Slot struct {
	caregiver string
	date      time.Time
}

// NewSlot creates an availability slot. The date is truncated to the day.
func NewSlot(caregiver string, date time.Time) *Slot {
	return &Slot{
		caregiver: caregiver,
		date:      date.UTC().Truncate(24 * time.Hour),
	}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	date, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

// Getters
func (s *Slot) Caregiver() string { return s.caregiver }
func (s *Slot) Date() time.Time   { return s.date }

// DateString returns the date in YYYY-MM-DD form.
func (s *Slot) DateString() string {
	return s.date.Format(DateLayout)
}
