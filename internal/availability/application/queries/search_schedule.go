package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/availability/domain"
	inventoryQueries "github.com/felixgeelhaar/vaxsched/internal/inventory/application/queries"
)

// SearchScheduleQuery asks who is available on a date and what stock exists.
type SearchScheduleQuery struct {
	Date time.Time
}

// ScheduleView combines open caregivers with the current vaccine stock.
type ScheduleView struct {
	Date       string
	Caregivers []string
	Vaccines   []inventoryQueries.VaccineView
}

// SearchScheduleHandler handles the SearchScheduleQuery.
type SearchScheduleHandler struct {
	slotRepo domain.SlotRepository
	vaccines *inventoryQueries.ListVaccinesHandler
}

// NewSearchScheduleHandler creates a new SearchScheduleHandler.
func NewSearchScheduleHandler(slotRepo domain.SlotRepository, vaccines *inventoryQueries.ListVaccinesHandler) *SearchScheduleHandler {
	return &SearchScheduleHandler{
		slotRepo: slotRepo,
		vaccines: vaccines,
	}
}

// Handle returns caregivers available on the date (username ascending) and
// all vaccine lots with dose counts.
func (h *SearchScheduleHandler) Handle(ctx context.Context, query SearchScheduleQuery) (*ScheduleView, error) {
	caregivers, err := h.slotRepo.ListCaregiversByDate(ctx, query.Date)
	if err != nil {
		return nil, err
	}

	vaccines, err := h.vaccines.Handle(ctx)
	if err != nil {
		return nil, err
	}

	return &ScheduleView{
		Date:       query.Date.Format(domain.DateLayout),
		Caregivers: caregivers,
		Vaccines:   vaccines,
	}, nil
}
