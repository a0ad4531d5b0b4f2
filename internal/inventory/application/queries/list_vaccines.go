package queries

import (
	"context"

	"github.com/felixgeelhaar/vaxsched/internal/inventory/domain"
)

// VaccineView is a read model of a vaccine lot.
type VaccineView struct {
	Name  string
	Doses int
}

// ListVaccinesHandler lists all vaccine lots with their dose counts.
type ListVaccinesHandler struct {
	vaccineRepo domain.VaccineRepository
}

// NewListVaccinesHandler creates a new ListVaccinesHandler.
func NewListVaccinesHandler(vaccineRepo domain.VaccineRepository) *ListVaccinesHandler {
	return &ListVaccinesHandler{vaccineRepo: vaccineRepo}
}

// Handle returns all lots ordered by name ascending.
func (h *ListVaccinesHandler) Handle(ctx context.Context) ([]VaccineView, error) {
	vaccines, err := h.vaccineRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]VaccineView, 0, len(vaccines))
	for _, v := range vaccines {
		views = append(views, VaccineView{Name: v.Name(), Doses: v.Doses()})
	}
	return views, nil
}
