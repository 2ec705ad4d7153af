package usecases

import (
	"context"

	"marketplace/internal/application/licensing"
)

// PlanView is a catalog plan annotated with its derived
// classification, ready for the storefront.
type PlanView struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Licenses    int     `json:"licenses"`
	IsFree      bool    `json:"is_free"`
	IsPremium   bool    `json:"is_premium"`
}

// ListPlansUseCase exposes the license-platform catalog.
type ListPlansUseCase struct {
	licensingClient licensing.Client
}

func NewListPlansUseCase(licensingClient licensing.Client) *ListPlansUseCase {
	return &ListPlansUseCase{licensingClient: licensingClient}
}

func (uc *ListPlansUseCase) Execute(ctx context.Context) ([]PlanView, error) {
	plans, err := uc.licensingClient.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]PlanView, 0, len(plans))
	for _, p := range plans {
		views = append(views, PlanView{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Currency:    p.Currency,
			Licenses:    p.Licenses,
			IsFree:      p.IsFree(),
			IsPremium:   p.IsPremium(),
		})
	}
	return views, nil
}
