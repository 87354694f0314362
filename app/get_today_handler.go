package app

import (
	"context"

	"gomical/pkg/httperror"
	"gomical/pkg/schedule"
)

type GetTodayHandler struct {
	repository Repository
}

func NewGetTodayHandler(repository Repository) *GetTodayHandler {
	return &GetTodayHandler{
		repository: repository,
	}
}

type GetTodayRequest struct {
}

type GetTodayResponse struct {
	Today      string            `json:"today"`
	Categories []CategoryPayload `json:"data"`
}

// Handle resolves the current local weekday and returns the categories
// collected today, together with the computed weekday literal.
func (h GetTodayHandler) Handle(ctx context.Context, req *GetTodayRequest) (*GetTodayResponse, error) {
	today := schedule.Today()

	categories, err := h.repository.GetCategories(ctx)
	if err != nil {
		return nil, httperror.InternalServerError(
			"category.today.failed",
			"Failed to retrieve categories",
			nil,
		)
	}

	payloads := make([]CategoryPayload, 0)
	for _, cat := range categories {
		if !schedule.Contains(cat.Days, today) {
			continue
		}

		payload, err := loadCategoryPayload(ctx, h.repository, cat)
		if err != nil {
			return nil, httperror.InternalServerError(
				"category.today.failed",
				"Failed to retrieve garbage types",
				nil,
			)
		}
		payloads = append(payloads, payload)
	}

	return &GetTodayResponse{
		Today:      today,
		Categories: payloads,
	}, nil
}
