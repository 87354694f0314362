package app

import (
	"context"

	"gomical/pkg/httperror"
	"gomical/pkg/schedule"
)

type GetCategoriesHandler struct {
	repository Repository
}

func NewGetCategoriesHandler(repository Repository) *GetCategoriesHandler {
	return &GetCategoriesHandler{
		repository: repository,
	}
}

type GetCategoriesRequest struct {
	Day string `query:"day"`
}

type GetCategoriesResponse struct {
	Categories []CategoryPayload `json:"data"`
}

// Handle returns every category collected on the requested weekday, or the
// whole catalog when no day is given. A category whose stored day field does
// not decode matches no day at all.
func (h GetCategoriesHandler) Handle(ctx context.Context, req *GetCategoriesRequest) (*GetCategoriesResponse, error) {
	categories, err := h.repository.GetCategories(ctx)
	if err != nil {
		return nil, httperror.InternalServerError(
			"category.index.failed",
			"Failed to retrieve categories",
			nil,
		)
	}

	payloads := make([]CategoryPayload, 0, len(categories))
	for _, cat := range categories {
		if req.Day != "" && !schedule.Contains(cat.Days, req.Day) {
			continue
		}

		payload, err := loadCategoryPayload(ctx, h.repository, cat)
		if err != nil {
			return nil, httperror.InternalServerError(
				"category.index.failed",
				"Failed to retrieve garbage types",
				nil,
			)
		}
		payloads = append(payloads, payload)
	}

	return &GetCategoriesResponse{
		Categories: payloads,
	}, nil
}
