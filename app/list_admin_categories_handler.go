package app

import (
	"context"

	"gomical/pkg/httperror"
)

type ListAdminCategoriesHandler struct {
	repository Repository
}

func NewListAdminCategoriesHandler(repository Repository) *ListAdminCategoriesHandler {
	return &ListAdminCategoriesHandler{
		repository: repository,
	}
}

type ListAdminCategoriesRequest struct {
}

type AdminCategoryPayload struct {
	CategoryPayload
	GarbageTypesCount int `json:"garbage_types_count"`
}

type ListAdminCategoriesResponse struct {
	Categories []AdminCategoryPayload `json:"data"`
	Total      int                    `json:"total"`
}

func (h ListAdminCategoriesHandler) Handle(ctx context.Context, req *ListAdminCategoriesRequest) (*ListAdminCategoriesResponse, error) {
	categories, err := h.repository.GetCategories(ctx)
	if err != nil {
		return nil, httperror.InternalServerError(
			"admin.category.index.failed",
			"Failed to retrieve categories",
			nil,
		)
	}

	payloads := make([]AdminCategoryPayload, 0, len(categories))
	for _, cat := range categories {
		payload, err := loadCategoryPayload(ctx, h.repository, cat)
		if err != nil {
			return nil, httperror.InternalServerError(
				"admin.category.index.failed",
				"Failed to retrieve garbage types",
				nil,
			)
		}
		payloads = append(payloads, AdminCategoryPayload{
			CategoryPayload:   payload,
			GarbageTypesCount: len(payload.GarbageTypes),
		})
	}

	return &ListAdminCategoriesResponse{
		Categories: payloads,
		Total:      len(payloads),
	}, nil
}
