package app

import (
	"context"
	"errors"

	"gomical/domain"
	"gomical/pkg/httperror"
)

type GetCategoryHandler struct {
	repository Repository
}

func NewGetCategoryHandler(repository Repository) *GetCategoryHandler {
	return &GetCategoryHandler{
		repository: repository,
	}
}

type GetCategoryRequest struct {
	ID string `params:"id"`
}

type GetCategoryResponse struct {
	Category CategoryPayload `json:"data"`
}

func (h GetCategoryHandler) Handle(ctx context.Context, req *GetCategoryRequest) (*GetCategoryResponse, error) {
	cat, err := h.repository.GetCategory(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound(
				"category.show.not_found",
				"Category not found",
				nil,
			)
		}
		return nil, httperror.InternalServerError(
			"category.show.failed",
			"Failed to retrieve category",
			nil,
		)
	}

	payload, err := loadCategoryPayload(ctx, h.repository, cat)
	if err != nil {
		return nil, httperror.InternalServerError(
			"category.show.failed",
			"Failed to retrieve garbage types",
			nil,
		)
	}

	return &GetCategoryResponse{
		Category: payload,
	}, nil
}
