package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"gomical/domain"
	"gomical/pkg/events"
	"gomical/pkg/httperror"
)

type DeleteCategoryHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewDeleteCategoryHandler(repository Repository, eventPublisher events.Publisher) *DeleteCategoryHandler {
	return &DeleteCategoryHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type DeleteCategoryRequest struct {
	ID string `params:"id" validate:"required,uuid"`
}

type DeleteCategoryResponse struct {
	Message string `json:"message"`
}

// Handle deletes the category and every garbage type it owns.
func (h DeleteCategoryHandler) Handle(ctx context.Context, req *DeleteCategoryRequest) (*DeleteCategoryResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"admin.category.destroy.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"admin.category.destroy.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	cat, err := h.repository.GetCategory(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound(
				"admin.category.destroy.not_found",
				"Category not found",
				nil,
			)
		}
		return nil, httperror.InternalServerError(
			"admin.category.destroy.failed",
			"Failed to get category",
			nil,
		)
	}

	if err := h.repository.DeleteCategory(ctx, req.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound(
				"admin.category.destroy.not_found",
				"Category not found",
				nil,
			)
		}
		return nil, httperror.InternalServerError(
			"admin.category.destroy.failed",
			"An error occurred while deleting the category",
			nil,
		)
	}

	h.publishEvent(ctx, cat)

	return &DeleteCategoryResponse{
		Message: fmt.Sprintf("Category %q deleted successfully", cat.Name),
	}, nil
}

func (h DeleteCategoryHandler) publishEvent(ctx context.Context, cat domain.Category) {
	if h.eventPublisher == nil {
		return
	}

	headers := events.Headers{
		TraceID:       events.GenerateTraceID(),
		CorrelationID: events.GenerateCorrelationID(),
		Service:       "gomical",
	}

	event := events.NewEvent(
		events.CategoryDeletedEvent,
		events.EventVersionV1,
		events.CategoryDeletedPayload{
			ID:        cat.ID,
			Name:      cat.Name,
			DeletedAt: time.Now().UTC(),
		},
		headers,
	)

	if err := h.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish catalog.category.deleted event",
			zap.String("categoryId", cat.ID),
			zap.Error(err),
		)
	}
}
