package app

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"gomical/domain"
	"gomical/pkg/events"
	"gomical/pkg/httperror"
	"gomical/pkg/schedule"
)

type UpdateCategoryHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewUpdateCategoryHandler(repository Repository, eventPublisher events.Publisher) *UpdateCategoryHandler {
	return &UpdateCategoryHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

// UpdateCategoryRequest patches a category. Only non-nil fields are applied;
// a supplied garbage type list replaces the whole existing list.
type UpdateCategoryRequest struct {
	ID           string            `params:"id" validate:"required,uuid"`
	Name         *string           `json:"category,omitempty"`
	Days         *schedule.DayList `json:"date,omitempty"`
	Method       *string           `json:"method,omitempty"`
	SpecialDays  *[]string         `json:"special_days,omitempty"`
	Note         *string           `json:"notion,omitempty"`
	GarbageTypes *[]string         `json:"garbage_types,omitempty"`
}

type UpdateCategoryResponse struct {
	Category CategoryPayload `json:"data"`
	Message  string          `json:"message"`
}

func (h UpdateCategoryHandler) Handle(ctx context.Context, req *UpdateCategoryRequest) (*UpdateCategoryResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"admin.category.update.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"admin.category.update.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	cat, err := h.repository.GetCategory(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound(
				"admin.category.update.not_found",
				"Category not found",
				nil,
			)
		}
		return nil, httperror.InternalServerError(
			"admin.category.update.failed",
			"Failed to get category",
			nil,
		)
	}

	if req.Name != nil {
		cat.Name = *req.Name
	}
	if req.Days != nil {
		days, err := schedule.Encode(*req.Days)
		if err != nil {
			return nil, httperror.BadRequest(
				"admin.category.update.invalid_day",
				"Unknown weekday literal",
				fiber.Map{"error": err.Error()},
			)
		}
		cat.Days = days
	}
	if req.Method != nil {
		cat.Method = *req.Method
	}
	if req.SpecialDays != nil {
		specialDays, err := schedule.EncodeDates(*req.SpecialDays)
		if err != nil {
			return nil, httperror.BadRequest(
				"admin.category.update.invalid_special_day",
				"Special days must be ISO calendar dates",
				fiber.Map{"error": err.Error()},
			)
		}
		cat.SpecialDays = specialDays
	}
	if req.Note != nil {
		cat.Note = *req.Note
	}

	var typeNames []string
	if req.GarbageTypes != nil {
		typeNames = *req.GarbageTypes
	}

	updated, err := h.repository.UpdateCategory(ctx, cat, typeNames)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateName) {
			return nil, httperror.Conflict(
				"admin.category.update.duplicate",
				"This category name is already in use",
				nil,
			)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound(
				"admin.category.update.not_found",
				"Category not found",
				nil,
			)
		}
		return nil, httperror.InternalServerError(
			"admin.category.update.failed",
			"An error occurred while updating the category",
			nil,
		)
	}

	h.publishEvent(ctx, updated)

	payload, err := loadCategoryPayload(ctx, h.repository, updated)
	if err != nil {
		return nil, httperror.InternalServerError(
			"admin.category.update.failed",
			"Failed to load updated category",
			nil,
		)
	}

	return &UpdateCategoryResponse{
		Category: payload,
		Message:  "Category updated successfully",
	}, nil
}

func (h UpdateCategoryHandler) publishEvent(ctx context.Context, cat domain.Category) {
	if h.eventPublisher == nil {
		return
	}

	headers := events.Headers{
		TraceID:       events.GenerateTraceID(),
		CorrelationID: events.GenerateCorrelationID(),
		Service:       "gomical",
	}

	event := events.NewEvent(
		events.CategoryUpdatedEvent,
		events.EventVersionV1,
		events.CategoryUpdatedPayload{
			ID:        cat.ID,
			Name:      cat.Name,
			Days:      schedule.Decode(cat.Days),
			Method:    cat.Method,
			UpdatedAt: cat.UpdatedAt,
		},
		headers,
	)

	if err := h.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish catalog.category.updated event",
			zap.String("categoryId", cat.ID),
			zap.Error(err),
		)
	}
}
