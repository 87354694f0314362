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

type CreateCategoryHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewCreateCategoryHandler(repository Repository, eventPublisher events.Publisher) *CreateCategoryHandler {
	return &CreateCategoryHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type CreateCategoryRequest struct {
	Name         string           `json:"category" validate:"required"`
	Days         schedule.DayList `json:"date" validate:"required,min=1"`
	Method       string           `json:"method" validate:"required"`
	SpecialDays  []string         `json:"special_days"`
	Note         string           `json:"notion"`
	GarbageTypes []string         `json:"garbage_types"`
}

type CreateCategoryResponse struct {
	Category CategoryPayload `json:"data"`
	Message  string          `json:"message"`
}

func (h CreateCategoryHandler) Handle(ctx context.Context, req *CreateCategoryRequest) (*CreateCategoryResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"admin.category.create.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"admin.category.create.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	days, err := schedule.Encode(req.Days)
	if err != nil {
		return nil, httperror.BadRequest(
			"admin.category.create.invalid_day",
			"Unknown weekday literal",
			fiber.Map{"error": err.Error()},
		)
	}

	specialDays, err := schedule.EncodeDates(req.SpecialDays)
	if err != nil {
		return nil, httperror.BadRequest(
			"admin.category.create.invalid_special_day",
			"Special days must be ISO calendar dates",
			fiber.Map{"error": err.Error()},
		)
	}

	cat := domain.Category{
		Name:        req.Name,
		Days:        days,
		Method:      req.Method,
		SpecialDays: specialDays,
		Note:        req.Note,
	}

	created, err := h.repository.CreateCategory(ctx, cat, req.GarbageTypes)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateName) {
			return nil, httperror.Conflict(
				"admin.category.create.duplicate",
				"A category with this name already exists",
				nil,
			)
		}
		return nil, httperror.InternalServerError(
			"admin.category.create.failed",
			"An error occurred while creating the category",
			nil,
		)
	}

	h.publishEvent(ctx, created)

	payload, err := loadCategoryPayload(ctx, h.repository, created)
	if err != nil {
		return nil, httperror.InternalServerError(
			"admin.category.create.failed",
			"Failed to load created category",
			nil,
		)
	}

	return &CreateCategoryResponse{
		Category: payload,
		Message:  "Category created successfully",
	}, nil
}

func (h CreateCategoryHandler) publishEvent(ctx context.Context, cat domain.Category) {
	if h.eventPublisher == nil {
		return
	}

	headers := events.Headers{
		TraceID:       events.GenerateTraceID(),
		CorrelationID: events.GenerateCorrelationID(),
		Service:       "gomical",
	}

	event := events.NewEvent(
		events.CategoryCreatedEvent,
		events.EventVersionV1,
		events.CategoryCreatedPayload{
			ID:        cat.ID,
			Name:      cat.Name,
			Days:      schedule.Decode(cat.Days),
			Method:    cat.Method,
			CreatedAt: cat.CreatedAt,
		},
		headers,
	)

	if err := h.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish catalog.category.created event",
			zap.String("categoryId", cat.ID),
			zap.Error(err),
		)
	}
}
