package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"gomical/domain"
	"gomical/pkg/events"
	"gomical/pkg/httperror"
	"gomical/pkg/snapshot"
)

type ImportHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewImportHandler(repository Repository, eventPublisher events.Publisher) *ImportHandler {
	return &ImportHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type ImportRequest struct {
	Data          json.RawMessage `json:"data"`
	ClearExisting bool            `json:"clear_existing"`
}

type ImportResponse struct {
	Stats   domain.ImportStats `json:"data"`
	Message string             `json:"message"`
}

// Handle applies a snapshot document. With clear_existing the whole catalog
// is replaced; otherwise category blocks whose name already exists are
// skipped. Any invalid block aborts the whole import without partial writes.
func (h ImportHandler) Handle(ctx context.Context, req *ImportRequest) (*ImportResponse, error) {
	if len(req.Data) == 0 {
		return nil, httperror.BadRequest(
			"admin.import.data_required",
			"No import data supplied",
			nil,
		)
	}

	doc, err := snapshot.Parse(req.Data)
	if err != nil {
		return nil, httperror.BadRequest(
			"admin.import.malformed",
			"Import document is malformed",
			fiber.Map{"error": err.Error()},
		)
	}

	seeds, err := doc.Seeds()
	if err != nil {
		return nil, httperror.BadRequest(
			"admin.import.invalid_category",
			"Import document contains an invalid category block",
			fiber.Map{"error": err.Error()},
		)
	}

	stats, err := h.repository.ImportSnapshot(ctx, seeds, req.ClearExisting)
	if err != nil {
		return nil, httperror.InternalServerError(
			"admin.import.failed",
			"An error occurred while importing the snapshot",
			nil,
		)
	}

	mode := "merge"
	if req.ClearExisting {
		mode = "replace"
	}
	publishImportEvent(ctx, h.eventPublisher, events.CatalogImportedEvent, mode, stats)

	return &ImportResponse{
		Stats:   stats,
		Message: "Snapshot imported successfully",
	}, nil
}

func publishImportEvent(ctx context.Context, publisher events.Publisher, eventName, mode string, stats domain.ImportStats) {
	if publisher == nil {
		return
	}

	headers := events.Headers{
		TraceID:       events.GenerateTraceID(),
		CorrelationID: events.GenerateCorrelationID(),
		Service:       "gomical",
	}

	event := events.NewEvent(
		eventName,
		events.EventVersionV1,
		events.CatalogImportedPayload{
			Mode:                 mode,
			ImportedCategories:   stats.ImportedCategories,
			ImportedGarbageTypes: stats.ImportedGarbageTypes,
			SkippedCategories:    stats.SkippedCategories,
			TotalCategories:      stats.TotalCategories,
			TotalGarbageTypes:    stats.TotalGarbageTypes,
			ImportedAt:           time.Now().UTC(),
		},
		headers,
	)

	if err := publisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish catalog import event",
			zap.String("event", eventName),
			zap.Error(err),
		)
	}
}
