package app

import (
	"context"

	"gomical/domain"
	"gomical/pkg/events"
	"gomical/pkg/httperror"
	"gomical/pkg/snapshot"
)

type ResetHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewResetHandler(repository Repository, eventPublisher events.Publisher) *ResetHandler {
	return &ResetHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type ResetRequest struct {
}

type ResetResponse struct {
	Stats   domain.ImportStats `json:"data"`
	Message string             `json:"message"`
}

// Handle replaces the whole catalog with the default sample data.
func (h ResetHandler) Handle(ctx context.Context, req *ResetRequest) (*ResetResponse, error) {
	seeds, err := snapshot.DefaultDocument().Seeds()
	if err != nil {
		return nil, httperror.InternalServerError(
			"admin.reset.failed",
			"Default catalog data is invalid",
			nil,
		)
	}

	stats, err := h.repository.ImportSnapshot(ctx, seeds, true)
	if err != nil {
		return nil, httperror.InternalServerError(
			"admin.reset.failed",
			"An error occurred while resetting the catalog",
			nil,
		)
	}

	publishImportEvent(ctx, h.eventPublisher, events.CatalogResetEvent, "replace", stats)

	return &ResetResponse{
		Stats:   stats,
		Message: "Catalog reset to default data",
	}, nil
}
