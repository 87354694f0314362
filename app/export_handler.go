package app

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"gomical/pkg/archive"
	"gomical/pkg/httperror"
	"gomical/pkg/snapshot"
)

type ExportHandler struct {
	repository Repository
	archiver   Archiver
}

func NewExportHandler(repository Repository, archiver Archiver) *ExportHandler {
	return &ExportHandler{
		repository: repository,
		archiver:   archiver,
	}
}

type ExportRequest struct {
}

type ExportResponse struct {
	Data    *snapshot.Document `json:"data"`
	Message string             `json:"message"`
}

// Handle exports the whole catalog as an interchange document. Malformed
// stored scalars come out as empty lists; export itself never fails on
// legacy data. When an archiver is configured a timestamped copy is kept,
// and an archive failure only logs.
func (h ExportHandler) Handle(ctx context.Context, req *ExportRequest) (*ExportResponse, error) {
	now := time.Now().UTC()

	doc, err := BuildExportDocument(ctx, h.repository, now)
	if err != nil {
		return nil, httperror.InternalServerError(
			"admin.export.failed",
			"Failed to export catalog",
			nil,
		)
	}

	if h.archiver != nil {
		raw, err := json.Marshal(doc)
		if err == nil {
			err = h.archiver.Save(archive.BackupKey(now), raw)
		}
		if err != nil {
			zap.L().Warn("Failed to archive snapshot", zap.Error(err))
		}
	}

	return &ExportResponse{
		Data:    doc,
		Message: "Catalog exported successfully",
	}, nil
}
