package app

import (
	"context"
	"time"

	"gomical/domain"
	"gomical/pkg/schedule"
	"gomical/pkg/snapshot"
)

// CategoryPayload is the wire form of a category: stored scalars decoded to
// explicit lists, garbage types embedded.
type CategoryPayload struct {
	ID           string               `json:"id"`
	Name         string               `json:"category"`
	Days         []string             `json:"date"`
	Method       string               `json:"method"`
	SpecialDays  []string             `json:"special_days"`
	Note         string               `json:"notion"`
	GarbageTypes []GarbageTypePayload `json:"garbage_types"`
}

type GarbageTypePayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
}

func newCategoryPayload(cat domain.Category, types []domain.GarbageType) CategoryPayload {
	typePayloads := make([]GarbageTypePayload, 0, len(types))
	for _, t := range types {
		typePayloads = append(typePayloads, GarbageTypePayload{
			ID:         t.ID,
			Name:       t.Name,
			CategoryID: t.CategoryID,
		})
	}

	return CategoryPayload{
		ID:           cat.ID,
		Name:         cat.Name,
		Days:         schedule.Decode(cat.Days),
		Method:       cat.Method,
		SpecialDays:  schedule.DecodeDates(cat.SpecialDays),
		Note:         cat.Note,
		GarbageTypes: typePayloads,
	}
}

func loadCategoryPayload(ctx context.Context, repository Repository, cat domain.Category) (CategoryPayload, error) {
	types, err := repository.GetGarbageTypes(ctx, cat.ID)
	if err != nil {
		return CategoryPayload{}, err
	}
	return newCategoryPayload(cat, types), nil
}

// BuildExportDocument assembles the full-catalog interchange document. Shared
// by the export handler, the admin CLI and the backup worker.
func BuildExportDocument(ctx context.Context, repository Repository, exportedAt time.Time) (*snapshot.Document, error) {
	categories, err := repository.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]snapshot.Entry, 0, len(categories))
	for _, cat := range categories {
		types, err := repository.GetGarbageTypes(ctx, cat.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, snapshot.Entry{Category: cat, Types: types})
	}

	return snapshot.Build(entries, exportedAt), nil
}
