package app

import (
	"context"
	"fmt"
	"strings"

	"gomical/domain"
	"gomical/pkg/httperror"
)

type SearchHandler struct {
	repository Repository
}

func NewSearchHandler(repository Repository) *SearchHandler {
	return &SearchHandler{
		repository: repository,
	}
}

type SearchRequest struct {
	Query string `query:"q"`
}

type SearchResult struct {
	GarbageType GarbageTypePayload `json:"garbage_type"`
	Category    CategoryPayload    `json:"category"`
}

type SearchResponse struct {
	Found   bool           `json:"found"`
	Query   string         `json:"query,omitempty"`
	Message string         `json:"message,omitempty"`
	Results []SearchResult `json:"data,omitempty"`
}

// Handle maps an item name fragment to matching garbage types and their
// owning categories. Zero matches is a normal outcome, not an error.
func (h SearchHandler) Handle(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, httperror.BadRequest(
			"search.query_required",
			"Search query is required",
			nil,
		)
	}

	types, err := h.repository.SearchGarbageTypes(ctx, query)
	if err != nil {
		return nil, httperror.InternalServerError(
			"search.failed",
			"Failed to search garbage types",
			nil,
		)
	}

	if len(types) == 0 {
		return &SearchResponse{
			Found:   false,
			Message: fmt.Sprintf("no garbage type matching %q was found", query),
		}, nil
	}

	// Every garbage type has an owning category; cache lookups since many
	// matches usually share one.
	categories := make(map[string]CategoryPayload)
	results := make([]SearchResult, 0, len(types))
	for _, t := range types {
		payload, ok := categories[t.CategoryID]
		if !ok {
			var cat domain.Category
			cat, err = h.repository.GetCategory(ctx, t.CategoryID)
			if err != nil {
				return nil, httperror.InternalServerError(
					"search.failed",
					"Failed to resolve owning category",
					nil,
				)
			}
			payload, err = loadCategoryPayload(ctx, h.repository, cat)
			if err != nil {
				return nil, httperror.InternalServerError(
					"search.failed",
					"Failed to resolve owning category",
					nil,
				)
			}
			categories[t.CategoryID] = payload
		}

		results = append(results, SearchResult{
			GarbageType: GarbageTypePayload{
				ID:         t.ID,
				Name:       t.Name,
				CategoryID: t.CategoryID,
			},
			Category: payload,
		})
	}

	return &SearchResponse{
		Found:   true,
		Query:   query,
		Results: results,
	}, nil
}
