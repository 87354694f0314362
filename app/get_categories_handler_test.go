package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomical/domain"
	"gomical/infra/memory"
	"gomical/pkg/schedule"
)

func TestGetCategoriesHandle(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	burnable := mustCreate(t, repo, "可燃ゴミ", []string{"Monday", "Thursday"}, "burn", "生ごみ", "紙くず")
	mustCreate(t, repo, "不燃ゴミ", []string{"Wednesday"}, "no burn")

	handler := NewGetCategoriesHandler(repo)

	t.Run("no filter returns everything", func(t *testing.T) {
		res, err := handler.Handle(ctx, &GetCategoriesRequest{})
		require.NoError(t, err)
		assert.Len(t, res.Categories, 2)
	})

	t.Run("day filter keeps matching categories only", func(t *testing.T) {
		res, err := handler.Handle(ctx, &GetCategoriesRequest{Day: "Monday"})
		require.NoError(t, err)
		require.Len(t, res.Categories, 1)
		assert.Equal(t, burnable.ID, res.Categories[0].ID)
		assert.Equal(t, []string{"Monday", "Thursday"}, res.Categories[0].Days)
		assert.Len(t, res.Categories[0].GarbageTypes, 2)
	})

	t.Run("day without pickups yields an empty list", func(t *testing.T) {
		res, err := handler.Handle(ctx, &GetCategoriesRequest{Day: "Sunday"})
		require.NoError(t, err)
		assert.Empty(t, res.Categories)
	})

	t.Run("undecodable stored days match no filter", func(t *testing.T) {
		_, err := repo.CreateCategory(ctx, domain.Category{
			Name:   "broken",
			Days:   "123",
			Method: "m",
		}, nil)
		require.NoError(t, err)

		for _, day := range schedule.Weekdays {
			res, err := handler.Handle(ctx, &GetCategoriesRequest{Day: day})
			require.NoError(t, err)
			for _, c := range res.Categories {
				assert.NotEqual(t, "broken", c.Name)
			}
		}

		// Without a filter the broken row is still listed, days empty.
		res, err := handler.Handle(ctx, &GetCategoriesRequest{})
		require.NoError(t, err)
		require.Len(t, res.Categories, 3)
		assert.Equal(t, []string{}, res.Categories[2].Days)
	})
}

func TestGetTodayHandle(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	mustCreate(t, repo, "daily", schedule.Weekdays, "every day", "ごみ")

	handler := NewGetTodayHandler(repo)

	res, err := handler.Handle(ctx, &GetTodayRequest{})
	require.NoError(t, err)
	assert.Equal(t, schedule.Today(), res.Today)
	require.Len(t, res.Categories, 1)
	assert.Equal(t, "daily", res.Categories[0].Name)
}

func TestGetCategoryHandle(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	cat := mustCreate(t, repo, "資源ゴミ", []string{"Saturday"}, "recycle", "びん", "缶")

	handler := NewGetCategoryHandler(repo)

	t.Run("found", func(t *testing.T) {
		res, err := handler.Handle(ctx, &GetCategoryRequest{ID: cat.ID})
		require.NoError(t, err)
		assert.Equal(t, "資源ゴミ", res.Category.Name)
		assert.Len(t, res.Category.GarbageTypes, 2)
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		_, err := handler.Handle(ctx, &GetCategoryRequest{ID: "nope"})
		requireHTTPStatus(t, err, 404)
	})
}

func TestListAdminCategoriesHandle(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	mustCreate(t, repo, "a", []string{"Monday"}, "m", "x", "y", "z")
	mustCreate(t, repo, "b", []string{"Tuesday"}, "m")

	handler := NewListAdminCategoriesHandler(repo)

	res, err := handler.Handle(ctx, &ListAdminCategoriesRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Categories, 2)
	assert.Equal(t, 3, res.Categories[0].GarbageTypesCount)
	assert.Equal(t, 0, res.Categories[1].GarbageTypesCount)
}
