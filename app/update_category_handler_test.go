package app

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomical/infra/memory"
	"gomical/pkg/events"
	"gomical/pkg/schedule"
)

func TestUpdateCategoryHandle(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	publisher := &spyPublisher{}
	handler := NewUpdateCategoryHandler(repo, publisher)

	cat := mustCreate(t, repo, "可燃ゴミ", []string{"Monday", "Thursday"}, "burn", "生ごみ")
	other := mustCreate(t, repo, "不燃ゴミ", []string{"Wednesday"}, "no burn")

	strPtr := func(s string) *string { return &s }

	t.Run("patches only supplied fields", func(t *testing.T) {
		res, err := handler.Handle(ctx, &UpdateCategoryRequest{
			ID:     cat.ID,
			Method: strPtr("燃やせるごみとして出す"),
		})
		require.NoError(t, err)

		assert.Equal(t, "可燃ゴミ", res.Category.Name)
		assert.Equal(t, "燃やせるごみとして出す", res.Category.Method)
		assert.Equal(t, []string{"Monday", "Thursday"}, res.Category.Days)
		assert.Len(t, res.Category.GarbageTypes, 1)

		published := publisher.published()
		require.Len(t, published, 1)
		assert.Equal(t, events.CategoryUpdatedEvent, published[0].Event)
	})

	t.Run("replaces days", func(t *testing.T) {
		days := schedule.DayList{"Tuesday"}
		res, err := handler.Handle(ctx, &UpdateCategoryRequest{
			ID:   cat.ID,
			Days: &days,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Tuesday"}, res.Category.Days)
	})

	t.Run("supplied garbage type list replaces the old one", func(t *testing.T) {
		types := []string{"紙くず", "木くず"}
		res, err := handler.Handle(ctx, &UpdateCategoryRequest{
			ID:           cat.ID,
			GarbageTypes: &types,
		})
		require.NoError(t, err)
		require.Len(t, res.Category.GarbageTypes, 2)
		assert.Equal(t, "紙くず", res.Category.GarbageTypes[0].Name)
		assert.Equal(t, "木くず", res.Category.GarbageTypes[1].Name)
	})

	t.Run("unknown weekday is rejected", func(t *testing.T) {
		days := schedule.DayList{"Noday"}
		_, err := handler.Handle(ctx, &UpdateCategoryRequest{
			ID:   cat.ID,
			Days: &days,
		})
		requireHTTPStatus(t, err, 400)
	})

	t.Run("renaming onto another category conflicts", func(t *testing.T) {
		_, err := handler.Handle(ctx, &UpdateCategoryRequest{
			ID:   cat.ID,
			Name: strPtr(other.Name),
		})
		requireHTTPStatus(t, err, 409)
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		_, err := handler.Handle(ctx, &UpdateCategoryRequest{
			ID:   uuid.New().String(),
			Name: strPtr("x"),
		})
		requireHTTPStatus(t, err, 404)
	})

	t.Run("malformed id fails validation", func(t *testing.T) {
		_, err := handler.Handle(ctx, &UpdateCategoryRequest{ID: "not-a-uuid"})
		requireHTTPStatus(t, err, 400)
	})
}

func TestDeleteCategoryHandle(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	publisher := &spyPublisher{}
	handler := NewDeleteCategoryHandler(repo, publisher)

	cat := mustCreate(t, repo, "粗大ゴミ", []string{"Sunday"}, "collect", "家具", "自転車")
	search := NewSearchHandler(repo)

	t.Run("deletes the category and its types", func(t *testing.T) {
		res, err := handler.Handle(ctx, &DeleteCategoryRequest{ID: cat.ID})
		require.NoError(t, err)
		assert.Contains(t, res.Message, "粗大ゴミ")

		count, err := repo.CountGarbageTypes(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		found, err := search.Handle(ctx, &SearchRequest{Query: "家具"})
		require.NoError(t, err)
		assert.False(t, found.Found)

		published := publisher.published()
		require.Len(t, published, 1)
		assert.Equal(t, events.CategoryDeletedEvent, published[0].Event)
	})

	t.Run("deleting twice is a 404", func(t *testing.T) {
		_, err := handler.Handle(ctx, &DeleteCategoryRequest{ID: cat.ID})
		requireHTTPStatus(t, err, 404)
	})
}
