package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomical/infra/memory"
)

func TestSearchHandle(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	burnable := mustCreate(t, repo, "可燃ゴミ", []string{"Monday", "Thursday"}, "burn", "生ごみ", "紙くず")
	mustCreate(t, repo, "資源ゴミ", []string{"Saturday"}, "recycle", "新聞紙", "段ボール")

	handler := NewSearchHandler(repo)

	t.Run("blank query is rejected", func(t *testing.T) {
		for _, q := range []string{"", "   ", "\t"} {
			_, err := handler.Handle(ctx, &SearchRequest{Query: q})
			requireHTTPStatus(t, err, 400)
		}
	})

	t.Run("no match is a normal response", func(t *testing.T) {
		res, err := handler.Handle(ctx, &SearchRequest{Query: "バッテリー"})
		require.NoError(t, err)
		assert.False(t, res.Found)
		assert.NotEmpty(t, res.Message)
		assert.Empty(t, res.Results)
	})

	t.Run("match carries the owning category", func(t *testing.T) {
		res, err := handler.Handle(ctx, &SearchRequest{Query: "生ごみ"})
		require.NoError(t, err)
		assert.True(t, res.Found)
		assert.Equal(t, "生ごみ", res.Query)
		require.Len(t, res.Results, 1)
		assert.Equal(t, "生ごみ", res.Results[0].GarbageType.Name)
		assert.Equal(t, burnable.ID, res.Results[0].Category.ID)
		assert.Equal(t, "可燃ゴミ", res.Results[0].Category.Name)
		assert.Equal(t, []string{"Monday", "Thursday"}, res.Results[0].Category.Days)
	})

	t.Run("substring matches types across categories", func(t *testing.T) {
		res, err := handler.Handle(ctx, &SearchRequest{Query: "紙"})
		require.NoError(t, err)
		assert.True(t, res.Found)
		require.Len(t, res.Results, 2)

		names := []string{res.Results[0].GarbageType.Name, res.Results[1].GarbageType.Name}
		assert.Contains(t, names, "紙くず")
		assert.Contains(t, names, "新聞紙")
	})

	t.Run("query is trimmed before matching", func(t *testing.T) {
		res, err := handler.Handle(ctx, &SearchRequest{Query: "  生ごみ  "})
		require.NoError(t, err)
		assert.True(t, res.Found)
	})
}
