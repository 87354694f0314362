package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomical/domain"
)

func seed(name string) domain.CategorySeed {
	return domain.CategorySeed{
		Name:        name,
		Days:        `["Monday"]`,
		Method:      "method",
		SpecialDays: "[]",
		TypeNames:   []string{"a", "b"},
	}
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	_, err := repo.CreateCategory(ctx, domain.Category{Name: "可燃ゴミ", Days: `["Monday"]`, Method: "m"}, nil)
	require.NoError(t, err)

	_, err = repo.CreateCategory(ctx, domain.Category{Name: "可燃ゴミ", Days: `["Tuesday"]`, Method: "m"}, nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	count, err := repo.CountCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateCategoryTrimsTypeNames(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	cat, err := repo.CreateCategory(ctx, domain.Category{Name: "c", Days: `["Monday"]`, Method: "m"},
		[]string{" 生ごみ ", "", "   ", "紙くず"})
	require.NoError(t, err)

	types, err := repo.GetGarbageTypes(ctx, cat.ID)
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "生ごみ", types[0].Name)
	assert.Equal(t, "紙くず", types[1].Name)
}

func TestUpdateCategory(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	a, err := repo.CreateCategory(ctx, domain.Category{Name: "a", Days: `["Monday"]`, Method: "m"}, []string{"x"})
	require.NoError(t, err)
	_, err = repo.CreateCategory(ctx, domain.Category{Name: "b", Days: `["Tuesday"]`, Method: "m"}, nil)
	require.NoError(t, err)

	t.Run("not found", func(t *testing.T) {
		_, err := repo.UpdateCategory(ctx, domain.Category{ID: "missing", Name: "c"}, nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("name collision", func(t *testing.T) {
		updated := a
		updated.Name = "b"
		_, err := repo.UpdateCategory(ctx, updated, nil)
		assert.ErrorIs(t, err, domain.ErrDuplicateName)
	})

	t.Run("keeps types when list is nil", func(t *testing.T) {
		updated := a
		updated.Method = "new method"
		_, err := repo.UpdateCategory(ctx, updated, nil)
		require.NoError(t, err)

		types, err := repo.GetGarbageTypes(ctx, a.ID)
		require.NoError(t, err)
		assert.Len(t, types, 1)
	})

	t.Run("replaces whole type list when supplied", func(t *testing.T) {
		_, err := repo.UpdateCategory(ctx, a, []string{"y", "z"})
		require.NoError(t, err)

		types, err := repo.GetGarbageTypes(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, types, 2)
		assert.Equal(t, "y", types[0].Name)
		assert.Equal(t, "z", types[1].Name)
	})
}

func TestDeleteCategoryCascades(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	a, err := repo.CreateCategory(ctx, domain.Category{Name: "a", Days: `["Monday"]`, Method: "m"}, []string{"x", "y"})
	require.NoError(t, err)
	b, err := repo.CreateCategory(ctx, domain.Category{Name: "b", Days: `["Tuesday"]`, Method: "m"}, []string{"z"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteCategory(ctx, a.ID))

	_, err = repo.GetCategory(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	count, err := repo.CountGarbageTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	remaining, err := repo.GetGarbageTypes(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	assert.ErrorIs(t, repo.DeleteCategory(ctx, a.ID), domain.ErrNotFound)
}

func TestImportSnapshotReplace(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	_, err := repo.CreateCategory(ctx, domain.Category{Name: "old", Days: `["Monday"]`, Method: "m"}, []string{"stale"})
	require.NoError(t, err)

	stats, err := repo.ImportSnapshot(ctx, []domain.CategorySeed{seed("a"), seed("b")}, true)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.ImportedCategories)
	assert.Equal(t, 4, stats.ImportedGarbageTypes)
	assert.Equal(t, 0, stats.SkippedCategories)
	assert.Equal(t, 2, stats.TotalCategories)
	assert.Equal(t, 4, stats.TotalGarbageTypes)

	categories, err := repo.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "a", categories[0].Name)
	assert.Equal(t, "b", categories[1].Name)
}

func TestImportSnapshotReplaceRejectsDuplicateNames(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	existing, err := repo.CreateCategory(ctx, domain.Category{Name: "old", Days: `["Monday"]`, Method: "m"}, []string{"stale"})
	require.NoError(t, err)

	_, err = repo.ImportSnapshot(ctx, []domain.CategorySeed{seed("dup"), seed("dup")}, true)
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	// The failed replace leaves the previous catalog intact.
	categories, err := repo.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, existing.ID, categories[0].ID)

	types, err := repo.GetGarbageTypes(ctx, existing.ID)
	require.NoError(t, err)
	assert.Len(t, types, 1)
}

func TestImportSnapshotMergeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	seeds := []domain.CategorySeed{seed("a"), seed("b")}

	first, err := repo.ImportSnapshot(ctx, seeds, false)
	require.NoError(t, err)
	assert.Equal(t, 2, first.ImportedCategories)
	assert.Equal(t, 0, first.SkippedCategories)

	second, err := repo.ImportSnapshot(ctx, seeds, false)
	require.NoError(t, err)
	assert.Equal(t, 0, second.ImportedCategories)
	assert.Equal(t, 0, second.ImportedGarbageTypes)
	assert.Equal(t, len(seeds), second.SkippedCategories)
	assert.Equal(t, first.TotalCategories, second.TotalCategories)
	assert.Equal(t, first.TotalGarbageTypes, second.TotalGarbageTypes)
}
