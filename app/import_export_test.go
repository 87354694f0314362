package app

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomical/infra/memory"
	"gomical/pkg/events"
	"gomical/pkg/snapshot"
)

func TestExportHandle(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	mustCreate(t, repo, "可燃ゴミ", []string{"Monday", "Thursday"}, "burn", "生ごみ", "紙くず")
	mustCreate(t, repo, "不燃ゴミ", []string{"Wednesday"}, "no burn", "ガラス")

	handler := NewExportHandler(repo, nil)

	res, err := handler.Handle(ctx, &ExportRequest{})
	require.NoError(t, err)

	doc := res.Data
	require.NotNil(t, doc)
	assert.Equal(t, snapshot.SchemaVersion, doc.Metadata.Version)
	assert.Equal(t, 2, doc.Metadata.TotalCategories)
	assert.Equal(t, 3, doc.Metadata.TotalTypes)
	require.Len(t, doc.Categories, 2)
	assert.Equal(t, "可燃ゴミ", doc.Categories[0].Name)
	assert.ElementsMatch(t, []string{"生ごみ", "紙くず"}, doc.Categories[0].Types)
}

func TestExportHandleArchivesACopy(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	mustCreate(t, repo, "資源ゴミ", []string{"Saturday"}, "recycle", "びん")

	archiver := &spyArchiver{}
	handler := NewExportHandler(repo, archiver)

	_, err := handler.Handle(ctx, &ExportRequest{})
	require.NoError(t, err)

	require.Len(t, archiver.keys, 1)
	assert.True(t, strings.HasPrefix(archiver.keys[0], "backups/backup_"))

	archived, err := snapshot.Parse(archiver.data[0])
	require.NoError(t, err)
	assert.Equal(t, 1, archived.Metadata.TotalCategories)
}

func TestExportHandleArchiveFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	mustCreate(t, repo, "a", []string{"Monday"}, "m")

	handler := NewExportHandler(repo, &spyArchiver{err: assert.AnError})

	res, err := handler.Handle(ctx, &ExportRequest{})
	require.NoError(t, err)
	assert.NotNil(t, res.Data)
}

func TestImportHandle(t *testing.T) {
	ctx := context.Background()

	rawDoc := func(t *testing.T, doc *snapshot.Document) json.RawMessage {
		t.Helper()
		raw, err := json.Marshal(doc)
		require.NoError(t, err)
		return raw
	}

	t.Run("replace clears the existing catalog", func(t *testing.T) {
		repo := memory.NewRepository()
		mustCreate(t, repo, "stale", []string{"Monday"}, "m", "old")
		publisher := &spyPublisher{}
		handler := NewImportHandler(repo, publisher)

		res, err := handler.Handle(ctx, &ImportRequest{
			Data:          rawDoc(t, snapshot.DefaultDocument()),
			ClearExisting: true,
		})
		require.NoError(t, err)

		assert.Equal(t, 4, res.Stats.ImportedCategories)
		assert.Equal(t, 0, res.Stats.SkippedCategories)
		assert.Equal(t, 4, res.Stats.TotalCategories)

		categories, err := repo.GetCategories(ctx)
		require.NoError(t, err)
		require.Len(t, categories, 4)
		for _, c := range categories {
			assert.NotEqual(t, "stale", c.Name)
		}

		published := publisher.published()
		require.Len(t, published, 1)
		assert.Equal(t, events.CatalogImportedEvent, published[0].Event)
	})

	t.Run("merge skips existing names and is idempotent", func(t *testing.T) {
		repo := memory.NewRepository()
		handler := NewImportHandler(repo, nil)
		doc := snapshot.DefaultDocument()

		first, err := handler.Handle(ctx, &ImportRequest{Data: rawDoc(t, doc)})
		require.NoError(t, err)
		assert.Equal(t, len(doc.Categories), first.Stats.ImportedCategories)

		second, err := handler.Handle(ctx, &ImportRequest{Data: rawDoc(t, doc)})
		require.NoError(t, err)
		assert.Equal(t, 0, second.Stats.ImportedCategories)
		assert.Equal(t, 0, second.Stats.ImportedGarbageTypes)
		assert.Equal(t, len(doc.Categories), second.Stats.SkippedCategories)
		assert.Equal(t, first.Stats.TotalCategories, second.Stats.TotalCategories)
		assert.Equal(t, first.Stats.TotalGarbageTypes, second.Stats.TotalGarbageTypes)
	})

	t.Run("empty data is rejected", func(t *testing.T) {
		handler := NewImportHandler(memory.NewRepository(), nil)
		_, err := handler.Handle(ctx, &ImportRequest{})
		requireHTTPStatus(t, err, 400)
	})

	t.Run("malformed document is rejected", func(t *testing.T) {
		handler := NewImportHandler(memory.NewRepository(), nil)
		for _, raw := range []string{`{`, `[]`, `{"categories": 5}`, `{"metadata": {}}`} {
			_, err := handler.Handle(ctx, &ImportRequest{Data: json.RawMessage(raw)})
			requireHTTPStatus(t, err, 400)
		}
	})

	t.Run("duplicate category names are rejected", func(t *testing.T) {
		repo := memory.NewRepository()
		handler := NewImportHandler(repo, nil)

		doc := snapshot.DefaultDocument()
		doc.Categories = append(doc.Categories, doc.Categories[0])

		_, err := handler.Handle(ctx, &ImportRequest{Data: rawDoc(t, doc), ClearExisting: true})
		requireHTTPStatus(t, err, 400)

		count, err := repo.CountCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("one invalid block aborts the whole import", func(t *testing.T) {
		repo := memory.NewRepository()
		handler := NewImportHandler(repo, nil)

		doc := snapshot.DefaultDocument()
		doc.Categories = append(doc.Categories, snapshot.CategoryDoc{Name: "no method"})

		_, err := handler.Handle(ctx, &ImportRequest{Data: rawDoc(t, doc)})
		requireHTTPStatus(t, err, 400)

		count, err := repo.CountCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := memory.NewRepository()
	mustCreate(t, source, "可燃ゴミ", []string{"Monday", "Thursday"}, "burn", "生ごみ", "紙くず")
	mustCreate(t, source, "プラスチック", []string{"Friday"}, "rinse first", "ペットボトル")

	exported, err := NewExportHandler(source, nil).Handle(ctx, &ExportRequest{})
	require.NoError(t, err)
	raw, err := json.Marshal(exported.Data)
	require.NoError(t, err)

	target := memory.NewRepository()
	imported, err := NewImportHandler(target, nil).Handle(ctx, &ImportRequest{Data: raw, ClearExisting: true})
	require.NoError(t, err)

	assert.Equal(t, 2, imported.Stats.ImportedCategories)
	assert.Equal(t, 3, imported.Stats.ImportedGarbageTypes)

	reExported, err := NewExportHandler(target, nil).Handle(ctx, &ExportRequest{})
	require.NoError(t, err)
	assert.Equal(t, exported.Data.Categories, reExported.Data.Categories)
}

func TestResetHandle(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	mustCreate(t, repo, "whatever", []string{"Monday"}, "m", "x")
	publisher := &spyPublisher{}

	handler := NewResetHandler(repo, publisher)

	res, err := handler.Handle(ctx, &ResetRequest{})
	require.NoError(t, err)

	defaults := snapshot.DefaultDocument()
	assert.Equal(t, len(defaults.Categories), res.Stats.ImportedCategories)
	assert.Equal(t, len(defaults.Categories), res.Stats.TotalCategories)

	categories, err := repo.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, len(defaults.Categories))
	assert.Equal(t, defaults.Categories[0].Name, categories[0].Name)

	published := publisher.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.CatalogResetEvent, published[0].Event)
}
