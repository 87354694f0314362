package snapshot

import (
	"time"

	"gomical/pkg/schedule"
)

// DefaultDocument returns the sample catalog used to seed an empty store and
// to reset the database from the admin surface.
func DefaultDocument() *Document {
	categories := []CategoryDoc{
		{
			Name:        "可燃ゴミ",
			Days:        schedule.DayList{"Monday", "Thursday"},
			Method:      "専用ゴミ袋に入れて出してください",
			SpecialDays: []string{},
			Note:        "生ごみは水気をよく切ってから出してください",
			Types:       []string{"生ごみ", "紙くず", "木くず"},
		},
		{
			Name:        "不燃ゴミ",
			Days:        schedule.DayList{"Wednesday"},
			Method:      "透明または半透明の袋に入れて出してください",
			SpecialDays: []string{},
			Note:        "金属類は分別してください",
			Types:       []string{"金属類", "ガラス", "陶器"},
		},
		{
			Name:        "プラスチック",
			Days:        schedule.DayList{"Friday"},
			Method:      "プラマークの付いた容器のみ",
			SpecialDays: []string{},
			Note:        "汚れを落としてから出してください",
			Types:       []string{"プラスチック容器"},
		},
		{
			Name:        "資源ゴミ",
			Days:        schedule.DayList{"Saturday"},
			Method:      "種類別に分けて出してください",
			SpecialDays: []string{},
			Note:        "ペットボトル、缶、ビンを分別",
			Types:       []string{"ペットボトル", "空き缶", "ビン"},
		},
	}

	totalTypes := 0
	for _, c := range categories {
		totalTypes += len(c.Types)
	}

	return &Document{
		Metadata: Metadata{
			ExportDate:      time.Now().UTC().Format(time.RFC3339),
			Version:         SchemaVersion,
			TotalCategories: len(categories),
			TotalTypes:      totalTypes,
		},
		Categories: categories,
	}
}
