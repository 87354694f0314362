package domain

import "time"

// Category is one waste-sorting class with its collection schedule.
// Days and SpecialDays hold the stored scalar forms; decoding lives in
// pkg/schedule.
type Category struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"category" json:"category"`
	Days        string    `db:"date" json:"date"`
	Method      string    `db:"method" json:"method"`
	SpecialDays string    `db:"special_days" json:"specialDays"`
	Note        string    `db:"notion" json:"notion"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// CategorySeed is an insert-ready category block used by snapshot imports.
// Days and SpecialDays are already encoded for storage.
type CategorySeed struct {
	Name        string
	Days        string
	Method      string
	SpecialDays string
	Note        string
	TypeNames   []string
}

// ImportStats reports exactly what a snapshot import did.
type ImportStats struct {
	ImportedCategories   int `json:"imported_categories"`
	ImportedGarbageTypes int `json:"imported_garbage_types"`
	SkippedCategories    int `json:"skipped_categories"`
	TotalCategories      int `json:"total_categories"`
	TotalGarbageTypes    int `json:"total_garbage_types"`
}
