package events

import "time"

const (
	CatalogDomain   = "catalog"
	CatalogExchange = "gomical.catalog"
)

// Event names
const (
	CategoryCreatedEvent = "catalog.category.created"
	CategoryUpdatedEvent = "catalog.category.updated"
	CategoryDeletedEvent = "catalog.category.deleted"
	CatalogImportedEvent = "catalog.imported"
	CatalogResetEvent    = "catalog.reset"
)

const EventVersionV1 = "v1"

type CategoryCreatedPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"category"`
	Days      []string  `json:"date"`
	Method    string    `json:"method"`
	CreatedAt time.Time `json:"createdAt"`
}

type CategoryUpdatedPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"category"`
	Days      []string  `json:"date"`
	Method    string    `json:"method"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CategoryDeletedPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"category"`
	DeletedAt time.Time `json:"deletedAt"`
}

// CatalogImportedPayload is published after a snapshot import or reset.
type CatalogImportedPayload struct {
	Mode                 string    `json:"mode"` // "replace" or "merge"
	ImportedCategories   int       `json:"importedCategories"`
	ImportedGarbageTypes int       `json:"importedGarbageTypes"`
	SkippedCategories    int       `json:"skippedCategories"`
	TotalCategories      int       `json:"totalCategories"`
	TotalGarbageTypes    int       `json:"totalGarbageTypes"`
	ImportedAt           time.Time `json:"importedAt"`
}
