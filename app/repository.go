package app

import (
	"context"

	"gomical/domain"
)

// Repository is the catalog store. Mutating methods are atomic over the
// category-plus-types unit; a failure leaves the store unchanged.
type Repository interface {
	Close() error
	GetCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id string) (domain.Category, error)
	GetGarbageTypes(ctx context.Context, categoryID string) ([]domain.GarbageType, error)
	SearchGarbageTypes(ctx context.Context, fragment string) ([]domain.GarbageType, error)
	CountCategories(ctx context.Context) (int, error)
	CountGarbageTypes(ctx context.Context) (int, error)
	CreateCategory(ctx context.Context, cat domain.Category, typeNames []string) (domain.Category, error)
	UpdateCategory(ctx context.Context, cat domain.Category, typeNames []string) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ImportSnapshot(ctx context.Context, seeds []domain.CategorySeed, replace bool) (domain.ImportStats, error)
}

// Archiver stores snapshot backups outside the database.
type Archiver interface {
	Save(key string, data []byte) error
}
