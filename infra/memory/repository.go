// Package memory holds an in-memory catalog repository with the same
// semantics as the Postgres one. It backs the test suite and needs no
// running database.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gomical/domain"
)

type Repository struct {
	mu         sync.Mutex
	categories []domain.Category
	types      []domain.GarbageType
}

func NewRepository() *Repository {
	return &Repository{
		categories: make([]domain.Category, 0),
		types:      make([]domain.GarbageType, 0),
	}
}

func (r *Repository) Close() error {
	return nil
}

func (r *Repository) GetCategories(ctx context.Context) ([]domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Category, len(r.categories))
	copy(out, r.categories)
	return out, nil
}

func (r *Repository) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Category{}, domain.ErrNotFound
}

func (r *Repository) GetGarbageTypes(ctx context.Context, categoryID string) ([]domain.GarbageType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.GarbageType, 0)
	for _, t := range r.types {
		if t.CategoryID == categoryID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *Repository) SearchGarbageTypes(ctx context.Context, fragment string) ([]domain.GarbageType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.GarbageType, 0)
	for _, t := range r.types {
		if strings.Contains(t.Name, fragment) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *Repository) CountCategories(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.categories), nil
}

func (r *Repository) CountGarbageTypes(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.types), nil
}

func (r *Repository) CreateCategory(ctx context.Context, cat domain.Category, typeNames []string) (domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(cat.Name, "") {
		return domain.Category{}, domain.ErrDuplicateName
	}

	now := time.Now().UTC()
	cat.ID = uuid.New().String()
	cat.CreatedAt = now
	cat.UpdatedAt = now

	r.categories = append(r.categories, cat)
	r.insertTypes(cat.ID, typeNames, now)
	return cat, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, cat domain.Category, typeNames []string) (domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, c := range r.categories {
		if c.ID == cat.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Category{}, domain.ErrNotFound
	}

	if r.nameTaken(cat.Name, cat.ID) {
		return domain.Category{}, domain.ErrDuplicateName
	}

	cat.CreatedAt = r.categories[idx].CreatedAt
	cat.UpdatedAt = time.Now().UTC()
	r.categories[idx] = cat

	if typeNames != nil {
		r.deleteTypes(cat.ID)
		r.insertTypes(cat.ID, typeNames, cat.UpdatedAt)
	}
	return cat, nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, c := range r.categories {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}

	r.categories = append(r.categories[:idx], r.categories[idx+1:]...)
	r.deleteTypes(id)
	return nil
}

func (r *Repository) ImportSnapshot(ctx context.Context, seeds []domain.CategorySeed, replace bool) (domain.ImportStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prevCategories, prevTypes := r.categories, r.types

	if replace {
		r.categories = make([]domain.Category, 0, len(seeds))
		r.types = make([]domain.GarbageType, 0)
	}

	var stats domain.ImportStats
	now := time.Now().UTC()

	for _, seed := range seeds {
		if r.nameTaken(seed.Name, "") {
			if replace {
				// Mirrors the UNIQUE constraint abort in the SQL store.
				r.categories, r.types = prevCategories, prevTypes
				return domain.ImportStats{}, domain.ErrDuplicateName
			}
			stats.SkippedCategories++
			continue
		}

		cat := domain.Category{
			ID:          uuid.New().String(),
			Name:        seed.Name,
			Days:        seed.Days,
			Method:      seed.Method,
			SpecialDays: seed.SpecialDays,
			Note:        seed.Note,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		r.categories = append(r.categories, cat)
		stats.ImportedCategories++
		stats.ImportedGarbageTypes += r.insertTypes(cat.ID, seed.TypeNames, now)
	}

	stats.TotalCategories = len(r.categories)
	stats.TotalGarbageTypes = len(r.types)
	return stats, nil
}

func (r *Repository) nameTaken(name, excludeID string) bool {
	for _, c := range r.categories {
		if c.Name == name && c.ID != excludeID {
			return true
		}
	}
	return false
}

func (r *Repository) deleteTypes(categoryID string) {
	kept := r.types[:0]
	for _, t := range r.types {
		if t.CategoryID != categoryID {
			kept = append(kept, t)
		}
	}
	r.types = kept
}

func (r *Repository) insertTypes(categoryID string, names []string, now time.Time) int {
	inserted := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		r.types = append(r.types, domain.GarbageType{
			ID:         uuid.New().String(),
			Name:       name,
			CategoryID: categoryID,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		inserted++
	}
	return inserted
}
