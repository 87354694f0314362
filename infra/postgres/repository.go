package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"

	"gomical/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS garbage_categories (
	id           TEXT PRIMARY KEY,
	category     TEXT NOT NULL UNIQUE,
	date         TEXT NOT NULL,
	method       TEXT NOT NULL,
	special_days TEXT NOT NULL DEFAULT '[]',
	notion       TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS garbage_types (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	category_id TEXT NOT NULL REFERENCES garbage_categories (id) ON DELETE CASCADE,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_garbage_types_category_id ON garbage_types (category_id);
`

type PgRepository struct {
	db *sqlx.DB
}

func NewPgRepository(host, database, user, password, port string) *PgRepository {
	db := sqlx.MustConnect("postgres", fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, database,
	))

	db.SetMaxOpenConns(15)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return &PgRepository{db: db}
}

func (r *PgRepository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the catalog tables when they do not exist yet.
func (r *PgRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// GetPoolStats returns current connection pool statistics
func (r *PgRepository) GetPoolStats() map[string]interface{} {
	stats := r.db.Stats()
	return map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
}

func (r *PgRepository) GetCategories(ctx context.Context) ([]domain.Category, error) {
	categories := make([]domain.Category, 0)
	query := `SELECT * FROM garbage_categories ORDER BY created_at ASC, id ASC`

	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *PgRepository) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	query := `SELECT * FROM garbage_categories WHERE id = $1`

	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return c, domain.ErrNotFound
	}

	return c, err
}

func (r *PgRepository) GetGarbageTypes(ctx context.Context, categoryID string) ([]domain.GarbageType, error) {
	types := make([]domain.GarbageType, 0)
	query := `SELECT * FROM garbage_types WHERE category_id = $1 ORDER BY created_at ASC, id ASC`

	if err := r.db.SelectContext(ctx, &types, query, categoryID); err != nil {
		return nil, err
	}

	return types, nil
}

// SearchGarbageTypes matches item names by case-sensitive substring.
func (r *PgRepository) SearchGarbageTypes(ctx context.Context, fragment string) ([]domain.GarbageType, error) {
	types := make([]domain.GarbageType, 0)
	query := `SELECT * FROM garbage_types WHERE name LIKE '%' || $1 || '%' ORDER BY created_at ASC, id ASC`

	if err := r.db.SelectContext(ctx, &types, query, fragment); err != nil {
		return nil, err
	}

	return types, nil
}

func (r *PgRepository) CountCategories(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM garbage_categories`)
	return count, err
}

func (r *PgRepository) CountGarbageTypes(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM garbage_types`)
	return count, err
}

// CreateCategory persists a category together with its initial garbage types
// in one transaction. Blank type names are dropped, the rest are trimmed.
func (r *PgRepository) CreateCategory(ctx context.Context, cat domain.Category, typeNames []string) (domain.Category, error) {
	var created domain.Category

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return created, err
	}
	defer tx.Rollback()

	taken, err := nameTaken(ctx, tx, cat.Name, "")
	if err != nil {
		return created, err
	}
	if taken {
		return created, domain.ErrDuplicateName
	}

	now := time.Now().UTC()
	cat.ID = uuid.New().String()
	cat.CreatedAt = now
	cat.UpdatedAt = now

	query := `
		INSERT INTO garbage_categories (id, category, date, method, special_days, notion, created_at, updated_at)
		VALUES (:id, :category, :date, :method, :special_days, :notion, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, cat); err != nil {
		return created, err
	}

	if _, err := insertGarbageTypes(ctx, tx, cat.ID, typeNames, now); err != nil {
		return created, err
	}

	if err := tx.Commit(); err != nil {
		return created, err
	}

	return cat, nil
}

// UpdateCategory overwrites the category row and, when typeNames is non-nil,
// replaces the whole garbage type list. Both happen in one transaction.
func (r *PgRepository) UpdateCategory(ctx context.Context, cat domain.Category, typeNames []string) (domain.Category, error) {
	var updated domain.Category

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return updated, err
	}
	defer tx.Rollback()

	var existingID string
	err = tx.GetContext(ctx, &existingID, `SELECT id FROM garbage_categories WHERE id = $1`, cat.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return updated, domain.ErrNotFound
	}
	if err != nil {
		return updated, err
	}

	taken, err := nameTaken(ctx, tx, cat.Name, cat.ID)
	if err != nil {
		return updated, err
	}
	if taken {
		return updated, domain.ErrDuplicateName
	}

	cat.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE garbage_categories SET
			category = :category,
			date = :date,
			method = :method,
			special_days = :special_days,
			notion = :notion,
			updated_at = :updated_at
		WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, cat); err != nil {
		return updated, err
	}

	if typeNames != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM garbage_types WHERE category_id = $1`, cat.ID); err != nil {
			return updated, err
		}
		if _, err := insertGarbageTypes(ctx, tx, cat.ID, typeNames, cat.UpdatedAt); err != nil {
			return updated, err
		}
	}

	if err := tx.Commit(); err != nil {
		return updated, err
	}

	return cat, nil
}

// DeleteCategory removes a category and cascades to its garbage types.
func (r *PgRepository) DeleteCategory(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existingID string
	err = tx.GetContext(ctx, &existingID, `SELECT id FROM garbage_categories WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM garbage_types WHERE category_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM garbage_categories WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit()
}

// ImportSnapshot applies a validated snapshot in one transaction. With
// replace, the whole catalog is cleared first and every seed is inserted;
// otherwise seeds whose category name already exists are skipped.
func (r *PgRepository) ImportSnapshot(ctx context.Context, seeds []domain.CategorySeed, replace bool) (domain.ImportStats, error) {
	var stats domain.ImportStats

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return stats, err
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM garbage_types`); err != nil {
			return stats, err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM garbage_categories`); err != nil {
			return stats, err
		}
	}

	now := time.Now().UTC()
	for _, seed := range seeds {
		if !replace {
			taken, err := nameTaken(ctx, tx, seed.Name, "")
			if err != nil {
				return stats, err
			}
			if taken {
				stats.SkippedCategories++
				continue
			}
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

		query := `
			INSERT INTO garbage_categories (id, category, date, method, special_days, notion, created_at, updated_at)
			VALUES (:id, :category, :date, :method, :special_days, :notion, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, cat); err != nil {
			return stats, err
		}
		stats.ImportedCategories++

		inserted, err := insertGarbageTypes(ctx, tx, cat.ID, seed.TypeNames, now)
		if err != nil {
			return stats, err
		}
		stats.ImportedGarbageTypes += inserted
	}

	if err := tx.GetContext(ctx, &stats.TotalCategories, `SELECT COUNT(*) FROM garbage_categories`); err != nil {
		return stats, err
	}
	if err := tx.GetContext(ctx, &stats.TotalGarbageTypes, `SELECT COUNT(*) FROM garbage_types`); err != nil {
		return stats, err
	}

	if err := tx.Commit(); err != nil {
		return stats, err
	}

	return stats, nil
}

func nameTaken(ctx context.Context, tx *sqlx.Tx, name, excludeID string) (bool, error) {
	var count int
	err := tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM garbage_categories WHERE category = $1 AND id <> $2`, name, excludeID)
	return count > 0, err
}

func insertGarbageTypes(ctx context.Context, tx *sqlx.Tx, categoryID string, names []string, now time.Time) (int, error) {
	query := `
		INSERT INTO garbage_types (id, name, category_id, created_at, updated_at)
		VALUES (:id, :name, :category_id, :created_at, :updated_at)`

	inserted := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		t := domain.GarbageType{
			ID:         uuid.New().String(),
			Name:       name,
			CategoryID: categoryID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if _, err := tx.NamedExecContext(ctx, query, t); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
