package domain

import "time"

// GarbageType is a concrete waste item owned by exactly one Category.
type GarbageType struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	CategoryID string    `db:"category_id" json:"categoryId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}
