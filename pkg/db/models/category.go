package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Category is an admin-managed navigation entry with optional subcategories.
type Category struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name          string         `gorm:"column:name;not null;uniqueIndex:categories_name_key"`
	ImageURL      string         `gorm:"column:image_url"`
	Subcategories pq.StringArray `gorm:"column:subcategories;type:text[]"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
