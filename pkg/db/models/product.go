package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Price is the base price; SalePrice, when set,
// is what buyers pay but never what maxPrice filters against.
type Product struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name           string           `gorm:"column:name;not null"`
	Description    string           `gorm:"column:description"`
	Price          decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	SalePrice      *decimal.Decimal `gorm:"column:sale_price;type:numeric(10,2)"`
	ImageURL       string           `gorm:"column:image_url"`
	AdditionalInfo string           `gorm:"column:additional_info"`
	Category       string           `gorm:"column:category;index"`
	Tag            string           `gorm:"column:tag"`
	Brand          string           `gorm:"column:brand;index"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`

	Reviews []Review `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}
