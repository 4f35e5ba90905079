package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopsphere/shopsphere-backend/pkg/enums"
)

// Order captures a placed order with its shipping snapshot. Items are plain
// copies; later product edits never touch an existing order.
type Order struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID             uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Total              decimal.Decimal     `gorm:"column:total;type:numeric(10,2);not null"`
	PaymentMethod      enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Status             enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'Pending'"`
	CancellationReason *string             `gorm:"column:cancellation_reason"`
	ShippingName       string              `gorm:"column:shipping_name;not null"`
	ShippingEmail      string              `gorm:"column:shipping_email;not null"`
	ShippingPhone      string              `gorm:"column:shipping_phone"`
	ShippingStreet     string              `gorm:"column:shipping_street;not null"`
	ShippingCity       string              `gorm:"column:shipping_city;not null"`
	ShippingState      string              `gorm:"column:shipping_state"`
	ShippingZip        string              `gorm:"column:shipping_zip;not null"`
	ShippingCountry    string              `gorm:"column:shipping_country"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	User  *User       `gorm:"foreignKey:UserID"`
}

// OrderItem is the point-in-time snapshot of one ordered line. There is no
// product foreign key on purpose.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	Name      string          `gorm:"column:name;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
