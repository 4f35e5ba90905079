package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopsphere/shopsphere-backend/pkg/enums"
)

// User represents a storefront account, buyer or admin.
type User struct {
	ID                   uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Username             string     `gorm:"column:username;type:text;not null;uniqueIndex:users_username_key"`
	Email                string     `gorm:"column:email;type:text;not null;uniqueIndex:users_email_key"`
	PasswordHash         string     `gorm:"column:password_hash;not null"`
	Phone                *string    `gorm:"column:phone"`
	Role                 enums.Role `gorm:"column:role;type:text;not null;default:'user'"`
	ForgetPasswordOTP    *string    `gorm:"column:forget_password_otp"`
	ForgetPasswordExpiry *time.Time `gorm:"column:forget_password_expiry"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Addresses []Address `gorm:"foreignKey:UserID"`
}
