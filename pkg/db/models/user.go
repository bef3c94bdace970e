package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/teleshopapp/teleshop-backend/pkg/enums"
)

// User is a storefront account. Telegram-born accounts carry a telegram id
// and may have no email until the profile is completed.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        *string        `gorm:"column:email;uniqueIndex"`
	Phone        *string        `gorm:"column:phone"`
	FullName     string         `gorm:"column:full_name;not null"`
	TelegramID   *int64         `gorm:"column:telegram_id;uniqueIndex"`
	PasswordHash *string        `gorm:"column:password_hash"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
