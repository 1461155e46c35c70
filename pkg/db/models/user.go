package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// User represents a registered shopper or administrator.
type User struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string     `gorm:"column:name;type:varchar(100);not null"`
	Email        string     `gorm:"column:email;type:varchar(100);not null;uniqueIndex:uni_users_email"`
	PasswordHash string     `gorm:"column:password_hash;type:varchar(255);not null"`
	Role         enums.Role `gorm:"column:role;type:varchar(20);not null;default:'buyer';check:chk_users_role,role IN ('buyer','admin')"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}
