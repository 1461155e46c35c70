package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// UserLog is an append-only record of a user action.
type UserLog struct {
	ID        int64            `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64            `gorm:"column:user_id;not null;index"`
	User      *User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Action    enums.UserAction `gorm:"column:action;type:varchar(100);not null"`
	ProductID *int64           `gorm:"column:product_id"`
	Product   *Product         `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL"`
	Timestamp time.Time        `gorm:"column:timestamp;autoCreateTime"`
}
