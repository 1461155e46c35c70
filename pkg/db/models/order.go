package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Order is a placed purchase.
type Order struct {
	ID          int64             `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      int64             `gorm:"column:user_id;not null;index"`
	User        *User             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric(10,2);not null;check:chk_orders_total_amount,total_amount >= 0"`
	Status      enums.OrderStatus `gorm:"column:status;type:varchar(20);not null;default:'processing';check:chk_orders_status,status IN ('processing','shipped','delivered')"`
	PaymentID   *string           `gorm:"column:payment_id;type:varchar(255)"`
	Items       []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}
