package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a cart line carrying the product price captured when it was added.
type CartItem struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	CartID    int64           `gorm:"column:cart_id;not null;index"`
	ProductID int64           `gorm:"column:product_id;not null;index"`
	Product   *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Quantity  int             `gorm:"column:quantity;not null;check:chk_cart_items_quantity,quantity > 0"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null;check:chk_cart_items_unit_price,unit_price >= 0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
