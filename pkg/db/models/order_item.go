package models

import "github.com/shopspring/decimal"

// OrderItem records a purchased product line at its charged unit price.
type OrderItem struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID   int64           `gorm:"column:order_id;not null;index"`
	ProductID int64           `gorm:"column:product_id;not null;index"`
	Product   *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Quantity  int             `gorm:"column:quantity;not null;check:chk_order_items_quantity,quantity > 0"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null;check:chk_order_items_price,price >= 0"`
}
