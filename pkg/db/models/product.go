package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog listing.
type Product struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string          `gorm:"column:name;type:varchar(255);not null;uniqueIndex:uni_products_name"`
	Description *string         `gorm:"column:description;type:text"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null;check:chk_products_price,price >= 0"`
	Stock       int             `gorm:"column:stock;not null;default:0;check:chk_products_stock,stock >= 0"`
	CategoryID  *int64          `gorm:"column:category_id;index"`
	Category    *Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Attributes  map[string]any  `gorm:"column:attributes;type:jsonb;serializer:json"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
