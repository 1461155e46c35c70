package models

import "time"

// Category groups products into an optional parent/child hierarchy.
type Category struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;type:varchar(100);not null;uniqueIndex:uni_categories_name"`
	ParentID  *int64    `gorm:"column:parent_id"`
	Parent    *Category `gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
