package models

import "time"

// Recommendation links a user to a suggested product.
type Recommendation struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:uni_recommendations_user_product,priority:1"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ProductID int64     `gorm:"column:product_id;not null;uniqueIndex:uni_recommendations_user_product,priority:2"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
