package activity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// LogDTO is one entry of a user's activity feed.
type LogDTO struct {
	ID        int64            `json:"id"`
	Action    enums.UserAction `json:"action"`
	ProductID *int64           `json:"product_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// RecommendedProduct is a product suggested to a user.
type RecommendedProduct struct {
	ProductID  int64           `json:"product_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	CategoryID *int64          `json:"category_id,omitempty"`
}

func logFromModel(m models.UserLog) LogDTO {
	return LogDTO{
		ID:        m.ID,
		Action:    m.Action,
		ProductID: m.ProductID,
		Timestamp: m.Timestamp,
	}
}
