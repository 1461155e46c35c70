package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// CreateOrderInput is the payload accepted when placing an order. TotalAmount
// and Status are only honoured in client pricing mode.
type CreateOrderInput struct {
	UserID      int64
	TotalAmount *decimal.Decimal
	Status      string
	PaymentID   *string
}

// OrderItemDTO is a purchased line.
type OrderItemDTO struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderDTO is the API shape of an order.
type OrderDTO struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"user_id"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Status      enums.OrderStatus `json:"status"`
	PaymentID   *string           `json:"payment_id"`
	CreatedAt   time.Time         `json:"created_at"`
	Items       []OrderItemDTO    `json:"items"`
}

// FromModel maps an order and its loaded items to the API shape.
func FromModel(m *models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, OrderItemDTO{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return OrderDTO{
		ID:          m.ID,
		UserID:      m.UserID,
		TotalAmount: m.TotalAmount,
		Status:      m.Status,
		PaymentID:   m.PaymentID,
		CreatedAt:   m.CreatedAt,
		Items:       items,
	}
}
