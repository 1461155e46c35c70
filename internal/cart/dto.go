package cart

import "github.com/shopspring/decimal"

// CartItemView is a cart line joined with its product name. Price is the unit
// price captured when the item was added.
type CartItemView struct {
	ID        int64           `json:"id"`
	CartID    int64           `json:"cart_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
}

// AddItemInput captures the payload for adding a product to a user's cart.
type AddItemInput struct {
	UserID    int64
	ProductID int64
	Quantity  int
}

// Summary aggregates a user's cart lines.
type Summary struct {
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

// Summarize totals the snapshot prices of the provided lines.
func Summarize(items []CartItemView) Summary {
	total := decimal.Zero
	count := 0
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		count += item.Quantity
	}
	return Summary{ItemCount: count, Total: total.Round(2)}
}
