package cart

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository persists carts and cart items.
type Repository struct {
	repo.Base
}

// NewRepository constructs a cart repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// GetOrCreate returns the user's cart, creating it when absent. The insert
// relies on the unique user_id constraint so concurrent callers converge on a
// single row.
func (r *Repository) GetOrCreate(ctx context.Context, userID int64) (*models.Cart, error) {
	conn := r.DB(ctx)
	candidate := &models.Cart{UserID: userID}
	if err := conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(candidate).Error; err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := conn.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindByUser loads the user's cart.
func (r *Repository) FindByUser(ctx context.Context, userID int64) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	return r.DB(ctx).Create(item).Error
}

// ListItems joins the user's cart lines with current product names.
func (r *Repository) ListItems(ctx context.Context, userID int64) ([]CartItemView, error) {
	var out []CartItemView
	err := r.DB(ctx).
		Table("cart_items AS ci").
		Select("ci.id AS id, ci.cart_id AS cart_id, ci.product_id AS product_id, ci.quantity AS quantity, p.name AS name, ci.unit_price AS price").
		Joins("JOIN carts c ON c.id = ci.cart_id").
		Joins("JOIN products p ON p.id = ci.product_id").
		Where("c.user_id = ?", userID).
		Order("ci.id").
		Scan(&out).Error
	return out, err
}

// ClearItems removes every line from the cart.
func (r *Repository) ClearItems(ctx context.Context, cartID int64) error {
	return r.DB(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// CountCarts reports how many cart rows exist for the user.
func (r *Repository) CountCarts(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Cart{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
