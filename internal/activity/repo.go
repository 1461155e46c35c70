package activity

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// interactedProductsSQL selects every product a user carted, ordered or
// otherwise touched.
const interactedProductsSQL = `
SELECT ci.product_id FROM cart_items ci JOIN carts c ON c.id = ci.cart_id WHERE c.user_id = @user
UNION
SELECT oi.product_id FROM order_items oi JOIN orders o ON o.id = oi.order_id WHERE o.user_id = @user
UNION
SELECT ul.product_id FROM user_logs ul WHERE ul.user_id = @user AND ul.product_id IS NOT NULL`

const candidateProductsSQL = `
SELECT p.id FROM products p
WHERE p.stock > 0
  AND p.category_id IN (
    SELECT s.category_id FROM products s
    WHERE s.category_id IS NOT NULL AND s.id IN (` + interactedProductsSQL + `)
  )
  AND p.id NOT IN (` + interactedProductsSQL + `)
ORDER BY p.id
LIMIT @limit`

// Repository persists user logs and recommendations.
type Repository struct {
	repo.Base
}

// NewRepository constructs an activity repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) CreateLog(ctx context.Context, log *models.UserLog) error {
	return r.DB(ctx).Create(log).Error
}

// ListRecent returns the newest logs for the user first.
func (r *Repository) ListRecent(ctx context.Context, userID int64, limit int) ([]models.UserLog, error) {
	var logs []models.UserLog
	err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order(`"timestamp" DESC`).
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// CandidateProductIDs returns in-stock products sharing a category with the
// user's past interactions, excluding products already interacted with.
func (r *Repository) CandidateProductIDs(ctx context.Context, userID int64, limit int) ([]int64, error) {
	var ids []int64
	err := r.DB(ctx).
		Raw(candidateProductsSQL, map[string]any{"user": userID, "limit": limit}).
		Scan(&ids).Error
	return ids, err
}

// ReplaceRecommendations swaps the user's recommendation set for productIDs.
func (r *Repository) ReplaceRecommendations(ctx context.Context, userID int64, productIDs []int64) error {
	conn := r.DB(ctx)
	if err := conn.Where("user_id = ?", userID).Delete(&models.Recommendation{}).Error; err != nil {
		return err
	}
	if len(productIDs) == 0 {
		return nil
	}
	rows := make([]models.Recommendation, 0, len(productIDs))
	for _, id := range productIDs {
		rows = append(rows, models.Recommendation{UserID: userID, ProductID: id})
	}
	return conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// ListRecommendations joins the user's recommendations with product details.
func (r *Repository) ListRecommendations(ctx context.Context, userID int64) ([]RecommendedProduct, error) {
	var out []RecommendedProduct
	err := r.DB(ctx).
		Table("recommendations AS r").
		Select("p.id AS product_id, p.name AS name, p.price AS price, p.category_id AS category_id").
		Joins("JOIN products p ON p.id = r.product_id").
		Where("r.user_id = ?", userID).
		Order("r.id").
		Scan(&out).Error
	return out, err
}
