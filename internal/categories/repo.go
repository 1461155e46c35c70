package categories

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository persists categories.
type Repository struct {
	repo.Base
}

// NewRepository constructs a categories repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, category *models.Category) error {
	return r.DB(ctx).Create(category).Error
}

// List returns every category ordered by id.
func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := r.DB(ctx).Order("id").Find(&out).Error
	return out, err
}

// Exists reports whether a category row with the id is present.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.Base.Exists(ctx, &models.Category{}, "id = ?", id)
}
