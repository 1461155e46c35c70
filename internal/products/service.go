package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

const maxNameLen = 255

// maxPrice is the largest value a NUMERIC(10,2) column holds.
var maxPrice = decimal.RequireFromString("99999999.99")

// Service exposes catalog product management.
type Service interface {
	CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id int64) error
	GetProduct(ctx context.Context, id int64) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx   txRunner
	repo *Repository
}

// NewService constructs a product service instance.
func NewService(tx txRunner, repo *Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error) {
	input, err := normalize(input)
	if err != nil {
		return nil, err
	}

	product := &models.Product{}
	input.apply(product)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := ensureCategory(ctx, tx, input.CategoryID); err != nil {
			return err
		}
		if err := NewRepository(tx).Create(ctx, product); err != nil {
			return mapWriteError(err, "create product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(product), nil
}

func (s *service) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*ProductDTO, error) {
	input, err := normalize(input)
	if err != nil {
		return nil, err
	}

	var product *models.Product
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapLookupError(err)
		}
		if err := ensureCategory(ctx, tx, input.CategoryID); err != nil {
			return err
		}
		input.apply(existing)
		if err := repo.Save(ctx, existing); err != nil {
			return mapWriteError(err, "update product")
		}
		product = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(product), nil
}

func (s *service) DeleteProduct(ctx context.Context, id int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := NewRepository(tx).Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: delete product")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil
	})
}

func (s *service) GetProduct(ctx context.Context, id int64) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return FromModel(product), nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	var afterID int64
	limit := 0
	if input.paginated() {
		cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		if cursor != nil {
			afterID = cursor.ID
		}
		limit = pagination.LimitWithBuffer(input.Pagination.Limit)
	}

	rows, err := s.repo.List(ctx, input.CategoryID, afterID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list products")
	}

	result := &ProductListResult{}
	if limit > 0 && len(rows) == limit {
		rows = rows[:limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{ID: rows[len(rows)-1].ID})
	}
	result.Items = make([]ProductDTO, 0, len(rows))
	for i := range rows {
		result.Items = append(result.Items, *FromModel(&rows[i]))
	}
	return result, nil
}

func normalize(input ProductInput) (ProductInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if len(input.Name) > maxNameLen {
		return input, pkgerrors.Newf(pkgerrors.CodeValidation, "name must be at most %d characters", maxNameLen)
	}
	if input.Price.IsNegative() {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative").
			WithDetails(map[string]any{"field": "price"})
	}
	if input.Price.GreaterThan(maxPrice) {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "price is too large").
			WithDetails(map[string]any{"field": "price"})
	}
	if input.Stock < 0 {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative").
			WithDetails(map[string]any{"field": "stock"})
	}
	return input, nil
}

func ensureCategory(ctx context.Context, tx *gorm.DB, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	ok, err := categories.NewRepository(tx).Exists(ctx, *categoryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: lookup category")
	}
	if !ok {
		return unknownCategory(*categoryID)
	}
	return nil
}

func unknownCategory(id int64) error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, "category %d does not exist", id).
		WithDetails(map[string]any{"field": "category_id"})
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: lookup product")
}

func mapWriteError(err error, op string) error {
	switch {
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product name already exists")
	case db.IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "category does not exist")
	case db.IsCheckViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price and stock must be non-negative")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: "+op)
	}
}
