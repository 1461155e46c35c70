package cart

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/activity"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventCounter interface {
	IncCartItemAdded()
}

// Service exposes the shopping cart operations.
type Service interface {
	GetCart(ctx context.Context, userID int64) ([]CartItemView, error)
	AddItem(ctx context.Context, input AddItemInput) (*CartItemView, error)
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	Tx      txRunner
	Repo    *Repository
	Metrics eventCounter
}

type service struct {
	tx      txRunner
	repo    *Repository
	metrics eventCounter
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	return &service{
		tx:      params.Tx,
		repo:    params.Repo,
		metrics: params.Metrics,
	}, nil
}

func (s *service) GetCart(ctx context.Context, userID int64) ([]CartItemView, error) {
	items, err := s.repo.ListItems(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list cart items")
	}
	if items == nil {
		items = []CartItemView{}
	}
	return items, nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (*CartItemView, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]any{"field": "quantity"})
	}

	var view *CartItemView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		p, err := product.NewRepository(tx).FindByID(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: lookup product")
		}

		exists, err := users.NewRepository(tx).Exists(ctx, input.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: lookup user")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}

		repo := NewRepository(tx)
		cart, err := repo.GetOrCreate(ctx, input.UserID)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: get or create cart")
		}

		item := &models.CartItem{
			CartID:    cart.ID,
			ProductID: p.ID,
			Quantity:  input.Quantity,
			UnitPrice: p.Price,
		}
		if err := repo.CreateItem(ctx, item); err != nil {
			if db.IsCheckViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "cart item violates a constraint")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert cart item")
		}

		if err := activity.Record(ctx, tx, input.UserID, enums.UserActionAddToCart, &p.ID); err != nil {
			return err
		}

		view = &CartItemView{
			ID:        item.ID,
			CartID:    cart.ID,
			ProductID: p.ID,
			Quantity:  item.Quantity,
			Name:      p.Name,
			Price:     item.UnitPrice,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncCartItemAdded()
	}
	return view, nil
}
