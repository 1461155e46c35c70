package orders

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/activity"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// DefaultRecentLimit bounds ListRecent when no limit is supplied.
const DefaultRecentLimit = 5

var maxOrderTotal = decimal.RequireFromString("99999999.99")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderCounter interface {
	IncOrderCreated(pricingMode string)
}

// Service places and lists orders.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	ListRecent(ctx context.Context, userID int64, limit int) ([]OrderDTO, error)
}

// ServiceParams bundles the dependencies required to build an orders service.
type ServiceParams struct {
	Repo                Repository
	Tx                  txRunner
	PricingMode         enums.PricingMode
	RecommendationLimit int
	Metrics             orderCounter
}

type service struct {
	repo     Repository
	tx       txRunner
	mode     enums.PricingMode
	recLimit int
	metrics  orderCounter
}

// NewService builds an orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	mode := params.PricingMode
	if mode == "" {
		mode = enums.PricingModeCart
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("invalid pricing mode %q", mode)
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		mode:     mode,
		recLimit: params.RecommendationLimit,
		metrics:  params.Metrics,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if input.PaymentID != nil {
		trimmed := strings.TrimSpace(*input.PaymentID)
		if len(trimmed) > 255 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment_id is too long").
				WithDetails(map[string]any{"field": "payment_id"})
		}
		input.PaymentID = &trimmed
	}

	var clientTotal decimal.Decimal
	clientStatus := enums.OrderStatusProcessing
	if s.mode == enums.PricingModeClient {
		var err error
		clientTotal, clientStatus, err = validateClientFields(input)
		if err != nil {
			return nil, err
		}
	}

	var out OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		exists, err := users.NewRepository(tx).Exists(ctx, input.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: lookup user")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}

		order := &models.Order{
			UserID:      input.UserID,
			TotalAmount: clientTotal,
			Status:      clientStatus,
			PaymentID:   input.PaymentID,
		}

		var items []models.OrderItem
		if s.mode == enums.PricingModeCart {
			items, err = s.priceFromCart(ctx, tx, order)
			if err != nil {
				return err
			}
		}

		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			if db.IsCheckViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "order violates a constraint")
			}
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert order")
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert order items")
		}
		order.Items = items

		if err := activity.Record(ctx, tx, input.UserID, enums.UserActionPlaceOrder, nil); err != nil {
			return err
		}
		if err := activity.RefreshRecommendations(ctx, tx, input.UserID, s.recLimit); err != nil {
			return err
		}

		out = FromModel(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncOrderCreated(s.mode.String())
	}
	return &out, nil
}

// priceFromCart totals the cart snapshot, reserves stock and empties the cart.
func (s *service) priceFromCart(ctx context.Context, tx *gorm.DB, order *models.Order) ([]models.OrderItem, error) {
	cartRepo := cart.NewRepository(tx)
	lines, err := cartRepo.ListItems(ctx, order.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load cart")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	demand := map[int64]int{}
	for _, line := range lines {
		demand[line.ProductID] += line.Quantity
	}
	productIDs := make([]int64, 0, len(demand))
	for id := range demand {
		productIDs = append(productIDs, id)
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	products := product.NewRepository(tx)
	for _, id := range productIDs {
		ok, err := products.DecrementStock(ctx, id, demand[id])
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: reserve stock")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
				WithDetails(map[string]any{"product_id": id, "requested": demand[id]})
		}
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}
	order.TotalAmount = total.Round(2)
	order.Status = enums.OrderStatusProcessing

	if err := cartRepo.ClearItems(ctx, lines[0].CartID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: clear cart")
	}
	return items, nil
}

func validateClientFields(input CreateOrderInput) (decimal.Decimal, enums.OrderStatus, error) {
	if input.TotalAmount == nil {
		return decimal.Zero, "", pkgerrors.New(pkgerrors.CodeValidation, "total_amount is required").
			WithDetails(map[string]any{"field": "total_amount"})
	}
	total := input.TotalAmount.Round(2)
	if total.IsNegative() || total.GreaterThan(maxOrderTotal) {
		return decimal.Zero, "", pkgerrors.New(pkgerrors.CodeValidation, "total_amount out of range").
			WithDetails(map[string]any{"field": "total_amount"})
	}

	status := enums.OrderStatusProcessing
	if raw := strings.TrimSpace(input.Status); raw != "" {
		parsed, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return decimal.Zero, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
				WithDetails(map[string]any{"field": "status"})
		}
		status = parsed
	}
	return total, status, nil
}

func (s *service) ListRecent(ctx context.Context, userID int64, limit int) ([]OrderDTO, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows, err := s.repo.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}
