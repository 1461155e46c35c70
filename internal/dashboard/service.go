package dashboard

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/internal/activity"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/users"
)

const (
	recentOrdersLimit   = 5
	recentActivityLimit = 10
)

// Dashboard is the caller's account overview.
type Dashboard struct {
	User            *users.UserDTO                `json:"user"`
	Cart            cart.Summary                  `json:"cart"`
	RecentOrders    []orders.OrderDTO             `json:"recent_orders"`
	RecentActivity  []activity.LogDTO             `json:"recent_activity"`
	Recommendations []activity.RecommendedProduct `json:"recommendations"`
}

// Service assembles dashboards from the owning services.
type Service interface {
	Get(ctx context.Context, userID int64) (*Dashboard, error)
}

// ServiceParams bundles the read services a dashboard is built from.
type ServiceParams struct {
	Users    users.Service
	Cart     cart.Service
	Orders   orders.Service
	Activity activity.Service
}

type service struct {
	users    users.Service
	cart     cart.Service
	orders   orders.Service
	activity activity.Service
}

// NewService validates the dependencies and returns a dashboard service.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Users == nil:
		return nil, fmt.Errorf("users service required")
	case params.Cart == nil:
		return nil, fmt.Errorf("cart service required")
	case params.Orders == nil:
		return nil, fmt.Errorf("orders service required")
	case params.Activity == nil:
		return nil, fmt.Errorf("activity service required")
	}
	return &service{
		users:    params.Users,
		cart:     params.Cart,
		orders:   params.Orders,
		activity: params.Activity,
	}, nil
}

func (s *service) Get(ctx context.Context, userID int64) (*Dashboard, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.cart.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	recentOrders, err := s.orders.ListRecent(ctx, userID, recentOrdersLimit)
	if err != nil {
		return nil, err
	}
	recent, err := s.activity.Recent(ctx, userID, recentActivityLimit)
	if err != nil {
		return nil, err
	}
	recs, err := s.activity.Recommendations(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		User:            user,
		Cart:            cart.Summarize(items),
		RecentOrders:    recentOrders,
		RecentActivity:  recent,
		Recommendations: recs,
	}, nil
}
