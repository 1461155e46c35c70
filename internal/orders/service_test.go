package orders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubMetrics struct {
	modes []string
}

func (s *stubMetrics) IncOrderCreated(mode string) {
	s.modes = append(s.modes, mode)
}

type fixture struct {
	client  *db.Client
	user    models.User
	phone   models.Product
	charger models.Product
	tablet  models.Product
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.Open(t)
	conn := client.DB()

	electronics := models.Category{Name: "Electronics"}
	require.NoError(t, conn.Create(&electronics).Error)

	f := fixture{client: client, user: models.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "h", Role: enums.RoleBuyer}}
	require.NoError(t, conn.Create(&f.user).Error)

	mk := func(name, price string, stock int) models.Product {
		p := models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock, CategoryID: &electronics.ID}
		require.NoError(t, conn.Create(&p).Error)
		return p
	}
	f.phone = mk("Phone", "100.00", 5)
	f.charger = mk("Charger", "9.99", 10)
	f.tablet = mk("Tablet", "250.00", 2)
	return f
}

func (f fixture) service(t *testing.T, mode enums.PricingMode, metrics *stubMetrics) Service {
	t.Helper()
	params := ServiceParams{
		Repo:                NewRepository(f.client.DB()),
		Tx:                  f.client,
		PricingMode:         mode,
		RecommendationLimit: 5,
	}
	if metrics != nil {
		params.Metrics = metrics
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	return svc
}

func (f fixture) addToCart(t *testing.T, productID int64, qty int) {
	t.Helper()
	svc, err := cart.NewService(cart.ServiceParams{Tx: f.client, Repo: cart.NewRepository(f.client.DB())})
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), cart.AddItemInput{UserID: f.user.ID, ProductID: productID, Quantity: qty})
	require.NoError(t, err)
}

func TestNewServiceValidatesParams(t *testing.T) {
	client := dbtest.Open(t)

	_, err := NewService(ServiceParams{Tx: client})
	require.Error(t, err)
	_, err = NewService(ServiceParams{Repo: NewRepository(client.DB())})
	require.Error(t, err)
	_, err = NewService(ServiceParams{Repo: NewRepository(client.DB()), Tx: client, PricingMode: "free"})
	require.Error(t, err)
}

func TestCreateOrderFromCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	metrics := &stubMetrics{}
	svc := f.service(t, enums.PricingModeCart, metrics)

	f.addToCart(t, f.phone.ID, 2)
	f.addToCart(t, f.charger.ID, 1)
	f.addToCart(t, f.phone.ID, 1)

	bogus := decimal.NewFromInt(1)
	payment := "pay_123"
	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		UserID:      f.user.ID,
		TotalAmount: &bogus,
		Status:      "delivered",
		PaymentID:   &payment,
	})
	require.NoError(t, err)
	require.True(t, order.TotalAmount.Equal(decimal.RequireFromString("309.99")), "got %s", order.TotalAmount)
	require.Equal(t, enums.OrderStatusProcessing, order.Status)
	require.Equal(t, "pay_123", *order.PaymentID)
	require.Len(t, order.Items, 3)
	require.Equal(t, []string{"cart"}, metrics.modes)

	var phone models.Product
	require.NoError(t, f.client.DB().First(&phone, f.phone.ID).Error)
	require.Equal(t, 2, phone.Stock)

	var remaining int64
	require.NoError(t, f.client.DB().Model(&models.CartItem{}).Count(&remaining).Error)
	require.Zero(t, remaining)

	var logs []models.UserLog
	require.NoError(t, f.client.DB().Where("action = ?", enums.UserActionPlaceOrder).Find(&logs).Error)
	require.Len(t, logs, 1)

	var recs []models.Recommendation
	require.NoError(t, f.client.DB().Where("user_id = ?", f.user.ID).Find(&recs).Error)
	require.Len(t, recs, 1)
	require.Equal(t, f.tablet.ID, recs[0].ProductID)

	recent, err := svc.ListRecent(ctx, f.user.ID, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Len(t, recent[0].Items, 3)
	require.Equal(t, order.ID, recent[0].ID)
}

func TestCreateOrderFromCartErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.service(t, enums.PricingModeCart, nil)

	_, err := svc.CreateOrder(ctx, CreateOrderInput{UserID: f.user.ID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "empty cart: %v", err)

	_, err = svc.CreateOrder(ctx, CreateOrderInput{UserID: f.user.ID + 50})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "unknown user: %v", err)

	f.addToCart(t, f.tablet.ID, 2)
	f.addToCart(t, f.tablet.ID, 1)
	_, err = svc.CreateOrder(ctx, CreateOrderInput{UserID: f.user.ID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "insufficient stock: %v", err)

	var tablet models.Product
	require.NoError(t, f.client.DB().First(&tablet, f.tablet.ID).Error)
	require.Equal(t, 2, tablet.Stock, "stock must roll back")

	var cartItems int64
	require.NoError(t, f.client.DB().Model(&models.CartItem{}).Count(&cartItems).Error)
	require.EqualValues(t, 2, cartItems)

	var orders int64
	require.NoError(t, f.client.DB().Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)
}

func TestCreateOrderClientMode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	metrics := &stubMetrics{}
	svc := f.service(t, enums.PricingModeClient, metrics)

	total := decimal.RequireFromString("42.50")
	order, err := svc.CreateOrder(ctx, CreateOrderInput{UserID: f.user.ID, TotalAmount: &total, Status: "shipped"})
	require.NoError(t, err)
	require.True(t, order.TotalAmount.Equal(total))
	require.Equal(t, enums.OrderStatusShipped, order.Status)
	require.Empty(t, order.Items)
	require.Nil(t, order.PaymentID)
	require.Equal(t, []string{"client"}, metrics.modes)

	order, err = svc.CreateOrder(ctx, CreateOrderInput{UserID: f.user.ID, TotalAmount: &total})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusProcessing, order.Status)

	negative := decimal.NewFromInt(-1)
	_, err = svc.CreateOrder(ctx, CreateOrderInput{UserID: f.user.ID, TotalAmount: &negative})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreateOrder(ctx, CreateOrderInput{UserID: f.user.ID, TotalAmount: &total, Status: "lost"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreateOrder(ctx, CreateOrderInput{UserID: f.user.ID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreateOrder(ctx, CreateOrderInput{UserID: f.user.ID + 9, TotalAmount: &total})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListRecentBoundsAndOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.service(t, enums.PricingModeClient, nil)

	var ids []int64
	for i := 0; i < 7; i++ {
		total := decimal.NewFromInt(int64(i))
		order, err := svc.CreateOrder(ctx, CreateOrderInput{UserID: f.user.ID, TotalAmount: &total})
		require.NoError(t, err)
		ids = append(ids, order.ID)
	}

	recent, err := svc.ListRecent(ctx, f.user.ID, 0)
	require.NoError(t, err)
	require.Len(t, recent, DefaultRecentLimit)
	require.Equal(t, ids[6], recent[0].ID)
	require.Equal(t, ids[2], recent[4].ID)
}
