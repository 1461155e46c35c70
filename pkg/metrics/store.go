package metrics

import "github.com/prometheus/client_golang/prometheus"

// StoreMetrics counts storefront business events.
type StoreMetrics struct {
	ordersCreated  *prometheus.CounterVec
	cartItemsAdded prometheus.Counter
	registrations  prometheus.Counter
	loginFailures  prometheus.Counter
}

// NewStoreMetrics registers the storefront counters on the provided registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders placed, by pricing mode.",
	}, []string{"pricing_mode"})
	cartItemsAdded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_items_added_total",
		Help: "Cart lines added.",
	})
	registrations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "user_registrations_total",
		Help: "Accounts registered.",
	})
	loginFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "login_failures_total",
		Help: "Rejected login attempts.",
	})
	reg.MustRegister(ordersCreated, cartItemsAdded, registrations, loginFailures)
	return &StoreMetrics{
		ordersCreated:  ordersCreated,
		cartItemsAdded: cartItemsAdded,
		registrations:  registrations,
		loginFailures:  loginFailures,
	}
}

func (s *StoreMetrics) IncOrderCreated(pricingMode string) {
	if s == nil || s.ordersCreated == nil {
		return
	}
	s.ordersCreated.WithLabelValues(normalizeLabel(pricingMode)).Inc()
}

func (s *StoreMetrics) IncCartItemAdded() {
	if s == nil || s.cartItemsAdded == nil {
		return
	}
	s.cartItemsAdded.Inc()
}

func (s *StoreMetrics) IncRegistration() {
	if s == nil || s.registrations == nil {
		return
	}
	s.registrations.Inc()
}

func (s *StoreMetrics) IncLoginFailure() {
	if s == nil || s.loginFailures == nil {
		return
	}
	s.loginFailures.Inc()
}
