package orders

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/payment/paymenttest"
	"storefront/internal/shipping"
	"storefront/internal/store"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []models.Order
	err  error
}

func (m *recordingMailer) SendOrderConfirmation(_ context.Context, order models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, order)
	return m.err
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fixture struct {
	svc      *Service
	store    *store.Memory
	provider *paymenttest.Provider
	gateway  *shipping.Gateway
	builder  *checkout.Builder
	mailer   *recordingMailer
	bagA     models.Product
	bagB     models.Product
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	methods, err := config.LoadDeliveryMethods("")
	require.NoError(t, err)

	mem := store.NewMemory()
	provider := paymenttest.New()
	gateway := shipping.NewGateway(provider, "eur")
	mailer := &recordingMailer{}

	bagA := mem.PutProduct(models.Product{Name: "Bag A", Slug: "bag-a", Price: 50, Stock: 5, IsActive: true})
	bagB := mem.PutProduct(models.Product{Name: "Bag B", Slug: "bag-b", Price: 25, SaleEnabled: true, SalePrice: 20, Stock: 5, IsActive: true})

	builder := checkout.NewBuilder(mem, gateway, provider, checkout.Options{
		Currency:   "eur",
		SuccessURL: "https://shop.test/success",
		CancelURL:  "https://shop.test/cart",
		Methods:    methods,
	})

	return fixture{
		svc:      NewService(mem, provider, gateway, mailer, methods),
		store:    mem,
		provider: provider,
		gateway:  gateway,
		builder:  builder,
		mailer:   mailer,
		bagA:     bagA,
		bagB:     bagB,
	}
}

func (f fixture) addRate(t *testing.T, name string, amount float64, method string) models.ShippingRate {
	t.Helper()
	rate, err := f.gateway.Create(context.Background(), shipping.CreateInput{DisplayName: name, Amount: amount, DeliveryMethod: method})
	require.NoError(t, err)
	return rate
}

// paidSession runs a checkout for user and completes it with rate, the way a
// buyer finishing the hosted payment page would.
func (f fixture) paidSession(t *testing.T, user, method string, rate models.ShippingRate, relay *models.Relay) string {
	t.Helper()
	res, err := f.builder.Create(context.Background(), checkout.Request{
		UserID:         user,
		Email:          user + "@example.com",
		DeliveryMethod: method,
		Relay:          relay,
		Items: []checkout.CartItem{
			{ProductID: f.bagA.ID.Hex(), Quantity: 1},
			{ProductID: f.bagB.ID.Hex(), Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.NoError(t, f.provider.Complete(res.SessionID, rate.ID))
	return res.SessionID
}

// materialized returns a stored order for user using the given method.
func (f fixture) materialized(t *testing.T, user, method string) models.Order {
	t.Helper()
	rate := f.addRate(t, method+" rate", 4, method)
	sessionID := f.paidSession(t, user, method, rate, nil)
	order, created, err := f.svc.Materialize(context.Background(), sessionID)
	require.NoError(t, err)
	require.True(t, created)
	return order
}
