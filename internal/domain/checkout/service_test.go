package checkout

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lebonpanier/boutique-api/internal/domain/cart"
	"github.com/lebonpanier/boutique-api/internal/domain/money"
	"github.com/lebonpanier/boutique-api/internal/domain/shipping"
)

// --- Mock implementations ---

type mockCartRepo struct {
	carts map[string]*cart.Cart
}

func (m *mockCartRepo) Get(_ context.Context, id string) (*cart.Cart, error) {
	c, ok := m.carts[id]
	if !ok {
		return nil, cart.ErrNotFound
	}
	return c, nil
}

func (m *mockCartRepo) GetByUser(_ context.Context, _ string) (*cart.Cart, error) {
	return nil, cart.ErrNotFound
}

func (m *mockCartRepo) Save(_ context.Context, _ *cart.Cart) error { return nil }

func (m *mockCartRepo) Delete(_ context.Context, _ string) error { return nil }

type mockShippingRepo struct {
	methods map[string]shipping.Method
}

func (m *mockShippingRepo) List(_ context.Context) ([]shipping.Method, error) { return nil, nil }

func (m *mockShippingRepo) GetByID(_ context.Context, id string) (*shipping.Method, error) {
	method, ok := m.methods[id]
	if !ok {
		return nil, shipping.ErrNotFound
	}
	return &method, nil
}

type mockGateway struct {
	session    *Session
	err        error
	lastParams SessionParams
	calls      int
}

func (m *mockGateway) CreateSession(_ context.Context, p SessionParams) (*Session, error) {
	m.calls++
	m.lastParams = p
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

type mockSessionStore struct {
	saved []SessionMetadata
	err   error
}

func (m *mockSessionStore) Save(_ context.Context, meta SessionMetadata) error {
	m.saved = append(m.saved, meta)
	return m.err
}

type mockAddressStore struct {
	saved map[AddressKind]Address
	err   error
}

func (m *mockAddressStore) Save(_ context.Context, _ string, kind AddressKind, a Address) error {
	if m.err != nil {
		return m.err
	}
	if m.saved == nil {
		m.saved = make(map[AddressKind]Address)
	}
	m.saved[kind] = a
	return nil
}

// --- Helpers ---

type testEnv struct {
	svc      *Service
	carts    *mockCartRepo
	gateway  *mockGateway
	sessions *mockSessionStore
	addrs    *mockAddressStore
}

func newTestEnv(t *testing.T, carts ...*cart.Cart) *testEnv {
	t.Helper()

	byID := make(map[string]*cart.Cart, len(carts))
	repo := newProductRepo()
	for _, c := range carts {
		byID[c.ID()] = c
		for _, it := range c.Items() {
			repo.byID[it.Product.ID] = it.Product
		}
	}

	cartRepo := &mockCartRepo{carts: byID}
	gateway := &mockGateway{session: &Session{ID: "cs_test_123", URL: "https://checkout.stripe.com/pay/cs_test_123"}}
	sessions := &mockSessionStore{}
	addrs := &mockAddressStore{}

	standard, err := money.New(decimal.RequireFromString("4.99"), "EUR")
	require.NoError(t, err)

	svc := NewService(
		cartRepo,
		NewProductValidator(repo),
		newTestAddressValidator(),
		&mockShippingRepo{methods: map[string]shipping.Method{
			"standard": {ID: "standard", Name: "Livraison standard", Price: standard, Active: true},
		}},
		gateway,
		sessions,
		addrs,
		zap.NewNop(),
	)
	return &testEnv{svc: svc, carts: cartRepo, gateway: gateway, sessions: sessions, addrs: addrs}
}

func newCheckoutCart(t *testing.T) *cart.Cart {
	t.Helper()
	p := newCatalogProduct(t, "p1", "10.00", 10)
	q, err := money.NewQuantity(2)
	require.NoError(t, err)
	c, err := cart.New("c1", "").AddItem("p1", p, q)
	require.NoError(t, err)
	return c
}

func validRequest() Request {
	shippingAddr := validAddress()
	billingAddr := validAddress()
	billingAddr.Email = "marie.dupont@example.fr"
	return Request{
		CartID:           "c1",
		ShippingAddress:  &shippingAddr,
		BillingAddress:   &billingAddr,
		ShippingMethodID: "standard",
	}
}

// --- Tests ---

func TestCheckout_OK(t *testing.T) {
	env := newTestEnv(t, newCheckoutCart(t))

	res, err := env.svc.Checkout(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "cs_test_123", res.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_123", res.SessionURL)

	// The gateway got the cart reference and the validated lines.
	assert.Equal(t, "c1", env.gateway.lastParams.CartID)
	require.Len(t, env.gateway.lastParams.Lines, 1)
	assert.Equal(t, "marie.dupont@example.fr", env.gateway.lastParams.CustomerEmail)

	// Metadata was persisted with items total plus shipping.
	require.Len(t, env.sessions.saved, 1)
	want, err := money.New(decimal.RequireFromString("24.99"), "EUR")
	require.NoError(t, err)
	assert.True(t, env.sessions.saved[0].Amount.Equal(want))
}

func TestCheckout_MissingCartID(t *testing.T) {
	env := newTestEnv(t)
	req := validRequest()
	req.CartID = ""

	_, err := env.svc.Checkout(context.Background(), req)

	var bErr *BusinessError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeInvalidCartData, bErr.Code)
}

func TestCheckout_MissingAddresses(t *testing.T) {
	env := newTestEnv(t, newCheckoutCart(t))
	req := validRequest()
	req.BillingAddress = nil

	_, err := env.svc.Checkout(context.Background(), req)

	var bErr *BusinessError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeInvalidAddress, bErr.Code)
	assert.Equal(t, "Les adresses de livraison et facturation sont requises", bErr.Message)
	assert.Zero(t, env.gateway.calls)
}

func TestCheckout_GuestNeedsEmail(t *testing.T) {
	env := newTestEnv(t, newCheckoutCart(t))
	req := validRequest()
	req.BillingAddress.Email = ""

	_, err := env.svc.Checkout(context.Background(), req)

	var bErr *BusinessError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeInvalidAddress, bErr.Code)
	assert.Equal(t, "Une adresse e-mail est requise pour commander en tant qu'invité", bErr.Message)
}

func TestCheckout_UnknownCart(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Checkout(context.Background(), validRequest())

	var bErr *BusinessError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeInvalidCartData, bErr.Code)
	assert.Equal(t, "Panier introuvable", bErr.Message)
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := newTestEnv(t, cart.New("c1", ""))

	_, err := env.svc.Checkout(context.Background(), validRequest())

	var bErr *BusinessError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeEmptyCart, bErr.Code)
}

func TestCheckout_UnknownShippingMethod(t *testing.T) {
	env := newTestEnv(t, newCheckoutCart(t))
	req := validRequest()
	req.ShippingMethodID = "drone"

	_, err := env.svc.Checkout(context.Background(), req)

	var bErr *BusinessError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeInvalidShippingMethod, bErr.Code)
	assert.Zero(t, env.gateway.calls)
}

func TestCheckout_InvalidAddress(t *testing.T) {
	env := newTestEnv(t, newCheckoutCart(t))
	req := validRequest()
	req.ShippingAddress.PostalCode = "ABC"

	_, err := env.svc.Checkout(context.Background(), req)

	var bErr *BusinessError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeInvalidAddress, bErr.Code)
	assert.Zero(t, env.gateway.calls)
}

func TestCheckout_GatewayFailure(t *testing.T) {
	env := newTestEnv(t, newCheckoutCart(t))
	env.gateway.err = errors.New("stripe unreachable")

	_, err := env.svc.Checkout(context.Background(), validRequest())

	var bErr *BusinessError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeSessionCreationFailed, bErr.Code)
	assert.Equal(t, "La création de la session de paiement a échoué. Veuillez réessayer.", bErr.Message)
	assert.Empty(t, env.sessions.saved)
}

func TestCheckout_MetadataSaveIsBestEffort(t *testing.T) {
	env := newTestEnv(t, newCheckoutCart(t))
	env.sessions.err = errors.New("db down")

	res, err := env.svc.Checkout(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", res.SessionID)
}

func TestCheckout_SavesAuthenticatedUserAddresses(t *testing.T) {
	p := newCatalogProduct(t, "p1", "10.00", 10)
	q, err := money.NewQuantity(1)
	require.NoError(t, err)
	c, err := cart.New("c1", "u1").AddItem("p1", p, q)
	require.NoError(t, err)

	env := newTestEnv(t, c)
	req := validRequest()
	req.UserID = "u1"

	_, err = env.svc.Checkout(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, env.addrs.saved, 2)
	assert.Equal(t, "Lyon", env.addrs.saved[AddressShipping].City)
	assert.Equal(t, "Lyon", env.addrs.saved[AddressBilling].City)
}

func TestCheckout_GuestAddressesNotPersisted(t *testing.T) {
	env := newTestEnv(t, newCheckoutCart(t))

	_, err := env.svc.Checkout(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Empty(t, env.addrs.saved)
}
