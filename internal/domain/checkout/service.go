package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/lebonpanier/boutique-api/internal/domain/cart"
	"github.com/lebonpanier/boutique-api/internal/domain/money"
	"github.com/lebonpanier/boutique-api/internal/domain/shipping"
)

// PaymentGateway creates hosted payment sessions at the payment processor.
type PaymentGateway interface {
	CreateSession(ctx context.Context, p SessionParams) (*Session, error)
}

// SessionParams is everything the gateway needs to build a payment session.
// CartID travels as the session's client reference: the webhook reads it back
// to materialize the order.
type SessionParams struct {
	CartID          string
	UserID          string
	CustomerEmail   string
	Lines           []ValidatedLine
	ShippingMethod  shipping.Method
	ShippingAddress Address
	BillingAddress  Address
}

// Session is a created payment session: the id to reconcile with and the
// hosted URL to redirect the shopper to.
type Session struct {
	ID  string
	URL string
}

// SessionMetadata associates a payment session with the cart and addresses
// it was created for. Guest addresses live only here; they are never written
// to the addresses table.
type SessionMetadata struct {
	SessionID        string
	CartID           string
	UserID           string
	Amount           money.Money
	ShippingMethodID string
	ShippingAddress  Address
	BillingAddress   Address
	CreatedAt        time.Time
}

// SessionMetadataStore persists session metadata. The save is best-effort:
// it is not transactionally linked to session creation.
type SessionMetadataStore interface {
	Save(ctx context.Context, m SessionMetadata) error
}

// AddressKind distinguishes the two addresses collected at checkout.
type AddressKind string

const (
	AddressShipping AddressKind = "shipping"
	AddressBilling  AddressKind = "billing"
)

// AddressStore persists addresses for authenticated users. Guests never
// reach it.
type AddressStore interface {
	Save(ctx context.Context, userID string, kind AddressKind, a Address) error
}

// Request is the input of a checkout. UserID empty means guest checkout, in
// which case the billing address must carry an email.
type Request struct {
	CartID           string
	UserID           string
	ShippingAddress  *Address
	BillingAddress   *Address
	ShippingMethodID string
}

// Result is the successful outcome: where to send the shopper.
type Result struct {
	SessionID  string
	SessionURL string
}

// Service orchestrates a checkout: request validation, fresh product and
// address validation, payment session creation, and metadata bookkeeping.
// Nothing here is retried; failures propagate to the caller.
type Service struct {
	carts     cart.Repository
	products  *ProductValidator
	addresses *AddressValidator
	shipping  shipping.Repository
	gateway   PaymentGateway
	sessions  SessionMetadataStore
	userAddrs AddressStore
	lg        *zap.Logger
}

// NewService creates a checkout Service with the required collaborators.
func NewService(
	carts cart.Repository,
	products *ProductValidator,
	addresses *AddressValidator,
	shippingMethods shipping.Repository,
	gateway PaymentGateway,
	sessions SessionMetadataStore,
	userAddrs AddressStore,
	lg *zap.Logger,
) *Service {
	return &Service{
		carts:     carts,
		products:  products,
		addresses: addresses,
		shipping:  shippingMethods,
		gateway:   gateway,
		sessions:  sessions,
		userAddrs: userAddrs,
		lg:        lg,
	}
}

// Checkout runs the full orchestration. Business failures come back as
// *BusinessError with a French message; anything else is infrastructural.
func (s *Service) Checkout(ctx context.Context, req Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// Load the cart. A missing cart and an empty cart are distinct failures.
	c, err := s.carts.Get(ctx, req.CartID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return nil, businessErr(CodeInvalidCartData, "Panier introuvable")
		}
		return nil, errors.Wrap(err, "get cart")
	}
	if c.IsEmpty() {
		return nil, businessErr(CodeEmptyCart, "Le panier est vide")
	}

	// Re-validate every line against the live catalog.
	lines := make([]Line, 0, len(c.Items()))
	for _, it := range c.Items() {
		lines = append(lines, Line{ProductID: it.Product.ID, Quantity: it.Quantity.Int()})
	}
	validated, total, err := s.products.Validate(ctx, lines)
	if err != nil {
		return nil, err
	}

	// Resolve the shipping method.
	method, err := s.shipping.GetByID(ctx, req.ShippingMethodID)
	if err != nil {
		if errors.Is(err, shipping.ErrNotFound) {
			return nil, businessErr(CodeInvalidShippingMethod,
				"Le mode de livraison sélectionné est invalide")
		}
		return nil, errors.Wrap(err, "get shipping method")
	}

	// Validate both addresses.
	if err := s.addresses.Validate(*req.ShippingAddress); err != nil {
		return nil, err
	}
	if err := s.addresses.Validate(*req.BillingAddress); err != nil {
		return nil, err
	}

	// Authenticated users get their addresses persisted; guest addresses are
	// carried only in the session metadata.
	if req.UserID != "" {
		if err := s.userAddrs.Save(ctx, req.UserID, AddressShipping, *req.ShippingAddress); err != nil {
			return nil, errors.Wrap(err, "save shipping address")
		}
		if err := s.userAddrs.Save(ctx, req.UserID, AddressBilling, *req.BillingAddress); err != nil {
			return nil, errors.Wrap(err, "save billing address")
		}
	}

	// Create the hosted payment session. Not retried: the shopper just
	// submits the checkout again.
	session, err := s.gateway.CreateSession(ctx, SessionParams{
		CartID:          req.CartID,
		UserID:          req.UserID,
		CustomerEmail:   req.BillingAddress.Email,
		Lines:           validated,
		ShippingMethod:  *method,
		ShippingAddress: *req.ShippingAddress,
		BillingAddress:  *req.BillingAddress,
	})
	if err != nil {
		s.lg.Error("payment session creation failed",
			zap.String("cart_id", req.CartID),
			zap.Error(err),
		)
		return nil, businessErr(CodeSessionCreationFailed,
			"La création de la session de paiement a échoué. Veuillez réessayer.")
	}

	amount, err := total.Add(method.Price)
	if err != nil {
		return nil, errors.Wrap(err, "add shipping price")
	}

	// Best-effort metadata association; the session already exists at the
	// processor, so a failed save must not fail the checkout.
	meta := SessionMetadata{
		SessionID:        session.ID,
		CartID:           req.CartID,
		UserID:           req.UserID,
		Amount:           amount,
		ShippingMethodID: method.ID,
		ShippingAddress:  *req.ShippingAddress,
		BillingAddress:   *req.BillingAddress,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.sessions.Save(ctx, meta); err != nil {
		s.lg.Warn("failed to save checkout session metadata",
			zap.String("session_id", session.ID),
			zap.String("cart_id", req.CartID),
			zap.Error(err),
		)
	}

	return &Result{SessionID: session.ID, SessionURL: session.URL}, nil
}

// validateRequest checks the request shape, failing fast on the first
// missing field.
func validateRequest(req Request) error {
	if req.CartID == "" {
		return businessErr(CodeInvalidCartData, "L'identifiant du panier est requis")
	}
	if req.ShippingAddress == nil || req.BillingAddress == nil {
		return businessErr(CodeInvalidAddress,
			"Les adresses de livraison et facturation sont requises")
	}
	if req.ShippingMethodID == "" {
		return businessErr(CodeInvalidShippingMethod,
			"Le mode de livraison est requis")
	}
	if req.UserID == "" && req.BillingAddress.Email == "" {
		return businessErr(CodeInvalidAddress,
			"Une adresse e-mail est requise pour commander en tant qu'invité")
	}
	return nil
}
