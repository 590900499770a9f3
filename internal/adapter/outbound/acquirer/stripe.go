package acquirer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fastorder/server/internal/domain/payment"
	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/port/outbound"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// Metadata keys written on every payment intent.
const (
	metadataOrderCode = "order_code"
	metadataMethod    = "payment_method"
)

// StripeConfig holds Stripe configuration.
type StripeConfig struct {
	APIKey string
	// Backend overrides the API backend; nil uses the default Stripe endpoint.
	Backend stripe.Backend
}

// stripeGateway implements outbound.PaymentGatewayPort with payment intents.
type stripeGateway struct {
	intents *paymentintent.Client
}

// NewStripeGateway creates a Stripe-backed payment gateway.
func NewStripeGateway(config *StripeConfig) outbound.PaymentGatewayPort {
	backend := config.Backend
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &stripeGateway{
		intents: &paymentintent.Client{B: backend, Key: config.APIKey},
	}
}

func (g *stripeGateway) Name() string {
	return "stripe"
}

func (g *stripeGateway) InitiatePayment(ctx context.Context, order *model.Order, amount int64, method model.PaymentMethod) (*model.ProviderPayment, error) {
	currency := order.Currency
	if currency == "" {
		currency = "brl"
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{stripeMethodType(method)}),
	}
	params.Context = ctx
	params.AddMetadata(metadataOrderCode, strconv.FormatInt(order.Code, 10))
	params.AddMetadata(metadataMethod, method.String())

	pi, err := g.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	return &model.ProviderPayment{
		Reference:    pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

func (g *stripeGateway) ResolveProviderReference(ctx context.Context, reference string, method model.PaymentMethod) (int64, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.intents.Get(reference, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return 0, fmt.Errorf("%w: %s", payment.ErrUnknownPaymentCode, reference)
		}
		return 0, fmt.Errorf("get payment intent: %w", err)
	}

	if pi.Metadata[metadataMethod] != method.String() {
		return 0, fmt.Errorf("%w: intent %s was not issued for %s", payment.ErrUnknownPaymentCode, pi.ID, method)
	}
	code, err := strconv.ParseInt(pi.Metadata[metadataOrderCode], 10, 64)
	if err != nil || code <= 0 {
		return 0, fmt.Errorf("%w: intent %s has no order code", payment.ErrUnknownPaymentCode, pi.ID)
	}
	// Only a captured intent settles an order.
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return 0, fmt.Errorf("%w: intent %s is %s", payment.ErrUnknownPaymentCode, pi.ID, pi.Status)
	}
	return code, nil
}

func stripeMethodType(method model.PaymentMethod) string {
	if method == model.PaymentMethodPix {
		return "pix"
	}
	return "card"
}

// Compile-time check
var _ outbound.PaymentGatewayPort = (*stripeGateway)(nil)
