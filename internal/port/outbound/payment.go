package outbound

import (
	"context"
	"time"

	"github.com/fastorder/server/internal/model"
)

// PaymentGatewayPort abstracts an external payment acquirer.
type PaymentGatewayPort interface {
	// Name returns the gateway name.
	Name() string

	// InitiatePayment starts a charge for the order and returns the provider reference.
	InitiatePayment(ctx context.Context, order *model.Order, amount int64, method model.PaymentMethod) (*model.ProviderPayment, error)

	// ResolveProviderReference maps a provider reference back to an order code.
	ResolveProviderReference(ctx context.Context, reference string, method model.PaymentMethod) (int64, error)
}

// WebhookArchivePort stores raw webhook deliveries.
type WebhookArchivePort interface {
	// Archive stores the payload and returns its object key.
	Archive(ctx context.Context, method model.PaymentMethod, payload []byte) (string, error)
}

// WebhookVerifierPort checks that a delivery was signed by the acquirer.
type WebhookVerifierPort interface {
	// Header names the request header carrying the signature.
	Header() string

	// Verify checks signature against the raw payload.
	Verify(payload []byte, signature string) error
}

// GatewayMetricsPort receives acquirer call observations.
type GatewayMetricsPort interface {
	RecordGatewayCall(gateway, operation, result string, duration time.Duration)
	SetGatewayBreakerState(gateway string, state int)
}
