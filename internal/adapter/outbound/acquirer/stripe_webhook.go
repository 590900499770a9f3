package acquirer

import (
	"fmt"

	"github.com/fastorder/server/internal/domain/payment"
	"github.com/fastorder/server/internal/port/outbound"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeSignatureHeader carries the HMAC Stripe attaches to each delivery.
const StripeSignatureHeader = "Stripe-Signature"

// stripeWebhookVerifier implements outbound.WebhookVerifierPort.
type stripeWebhookVerifier struct {
	secret string
}

// NewStripeWebhookVerifier creates a verifier for the endpoint signing secret.
func NewStripeWebhookVerifier(secret string) outbound.WebhookVerifierPort {
	return &stripeWebhookVerifier{secret: secret}
}

func (v *stripeWebhookVerifier) Header() string {
	return StripeSignatureHeader
}

// Verify checks the signature and its timestamp tolerance. The payload is not
// decoded as a Stripe event, so deliveries keep the plain {"id": ...} shape.
func (v *stripeWebhookVerifier) Verify(payload []byte, signature string) error {
	if err := webhook.ValidatePayload(payload, signature, v.secret); err != nil {
		return fmt.Errorf("%w: %v", payment.ErrInvalidWebhookSignature, err)
	}
	return nil
}

// Compile-time check
var _ outbound.WebhookVerifierPort = (*stripeWebhookVerifier)(nil)
