package payment

import "errors"

var (
	// ErrMalformedCode is returned when a payment code cannot be parsed or decoded.
	ErrMalformedCode = errors.New("malformed payment code")

	// ErrMalformedWebhookPayload is returned when a webhook body lacks a
	// string-valued id field.
	ErrMalformedWebhookPayload = errors.New("malformed webhook payload")

	// ErrUnknownPaymentCode is returned when a well-formed code does not
	// resolve to a live payment record.
	ErrUnknownPaymentCode = errors.New("unknown payment code")

	// ErrPaymentProviderUnavailable is returned when the acquirer cannot be reached.
	ErrPaymentProviderUnavailable = errors.New("payment provider unavailable")

	// ErrUnsupportedPaymentMethod is returned for methods outside the enumeration.
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")

	// ErrInvalidWebhookSignature is returned when a delivery's signature
	// does not verify against the acquirer's signing secret.
	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")
)
