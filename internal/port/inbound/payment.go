package inbound

import "github.com/gin-gonic/gin"

// PaymentHttpPort defines HTTP handler interface for payment confirmation.
type PaymentHttpPort interface {
	// ConfirmOrder handles POST /orders/:code/confirm
	ConfirmOrder(c *gin.Context)

	// PaymentWebhook handles POST /webhooks/payment
	PaymentWebhook(c *gin.Context)
}
