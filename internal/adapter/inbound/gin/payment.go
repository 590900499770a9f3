package gin

import (
	"io"
	"net/http"

	"github.com/fastorder/server/internal/domain/order"
	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/port/inbound"
	"github.com/fastorder/server/internal/port/outbound"
	"github.com/gin-gonic/gin"
)

// maxWebhookBody bounds the webhook payload read into memory.
const maxWebhookBody = 1 << 20

// paymentHandler implements inbound.PaymentHttpPort.
type paymentHandler struct {
	orderDomain order.OrderDomain
	verifiers   map[model.PaymentMethod]outbound.WebhookVerifierPort
}

// PaymentHandlerOption configures a payment handler.
type PaymentHandlerOption func(*paymentHandler)

// WithWebhookVerifier requires deliveries for method to pass v before settling.
func WithWebhookVerifier(method model.PaymentMethod, v outbound.WebhookVerifierPort) PaymentHandlerOption {
	return func(h *paymentHandler) {
		h.verifiers[method] = v
	}
}

// NewPaymentHandler creates a new payment HTTP handler.
func NewPaymentHandler(orderDomain order.OrderDomain, opts ...PaymentHandlerOption) inbound.PaymentHttpPort {
	h := &paymentHandler{
		orderDomain: orderDomain,
		verifiers:   make(map[model.PaymentMethod]outbound.WebhookVerifierPort),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterPaymentRoutes registers the confirm route. Extra middleware
// (idempotency) applies to it only.
func RegisterPaymentRoutes(r *gin.RouterGroup, h inbound.PaymentHttpPort, mw ...gin.HandlerFunc) {
	r.POST("/orders/:code/confirm", withHandler(mw, h.ConfirmOrder)...)
}

// RegisterWebhookRoutes registers the acquirer webhook route.
func RegisterWebhookRoutes(r *gin.RouterGroup, h inbound.PaymentHttpPort, mw ...gin.HandlerFunc) {
	r.POST("/webhooks/payment", withHandler(mw, h.PaymentWebhook)...)
}

// ConfirmOrder requests a payment code for the order.
//
//	@Summary		Confirm order
//	@Description	Generates a payment code and moves the order to awaiting_payment
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			code		path		int						true	"Order code"
//	@Param			use_card	query		bool					false	"Pay by credit card instead of PIX"
//	@Param			request		body		model.PaymentDetails	false	"Payer details"
//	@Success		200			{object}	model.PaymentReceipt
//	@Failure		404			{object}	model.ErrorResponse
//	@Failure		409			{object}	model.ErrorResponse
//	@Failure		503			{object}	model.ErrorResponse
//	@Router			/orders/{code}/confirm [post]
func (h *paymentHandler) ConfirmOrder(c *gin.Context) {
	code, ok := parseCodeParam(c, "code")
	if !ok {
		return
	}
	method, ok := paymentMethodFromQuery(c)
	if !ok {
		return
	}

	var details model.PaymentDetails
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&details); err != nil && err != io.EOF {
			badRequest(c, "invalid_request", err)
			return
		}
	}

	receipt, err := h.orderDomain.BeginPaymentConfirmation(c.Request.Context(), code, &details, method)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// PaymentWebhook settles a payment reported by the acquirer.
//
//	@Summary	Payment webhook
//	@Tags		Payments
//	@Accept		json
//	@Produce	json
//	@Param		use_card	query		bool	false	"Delivery is for a credit card payment"
//	@Success	200			{object}	model.WebhookSettlementResponse
//	@Failure	400			{object}	model.ErrorResponse
//	@Failure	401			{object}	model.ErrorResponse
//	@Failure	409			{object}	model.ErrorResponse
//	@Failure	422			{object}	model.ErrorResponse
//	@Router		/webhooks/payment [post]
func (h *paymentHandler) PaymentWebhook(c *gin.Context) {
	method, ok := paymentMethodFromQuery(c)
	if !ok {
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		badRequest(c, "invalid_payload", err)
		return
	}

	if v, ok := h.verifiers[method]; ok {
		if err := v.Verify(payload, c.GetHeader(v.Header())); err != nil {
			handleError(c, err)
			return
		}
	}

	orderCode, err := h.orderDomain.HandlePaymentWebhook(c.Request.Context(), payload, method)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.WebhookSettlementResponse{OrderCode: orderCode})
}

// Compile-time check
var _ inbound.PaymentHttpPort = (*paymentHandler)(nil)
