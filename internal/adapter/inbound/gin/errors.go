package gin

import (
	"errors"

	"github.com/fastorder/server/internal/domain/order"
	"github.com/fastorder/server/internal/domain/payment"
	"github.com/fastorder/server/internal/model"
	apperrors "github.com/fastorder/server/internal/utils/errors"
	"github.com/gin-gonic/gin"
)

// toAppError maps domain errors to application errors.
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		return apperrors.NotFound("order_not_found", "Order not found", err)
	case errors.Is(err, order.ErrComboNotFound):
		return apperrors.NotFound("combo_not_found", "Combo item not found on order", err)

	case errors.Is(err, order.ErrIllegalTransition):
		return apperrors.Conflict("illegal_transition", "Status transition not allowed", err)
	case errors.Is(err, order.ErrOrderNotEditable):
		return apperrors.Conflict("order_not_editable", "Order can no longer be edited", err)
	case errors.Is(err, order.ErrInvalidSettlementState):
		return apperrors.Conflict("invalid_settlement_state", "Order is not awaiting payment", err)

	case errors.Is(err, order.ErrEmptyOrder):
		return apperrors.BadRequest("empty_order", "Order must contain at least one item or combo", err)
	case errors.Is(err, order.ErrInvalidComboItem):
		return apperrors.BadRequest("invalid_combo_item", "Invalid combo item", err)
	case errors.Is(err, payment.ErrMalformedCode):
		return apperrors.BadRequest("malformed_payment_code", "Malformed payment code", err)
	case errors.Is(err, payment.ErrMalformedWebhookPayload):
		return apperrors.BadRequest("malformed_webhook_payload", "Webhook payload must carry a string id", err)
	case errors.Is(err, payment.ErrUnsupportedPaymentMethod):
		return apperrors.BadRequest("unsupported_payment_method", "Unsupported payment method", err)

	case errors.Is(err, payment.ErrInvalidWebhookSignature):
		return apperrors.Unauthorized("invalid_webhook_signature", "Webhook signature verification failed", err)

	case errors.Is(err, payment.ErrUnknownPaymentCode):
		return apperrors.Unprocessable("unknown_payment_code", "Payment code does not match a pending payment", err)

	case errors.Is(err, payment.ErrPaymentProviderUnavailable):
		return apperrors.ServiceUnavailable("payment_provider_unavailable", "Payment provider unavailable", err)
	}

	return apperrors.Internal(err)
}

// handleError writes the error response for err.
func handleError(c *gin.Context, err error) {
	appErr := toAppError(err)
	_ = c.Error(err)
	c.JSON(appErr.StatusCode, model.ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: detailsOrNil(appErr.Details),
	})
}

// badRequest writes a 400 for request binding failures.
func badRequest(c *gin.Context, code string, err error) {
	handleError(c, apperrors.BadRequest(code, err.Error(), err))
}

func detailsOrNil(details map[string]any) any {
	if len(details) == 0 {
		return nil
	}
	return details
}
