package gin

import (
	"errors"
	"strconv"

	"github.com/fastorder/server/internal/model"
	"github.com/gin-gonic/gin"
)

var (
	errInvalidCode   = errors.New("code must be a positive integer")
	errInvalidStatus = errors.New("unknown order status")
)

// parseCodeParam reads a positive int64 path parameter.
// On failure it writes a 400 response and returns false.
func parseCodeParam(c *gin.Context, name string) (int64, bool) {
	code, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || code <= 0 {
		badRequest(c, "invalid_"+name, errInvalidCode)
		return 0, false
	}
	return code, true
}

// paymentMethodFromQuery reads the use_card flag; absent means PIX.
func paymentMethodFromQuery(c *gin.Context) (model.PaymentMethod, bool) {
	raw := c.Query("use_card")
	if raw == "" {
		return model.PaymentMethodFromCardFlag(false), true
	}
	useCard, err := strconv.ParseBool(raw)
	if err != nil {
		badRequest(c, "invalid_use_card", err)
		return "", false
	}
	return model.PaymentMethodFromCardFlag(useCard), true
}

func withHandler(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, len(mw)+1)
	return append(append(handlers, mw...), h)
}
