package gin

import (
	"net/http"

	"github.com/fastorder/server/internal/domain/order"
	"github.com/fastorder/server/internal/port/inbound"
	"github.com/gin-gonic/gin"
)

// boardHandler implements inbound.BoardHttpPort.
type boardHandler struct {
	orderDomain order.OrderDomain
}

// NewBoardHandler creates a new board HTTP handler.
func NewBoardHandler(orderDomain order.OrderDomain) inbound.BoardHttpPort {
	return &boardHandler{orderDomain: orderDomain}
}

// RegisterBoardRoutes registers kitchen and monitor routes. The kitchen
// queue takes the staff middleware; the monitor is public.
func RegisterBoardRoutes(r *gin.RouterGroup, h inbound.BoardHttpPort, staff ...gin.HandlerFunc) {
	r.GET("/kitchen/orders", withHandler(staff, h.KitchenQueue)...)
	r.GET("/monitor/orders", h.MonitorBoard)
}

// KitchenQueue lists confirmed and in-preparation orders, oldest first.
//
//	@Summary	Kitchen queue
//	@Tags		Boards
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Router		/kitchen/orders [get]
func (h *boardHandler) KitchenQueue(c *gin.Context) {
	orders, err := h.orderDomain.ListKitchenQueue(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// MonitorBoard lists ready, in-preparation and confirmed orders.
//
//	@Summary	Customer monitor
//	@Tags		Boards
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Router		/monitor/orders [get]
func (h *boardHandler) MonitorBoard(c *gin.Context) {
	orders, err := h.orderDomain.ListMonitorBoard(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Compile-time check
var _ inbound.BoardHttpPort = (*boardHandler)(nil)
