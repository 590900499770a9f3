package gin

import (
	"net/http"

	"github.com/fastorder/server/internal/domain/order"
	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/port/inbound"
	"github.com/fastorder/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
)

// orderHandler implements inbound.OrderHttpPort.
type orderHandler struct {
	orderDomain order.OrderDomain
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(orderDomain order.OrderDomain) inbound.OrderHttpPort {
	return &orderHandler{orderDomain: orderDomain}
}

// RegisterOrderRoutes registers order routes. staff middleware guards the
// kitchen-side transitions.
func RegisterOrderRoutes(r *gin.RouterGroup, h inbound.OrderHttpPort, staff ...gin.HandlerFunc) {
	orders := r.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
		orders.GET("/:code", h.GetOrder)
		orders.GET("/:code/status", h.GetOrderStatus)
		orders.PUT("/:code/status", withHandler(staff, h.SetOrderStatus)...)
		orders.POST("/:code/cancel", h.CancelOrder)
		orders.POST("/:code/finalize", withHandler(staff, h.FinalizeOrder)...)
		orders.PUT("/:code/combos", h.AddComboItem)
		orders.DELETE("/:code/combos/:comboCode", h.RemoveComboItem)
	}
}

type listOrdersQuery struct {
	model.PageQuery
	Status   string `form:"status"`
	ClientID string `form:"client_id"`
}

// ListOrders lists orders, newest first.
//
//	@Summary	List orders
//	@Tags		Orders
//	@Produce	json
//	@Param		status		query		string	false	"Filter by status"
//	@Param		client_id	query		string	false	"Filter by client"
//	@Param		page		query		int		false	"Page"
//	@Param		page_size	query		int		false	"Page size"
//	@Success	200			{object}	model.Page[model.OrderResponse]
//	@Failure	400			{object}	model.ErrorResponse
//	@Router		/orders [get]
func (h *orderHandler) ListOrders(c *gin.Context) {
	var q listOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid_query", err)
		return
	}
	q.Normalize()

	filter := &model.OrderFilter{}
	if q.Status != "" {
		status := model.OrderStatus(q.Status)
		if !status.IsValid() {
			badRequest(c, "invalid_status", errInvalidStatus)
			return
		}
		filter.Status = &status
	}
	if q.ClientID != "" {
		filter.ClientID = &q.ClientID
	}

	orders, total, err := h.orderDomain.ListOrders(c.Request.Context(), filter, q.Page, q.PageSize)
	if err != nil {
		handleError(c, err)
		return
	}

	data := make([]*model.OrderResponse, len(orders))
	for i, o := range orders {
		data[i] = o.ToResponse()
	}
	c.JSON(http.StatusOK, model.NewPage(data, total, q.PageQuery))
}

// GetOrder returns a single order.
//
//	@Summary	Get order
//	@Tags		Orders
//	@Produce	json
//	@Param		code	path		int	true	"Order code"
//	@Success	200		{object}	model.OrderResponse
//	@Failure	404		{object}	model.ErrorResponse
//	@Router		/orders/{code} [get]
func (h *orderHandler) GetOrder(c *gin.Context) {
	code, ok := parseCodeParam(c, "code")
	if !ok {
		return
	}

	o, err := h.orderDomain.GetOrder(c.Request.Context(), code)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, o.ToResponse())
}

func (h *orderHandler) GetOrderStatus(c *gin.Context) {
	code, ok := parseCodeParam(c, "code")
	if !ok {
		return
	}

	status, err := h.orderDomain.GetStatus(c.Request.Context(), code)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.OrderStatusResponse{Code: code, Status: status})
}

// CreateOrder creates an order. A bearer token, when present, identifies the client.
//
//	@Summary	Create order
//	@Tags		Orders
//	@Accept		json
//	@Produce	json
//	@Param		request	body		model.CreateOrderRequest	true	"Order"
//	@Success	201		{object}	model.OrderResponse
//	@Failure	400		{object}	model.ErrorResponse
//	@Router		/orders [post]
func (h *orderHandler) CreateOrder(c *gin.Context) {
	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", err)
		return
	}

	o, err := h.orderDomain.CreateOrder(c.Request.Context(), middleware.GetClientID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, o.ToResponse())
}

func (h *orderHandler) CancelOrder(c *gin.Context) {
	code, ok := parseCodeParam(c, "code")
	if !ok {
		return
	}

	o, err := h.orderDomain.Cancel(c.Request.Context(), code)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, o.ToResponse())
}

// SetOrderStatus moves an order one step forward, or cancels it.
//
//	@Summary	Set order status
//	@Tags		Orders
//	@Accept		json
//	@Produce	json
//	@Param		code	path		int						true	"Order code"
//	@Param		request	body		model.SetStatusRequest	true	"Target status"
//	@Success	200		{object}	model.OrderResponse
//	@Failure	404		{object}	model.ErrorResponse
//	@Failure	409		{object}	model.ErrorResponse
//	@Router		/orders/{code}/status [put]
func (h *orderHandler) SetOrderStatus(c *gin.Context) {
	code, ok := parseCodeParam(c, "code")
	if !ok {
		return
	}

	var req model.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", err)
		return
	}

	o, err := h.orderDomain.SetStatus(c.Request.Context(), code, req.Status)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, o.ToResponse())
}

func (h *orderHandler) FinalizeOrder(c *gin.Context) {
	code, ok := parseCodeParam(c, "code")
	if !ok {
		return
	}

	o, err := h.orderDomain.Finalize(c.Request.Context(), code)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, o.ToResponse())
}

func (h *orderHandler) AddComboItem(c *gin.Context) {
	code, ok := parseCodeParam(c, "code")
	if !ok {
		return
	}

	var req model.ComboItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", err)
		return
	}

	o, err := h.orderDomain.AddComboItem(c.Request.Context(), code, req.ToComboItem())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, o.ToResponse())
}

func (h *orderHandler) RemoveComboItem(c *gin.Context) {
	code, ok := parseCodeParam(c, "code")
	if !ok {
		return
	}
	comboCode, ok := parseCodeParam(c, "comboCode")
	if !ok {
		return
	}

	o, err := h.orderDomain.RemoveComboItem(c.Request.Context(), code, comboCode)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, o.ToResponse())
}

// Compile-time check
var _ inbound.OrderHttpPort = (*orderHandler)(nil)
