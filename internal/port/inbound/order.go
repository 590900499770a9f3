package inbound

import "github.com/gin-gonic/gin"

// OrderHttpPort defines HTTP handler interface for order operations.
type OrderHttpPort interface {
	// ListOrders handles GET /orders
	ListOrders(c *gin.Context)

	// GetOrder handles GET /orders/:code
	GetOrder(c *gin.Context)

	// GetOrderStatus handles GET /orders/:code/status
	GetOrderStatus(c *gin.Context)

	// CreateOrder handles POST /orders
	CreateOrder(c *gin.Context)

	// CancelOrder handles POST /orders/:code/cancel
	CancelOrder(c *gin.Context)

	// SetOrderStatus handles PUT /orders/:code/status
	SetOrderStatus(c *gin.Context)

	// FinalizeOrder handles POST /orders/:code/finalize
	FinalizeOrder(c *gin.Context)

	// AddComboItem handles PUT /orders/:code/combos
	AddComboItem(c *gin.Context)

	// RemoveComboItem handles DELETE /orders/:code/combos/:comboCode
	RemoveComboItem(c *gin.Context)
}

// BoardHttpPort defines HTTP handler interface for the kitchen and monitor boards.
type BoardHttpPort interface {
	// KitchenQueue handles GET /kitchen/orders
	KitchenQueue(c *gin.Context)

	// MonitorBoard handles GET /monitor/orders
	MonitorBoard(c *gin.Context)
}
