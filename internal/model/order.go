package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// OrderStatus represents the status of an order.
type OrderStatus string

const (
	OrderStatusCreated         OrderStatus = "created"
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusConfirmed       OrderStatus = "confirmed"
	OrderStatusInPreparation   OrderStatus = "in_preparation"
	OrderStatusReady           OrderStatus = "ready"
	OrderStatusFinalized       OrderStatus = "finalized"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusCreated,
	OrderStatusAwaitingPayment,
	OrderStatusConfirmed,
	OrderStatusInPreparation,
	OrderStatusReady,
	OrderStatusFinalized,
	OrderStatusCancelled,
}

// String returns the string representation of the status.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid order status.
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsTerminal returns true if no transition leaves the status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFinalized || s == OrderStatusCancelled
}

// IsEditable reports whether combo items may still change.
func (s OrderStatus) IsEditable() bool {
	switch s {
	case OrderStatusCreated, OrderStatusAwaitingPayment, OrderStatusConfirmed:
		return true
	}
	return false
}

// CanTransitionTo checks if a transition from the current status to target is valid.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, a := range orderTransitions[s] {
		if a == target {
			return true
		}
	}
	return false
}

// AllowedTransitions returns all allowed transitions from the current status.
func (s OrderStatus) AllowedTransitions() []OrderStatus {
	allowed := orderTransitions[s]
	result := make([]OrderStatus, len(allowed))
	copy(result, allowed)
	return result
}

// orderTransitions defines valid state transitions: the forward successor
// first, then cancellation.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:         {OrderStatusAwaitingPayment, OrderStatusCancelled},
	OrderStatusAwaitingPayment: {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:       {OrderStatusInPreparation, OrderStatusCancelled},
	OrderStatusInPreparation:   {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:           {OrderStatusFinalized, OrderStatusCancelled},
	OrderStatusFinalized:       {}, // Terminal state
	OrderStatusCancelled:       {}, // Terminal state
}

// Order is the order aggregate. Code is assigned by the store on creation.
type Order struct {
	Code         int64          `gorm:"primaryKey;autoIncrement"`
	ClientID     *string        `gorm:"index"`
	Status       OrderStatus    `gorm:"not null;default:created;index"`
	PaymentCode  *string        `gorm:"index"`
	Observations pq.StringArray `gorm:"type:text[]"`
	Total        int64          // In cents
	Currency     string         `gorm:"default:brl"`
	ConfirmedAt  *time.Time
	FinalizedAt  *time.Time
	CancelledAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Relations
	Items    []*OrderItem     `gorm:"foreignKey:OrderCode;constraint:OnDelete:CASCADE"`
	Combos   []*ComboItem     `gorm:"foreignKey:OrderCode;constraint:OnDelete:CASCADE"`
	Payments []*PaymentRecord `gorm:"foreignKey:OrderCode;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name.
func (Order) TableName() string {
	return "orders"
}

// FindCombo returns the combo with the given code, or nil.
func (o *Order) FindCombo(comboCode int64) *ComboItem {
	for _, c := range o.Combos {
		if c.ComboCode == comboCode {
			return c
		}
	}
	return nil
}

// RemoveCombo drops the combo with the given code and reports whether it was present.
func (o *Order) RemoveCombo(comboCode int64) bool {
	for i, c := range o.Combos {
		if c.ComboCode == comboCode {
			o.Combos = append(o.Combos[:i], o.Combos[i+1:]...)
			return true
		}
	}
	return false
}

// PaymentByCode returns the payment record carrying the given code, or nil.
func (o *Order) PaymentByCode(code string) *PaymentRecord {
	for _, p := range o.Payments {
		if p.Code == code {
			return p
		}
	}
	return nil
}

// ActivePayment returns the record referenced by PaymentCode, or nil.
func (o *Order) ActivePayment() *PaymentRecord {
	if o.PaymentCode == nil {
		return nil
	}
	return o.PaymentByCode(*o.PaymentCode)
}

// Recalculate refreshes line amounts and the order total.
func (o *Order) Recalculate() {
	var total int64
	for _, item := range o.Items {
		item.Amount = item.UnitPrice * int64(item.Quantity)
		total += item.Amount
	}
	for _, combo := range o.Combos {
		combo.Amount = combo.UnitPrice * int64(combo.Quantity)
		total += combo.Amount
	}
	o.Total = total
}

// Clone returns a deep copy of the aggregate.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	if o.ClientID != nil {
		id := *o.ClientID
		c.ClientID = &id
	}
	if o.PaymentCode != nil {
		code := *o.PaymentCode
		c.PaymentCode = &code
	}
	c.ConfirmedAt = cloneTime(o.ConfirmedAt)
	c.FinalizedAt = cloneTime(o.FinalizedAt)
	c.CancelledAt = cloneTime(o.CancelledAt)
	if o.Observations != nil {
		c.Observations = append(pq.StringArray{}, o.Observations...)
	}
	c.Items = make([]*OrderItem, len(o.Items))
	for i, item := range o.Items {
		cp := *item
		c.Items[i] = &cp
	}
	c.Combos = make([]*ComboItem, len(o.Combos))
	for i, combo := range o.Combos {
		cp := *combo
		c.Combos[i] = &cp
	}
	c.Payments = make([]*PaymentRecord, len(o.Payments))
	for i, p := range o.Payments {
		cp := *p
		cp.SettledAt = cloneTime(p.SettledAt)
		cp.SupersededAt = cloneTime(p.SupersededAt)
		c.Payments[i] = &cp
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderCode   int64     `gorm:"not null;index"`
	ProductCode int64     `gorm:"not null"`
	Description string
	Quantity    int   `gorm:"default:1"`
	UnitPrice   int64 // In cents
	Amount      int64 // quantity * unit_price
}

// TableName returns the database table name.
func (OrderItem) TableName() string {
	return "order_items"
}

// ComboItem is an optional sub-item that can change while the order is editable.
type ComboItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderCode   int64     `gorm:"not null;uniqueIndex:idx_order_combo"`
	ComboCode   int64     `gorm:"not null;uniqueIndex:idx_order_combo"`
	Description string
	Quantity    int   `gorm:"default:1"`
	UnitPrice   int64 // In cents
	Amount      int64
}

// TableName returns the database table name.
func (ComboItem) TableName() string {
	return "order_combo_items"
}

// OrderFilter represents filters for listing orders.
type OrderFilter struct {
	Status   *OrderStatus
	ClientID *string
}

// OrderProjection is the read model used by the kitchen and monitor boards.
type OrderProjection struct {
	Code         int64       `json:"code"`
	ClientID     *string     `json:"client_id,omitempty"`
	Status       OrderStatus `json:"status"`
	ItemCount    int         `json:"item_count"`
	ComboCount   int         `json:"combo_count"`
	Observations []string    `json:"observations,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// ToProjection converts an Order to its board projection.
func (o *Order) ToProjection() *OrderProjection {
	items := 0
	for _, item := range o.Items {
		items += item.Quantity
	}
	combos := 0
	for _, combo := range o.Combos {
		combos += combo.Quantity
	}
	return &OrderProjection{
		Code:         o.Code,
		ClientID:     o.ClientID,
		Status:       o.Status,
		ItemCount:    items,
		ComboCount:   combos,
		Observations: o.Observations,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

// ===== Requests =====

// CreateOrderRequest is the payload for creating an order.
type CreateOrderRequest struct {
	Items        []*OrderItemRequest `json:"items" binding:"dive"`
	Combos       []*ComboItemRequest `json:"combos" binding:"dive"`
	Observations []string            `json:"observations"`
}

// OrderItemRequest describes a line item on creation.
type OrderItemRequest struct {
	ProductCode int64  `json:"product_code" binding:"required,min=1"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	UnitPrice   int64  `json:"unit_price" binding:"min=0"`
}

// ComboItemRequest describes a combo to attach to an order.
type ComboItemRequest struct {
	ComboCode   int64  `json:"combo_code" binding:"required,min=1"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	UnitPrice   int64  `json:"unit_price" binding:"min=0"`
}

// ToComboItem converts the request into a combo item.
func (r *ComboItemRequest) ToComboItem() *ComboItem {
	return &ComboItem{
		ComboCode:   r.ComboCode,
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
	}
}

// SetStatusRequest is the payload for an administrative status change.
type SetStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// ===== Responses =====

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	Code         int64                `json:"code"`
	ClientID     *string              `json:"client_id,omitempty"`
	Status       OrderStatus          `json:"status"`
	PaymentCode  *string              `json:"payment_code,omitempty"`
	Observations []string             `json:"observations,omitempty"`
	Total        int64                `json:"total"`
	Currency     string               `json:"currency"`
	ConfirmedAt  *time.Time           `json:"confirmed_at,omitempty"`
	FinalizedAt  *time.Time           `json:"finalized_at,omitempty"`
	CancelledAt  *time.Time           `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	Items        []*OrderItemResponse `json:"items"`
	Combos       []*ComboItemResponse `json:"combos"`
}

// OrderItemResponse represents an order item in API responses.
type OrderItemResponse struct {
	ProductCode int64  `json:"product_code"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Amount      int64  `json:"amount"`
}

// ComboItemResponse represents a combo item in API responses.
type ComboItemResponse struct {
	ComboCode   int64  `json:"combo_code"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Amount      int64  `json:"amount"`
}

// OrderStatusResponse is returned by the status query.
type OrderStatusResponse struct {
	Code   int64       `json:"code"`
	Status OrderStatus `json:"status"`
}

// ToResponse converts an Order to OrderResponse.
func (o *Order) ToResponse() *OrderResponse {
	resp := &OrderResponse{
		Code:         o.Code,
		ClientID:     o.ClientID,
		Status:       o.Status,
		PaymentCode:  o.PaymentCode,
		Observations: o.Observations,
		Total:        o.Total,
		Currency:     o.Currency,
		ConfirmedAt:  o.ConfirmedAt,
		FinalizedAt:  o.FinalizedAt,
		CancelledAt:  o.CancelledAt,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		Items:        make([]*OrderItemResponse, len(o.Items)),
		Combos:       make([]*ComboItemResponse, len(o.Combos)),
	}
	for i, item := range o.Items {
		resp.Items[i] = &OrderItemResponse{
			ProductCode: item.ProductCode,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		}
	}
	for i, combo := range o.Combos {
		resp.Combos[i] = &ComboItemResponse{
			ComboCode:   combo.ComboCode,
			Description: combo.Description,
			Quantity:    combo.Quantity,
			UnitPrice:   combo.UnitPrice,
			Amount:      combo.Amount,
		}
	}
	return resp
}

// OrderStatusChangedEvent is published after every committed transition.
type OrderStatusChangedEvent struct {
	EventID   uuid.UUID   `json:"event_id"`
	OrderCode int64       `json:"order_code"`
	From      OrderStatus `json:"from,omitempty"`
	To        OrderStatus `json:"to"`
	Total     int64       `json:"total"`
	Currency  string      `json:"currency"`
	At        time.Time   `json:"at"`
}
