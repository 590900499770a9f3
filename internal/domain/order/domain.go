package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fastorder/server/internal/domain/payment"
	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/port/outbound"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderDomain defines the interface for order business logic.
// It is the only component that changes an order's status or payment records.
type OrderDomain interface {
	// Order operations
	CreateOrder(ctx context.Context, clientID *string, req *model.CreateOrderRequest) (*model.Order, error)
	GetOrder(ctx context.Context, code int64) (*model.Order, error)
	ListOrders(ctx context.Context, filter *model.OrderFilter, page, pageSize int) ([]*model.Order, int64, error)
	GetStatus(ctx context.Context, code int64) (model.OrderStatus, error)

	// Boards
	ListKitchenQueue(ctx context.Context) ([]*model.OrderProjection, error)
	ListMonitorBoard(ctx context.Context) ([]*model.OrderProjection, error)

	// Status transitions
	SetStatus(ctx context.Context, code int64, status model.OrderStatus) (*model.Order, error)
	Cancel(ctx context.Context, code int64) (*model.Order, error)
	Finalize(ctx context.Context, code int64) (*model.Order, error)

	// Combo items
	AddComboItem(ctx context.Context, code int64, combo *model.ComboItem) (*model.Order, error)
	RemoveComboItem(ctx context.Context, code int64, comboCode int64) (*model.Order, error)

	// Payment confirmation
	BeginPaymentConfirmation(ctx context.Context, code int64, details *model.PaymentDetails, method model.PaymentMethod) (*model.PaymentReceipt, error)
	SettlePayment(ctx context.Context, paymentCode string, method model.PaymentMethod) (int64, error)
	HandlePaymentWebhook(ctx context.Context, payload []byte, method model.PaymentMethod) (int64, error)

	// Maintenance
	ExpireAwaitingPayment(ctx context.Context) (int, error)
}

// Config holds order domain configuration.
type Config struct {
	// AwaitingPaymentTTL cancels orders stuck awaiting payment; zero disables expiry.
	AwaitingPaymentTTL time.Duration
	Currency           string
}

// DefaultConfig returns default order configuration.
func DefaultConfig() *Config {
	return &Config{Currency: "brl"}
}

// orderDomain implements OrderDomain.
type orderDomain struct {
	orderDB  outbound.OrderDatabasePort
	locker   outbound.OrderLockerPort
	payments payment.PaymentDomain
	events   outbound.EventPublisherPort
	archive  outbound.WebhookArchivePort
	metrics  outbound.OrderMetricsPort
	cfg      *Config
	now      func() time.Time
	logger   *zap.Logger
}

// NewOrderDomain creates a new order domain service.
// events, archive and metrics are optional.
func NewOrderDomain(
	orderDB outbound.OrderDatabasePort,
	locker outbound.OrderLockerPort,
	payments payment.PaymentDomain,
	events outbound.EventPublisherPort,
	archive outbound.WebhookArchivePort,
	metrics outbound.OrderMetricsPort,
	cfg *Config,
	logger *zap.Logger,
) OrderDomain {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &orderDomain{
		orderDB:  orderDB,
		locker:   locker,
		payments: payments,
		events:   events,
		archive:  archive,
		metrics:  metrics,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

func (d *orderDomain) CreateOrder(ctx context.Context, clientID *string, req *model.CreateOrderRequest) (*model.Order, error) {
	if req == nil || (len(req.Items) == 0 && len(req.Combos) == 0) {
		return nil, ErrEmptyOrder
	}

	now := d.now()
	order := &model.Order{
		ClientID:     clientID,
		Status:       model.OrderStatusCreated,
		Observations: req.Observations,
		Currency:     d.cfg.Currency,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, &model.OrderItem{
			ID:          uuid.New(),
			ProductCode: item.ProductCode,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	for _, c := range req.Combos {
		if err := validateCombo(c.ToComboItem()); err != nil {
			return nil, err
		}
		addCombo(order, c.ToComboItem())
	}
	order.Recalculate()

	if err := d.orderDB.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	d.logger.Info("order created",
		zap.Int64("order_code", order.Code),
		zap.Int64("total", order.Total),
	)
	d.afterTransition(ctx, order, "")

	return order, nil
}

func (d *orderDomain) GetOrder(ctx context.Context, code int64) (*model.Order, error) {
	order, err := d.orderDB.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (d *orderDomain) ListOrders(ctx context.Context, filter *model.OrderFilter, page, pageSize int) ([]*model.Order, int64, error) {
	return d.orderDB.List(ctx, filter, page, pageSize)
}

func (d *orderDomain) GetStatus(ctx context.Context, code int64) (model.OrderStatus, error) {
	order, err := d.GetOrder(ctx, code)
	if err != nil {
		return "", err
	}
	return order.Status, nil
}

// kitchenStatuses are the orders the kitchen still has to work on.
var kitchenStatuses = []model.OrderStatus{
	model.OrderStatusConfirmed,
	model.OrderStatusInPreparation,
}

// monitorStatuses are shown on the customer monitor, in display priority.
var monitorStatuses = []model.OrderStatus{
	model.OrderStatusReady,
	model.OrderStatusInPreparation,
	model.OrderStatusConfirmed,
}

func (d *orderDomain) ListKitchenQueue(ctx context.Context) ([]*model.OrderProjection, error) {
	orders, err := d.orderDB.ListByStatus(ctx, kitchenStatuses)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return olderFirst(orders[i], orders[j])
	})
	return project(orders), nil
}

func (d *orderDomain) ListMonitorBoard(ctx context.Context) ([]*model.OrderProjection, error) {
	orders, err := d.orderDB.ListByStatus(ctx, monitorStatuses)
	if err != nil {
		return nil, err
	}
	rank := make(map[model.OrderStatus]int, len(monitorStatuses))
	for i, s := range monitorStatuses {
		rank[s] = i
	}
	sort.SliceStable(orders, func(i, j int) bool {
		ri, rj := rank[orders[i].Status], rank[orders[j].Status]
		if ri != rj {
			return ri < rj
		}
		return olderFirst(orders[i], orders[j])
	})
	return project(orders), nil
}

func olderFirst(a, b *model.Order) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.Code < b.Code
}

func project(orders []*model.Order) []*model.OrderProjection {
	result := make([]*model.OrderProjection, len(orders))
	for i, o := range orders {
		result[i] = o.ToProjection()
	}
	return result
}

// --- Mutation plumbing ---

// errUnchanged aborts a mutation successfully without persisting anything.
var errUnchanged = errors.New("order unchanged")

// mutate loads the order under its lock, applies fn and persists the result.
// If fn fails nothing is written. Transition side effects run after the
// lock is released.
func (d *orderDomain) mutate(ctx context.Context, code int64, fn func(o *model.Order) error) (*model.Order, error) {
	order, prev, changed, err := d.mutateLocked(ctx, code, fn)
	if err != nil {
		return nil, err
	}
	if changed && prev != order.Status {
		d.afterTransition(ctx, order, prev)
	}
	return order, nil
}

func (d *orderDomain) mutateLocked(ctx context.Context, code int64, fn func(o *model.Order) error) (*model.Order, model.OrderStatus, bool, error) {
	unlock, err := d.locker.Lock(ctx, code)
	if err != nil {
		return nil, "", false, fmt.Errorf("lock order %d: %w", code, err)
	}
	defer unlock()

	order, err := d.GetOrder(ctx, code)
	if err != nil {
		return nil, "", false, err
	}
	prev := order.Status

	if err := fn(order); err != nil {
		if errors.Is(err, errUnchanged) {
			return order, prev, false, nil
		}
		return nil, "", false, err
	}

	order.UpdatedAt = d.now()
	if err := d.orderDB.Save(ctx, order); err != nil {
		return nil, "", false, fmt.Errorf("save order: %w", err)
	}
	return order, prev, true, nil
}

// transition moves the order to target if the edge exists and stamps the
// matching timestamp.
func (d *orderDomain) transition(o *model.Order, target model.OrderStatus) error {
	if !target.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, target)
	}
	if !o.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrIllegalTransition, o.Status, target)
	}

	now := d.now()
	switch target {
	case model.OrderStatusConfirmed:
		o.ConfirmedAt = &now
	case model.OrderStatusFinalized:
		o.FinalizedAt = &now
	case model.OrderStatusCancelled:
		o.CancelledAt = &now
	}
	o.Status = target
	return nil
}

func (d *orderDomain) afterTransition(ctx context.Context, o *model.Order, from model.OrderStatus) {
	if d.metrics != nil {
		d.metrics.RecordOrderTransition(from.String(), o.Status.String())
	}

	d.logger.Info("order status changed",
		zap.Int64("order_code", o.Code),
		zap.String("from", from.String()),
		zap.String("to", o.Status.String()),
	)

	if d.events == nil {
		return
	}
	event := &model.OrderStatusChangedEvent{
		EventID:   uuid.New(),
		OrderCode: o.Code,
		From:      from,
		To:        o.Status,
		Total:     o.Total,
		Currency:  o.Currency,
		At:        o.UpdatedAt,
	}
	if err := d.events.Publish(ctx, event); err != nil {
		d.logger.Error("failed to publish order event", zap.Error(err), zap.Int64("order_code", o.Code))
	}
}
