package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/port/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderAdapter implements outbound.OrderDatabasePort.
type orderAdapter struct {
	*paymentRecordAdapter
	db *gorm.DB
}

// NewOrderAdapter creates a new order database adapter.
func NewOrderAdapter(db *gorm.DB) outbound.OrderDatabasePort {
	return &orderAdapter{
		paymentRecordAdapter: &paymentRecordAdapter{db: db},
		db:                   db,
	}
}

// withAggregate preloads every child collection of the order.
func withAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items").
		Preload("Combos", func(db *gorm.DB) *gorm.DB { return db.Order("combo_code ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
}

func (a *orderAdapter) Create(ctx context.Context, order *model.Order) error {
	if err := a.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (a *orderAdapter) GetByCode(ctx context.Context, code int64) (*model.Order, error) {
	var order model.Order
	err := withAggregate(a.db.WithContext(ctx)).First(&order, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (a *orderAdapter) List(ctx context.Context, filter *model.OrderFilter, page, pageSize int) ([]*model.Order, int64, error) {
	var orders []*model.Order
	var total int64

	query := a.db.WithContext(ctx).Model(&model.Order{})

	// Apply filters
	if filter != nil {
		if filter.Status != nil {
			query = query.Where("status = ?", string(*filter.Status))
		}
		if filter.ClientID != nil {
			query = query.Where("client_id = ?", *filter.ClientID)
		}
	}

	// Count total
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply pagination
	if page > 0 && pageSize > 0 {
		offset := (page - 1) * pageSize
		query = query.Offset(offset).Limit(pageSize)
	}

	if err := withAggregate(query).Order("created_at DESC, code DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (a *orderAdapter) ListByStatus(ctx context.Context, statuses []model.OrderStatus) ([]*model.Order, error) {
	if len(statuses) == 0 {
		return []*model.Order{}, nil
	}
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = s.String()
	}

	var orders []*model.Order
	err := withAggregate(a.db.WithContext(ctx)).
		Where("status IN ?", values).
		Order("created_at ASC, code ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Save writes the order row and reconciles its children in one transaction.
// Combos missing from the aggregate are deleted; payment records are upserted.
func (a *orderAdapter) Save(ctx context.Context, order *model.Order) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keep := make([]uuid.UUID, 0, len(order.Combos))
		for _, c := range order.Combos {
			c.OrderCode = order.Code
			keep = append(keep, c.ID)
		}
		stale := tx.Where("order_code = ?", order.Code)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&model.ComboItem{}).Error; err != nil {
			return fmt.Errorf("delete removed combos: %w", err)
		}

		if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
			return fmt.Errorf("save order: %w", err)
		}

		if len(order.Combos) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&order.Combos).Error; err != nil {
				return fmt.Errorf("save combos: %w", err)
			}
		}
		if len(order.Payments) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&order.Payments).Error; err != nil {
				return fmt.Errorf("save payments: %w", err)
			}
		}
		return nil
	})
}

// Compile-time check
var _ outbound.OrderDatabasePort = (*orderAdapter)(nil)
