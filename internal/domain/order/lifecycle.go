package order

import (
	"context"
	"fmt"

	"github.com/fastorder/server/internal/model"
	"github.com/google/uuid"
)

func (d *orderDomain) SetStatus(ctx context.Context, code int64, status model.OrderStatus) (*model.Order, error) {
	return d.mutate(ctx, code, func(o *model.Order) error {
		return d.transition(o, status)
	})
}

func (d *orderDomain) Cancel(ctx context.Context, code int64) (*model.Order, error) {
	return d.SetStatus(ctx, code, model.OrderStatusCancelled)
}

func (d *orderDomain) Finalize(ctx context.Context, code int64) (*model.Order, error) {
	return d.SetStatus(ctx, code, model.OrderStatusFinalized)
}

func (d *orderDomain) AddComboItem(ctx context.Context, code int64, combo *model.ComboItem) (*model.Order, error) {
	if err := validateCombo(combo); err != nil {
		return nil, err
	}
	return d.mutate(ctx, code, func(o *model.Order) error {
		if err := checkEditable(o); err != nil {
			return err
		}
		addCombo(o, combo)
		o.Recalculate()
		return nil
	})
}

func (d *orderDomain) RemoveComboItem(ctx context.Context, code int64, comboCode int64) (*model.Order, error) {
	return d.mutate(ctx, code, func(o *model.Order) error {
		if err := checkEditable(o); err != nil {
			return err
		}
		if !o.RemoveCombo(comboCode) {
			return fmt.Errorf("%w: combo %d on order %d", ErrComboNotFound, comboCode, o.Code)
		}
		o.Recalculate()
		return nil
	})
}

func checkEditable(o *model.Order) error {
	if !o.Status.IsEditable() {
		return fmt.Errorf("%w: order %d is %s", ErrOrderNotEditable, o.Code, o.Status)
	}
	return nil
}

func validateCombo(combo *model.ComboItem) error {
	if combo == nil {
		return ErrInvalidComboItem
	}
	if combo.ComboCode <= 0 {
		return fmt.Errorf("%w: combo code must be positive", ErrInvalidComboItem)
	}
	if combo.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidComboItem)
	}
	if combo.UnitPrice < 0 {
		return fmt.Errorf("%w: unit price must not be negative", ErrInvalidComboItem)
	}
	return nil
}

// addCombo merges the combo into the order; an existing code accumulates quantity.
func addCombo(o *model.Order, combo *model.ComboItem) {
	if existing := o.FindCombo(combo.ComboCode); existing != nil {
		existing.Quantity += combo.Quantity
		existing.UnitPrice = combo.UnitPrice
		if combo.Description != "" {
			existing.Description = combo.Description
		}
		return
	}
	o.Combos = append(o.Combos, &model.ComboItem{
		ID:          uuid.New(),
		OrderCode:   o.Code,
		ComboCode:   combo.ComboCode,
		Description: combo.Description,
		Quantity:    combo.Quantity,
		UnitPrice:   combo.UnitPrice,
	})
}
