package order

import "errors"

// Domain errors for order.
var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrComboNotFound          = errors.New("combo item not found")
	ErrIllegalTransition      = errors.New("illegal status transition")
	ErrOrderNotEditable       = errors.New("order is not editable")
	ErrInvalidSettlementState = errors.New("order is not awaiting payment")
	ErrEmptyOrder             = errors.New("order must contain at least one item or combo")
	ErrInvalidComboItem       = errors.New("invalid combo item")
)
