package memory

import "errors"

var (
	ErrNotFound             = errors.New("order not found")
	ErrDuplicatePaymentCode = errors.New("payment code already used by another order")
)
