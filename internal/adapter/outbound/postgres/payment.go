package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/port/outbound"
	"gorm.io/gorm"
)

// paymentRecordAdapter implements outbound.PaymentRecordReaderPort.
// It is embedded in orderAdapter.
type paymentRecordAdapter struct {
	db *gorm.DB
}

func (a *paymentRecordAdapter) GetPaymentByCode(ctx context.Context, code string) (*model.PaymentRecord, error) {
	var record model.PaymentRecord
	err := a.db.WithContext(ctx).First(&record, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find payment by code: %w", err)
	}
	return &record, nil
}

// Compile-time check
var _ outbound.PaymentRecordReaderPort = (*paymentRecordAdapter)(nil)
