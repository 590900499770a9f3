package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastorder/server/internal/domain/payment"
	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/shared/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Settlement outcomes reported to metrics.
const (
	settlementSettled  = "settled"
	settlementReplayed = "replayed"
	settlementRejected = "rejected"
)

func checkConfirmable(o *model.Order) error {
	switch o.Status {
	case model.OrderStatusCreated, model.OrderStatusAwaitingPayment:
		return nil
	}
	return fmt.Errorf("%w: cannot confirm order %d in status %s", ErrIllegalTransition, o.Code, o.Status)
}

// BeginPaymentConfirmation obtains a payment code for the order and moves it
// to awaiting_payment. The code is generated before the order lock is taken;
// a pending code from an earlier attempt is superseded.
func (d *orderDomain) BeginPaymentConfirmation(ctx context.Context, code int64, details *model.PaymentDetails, method model.PaymentMethod) (*model.PaymentReceipt, error) {
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: %q", payment.ErrUnsupportedPaymentMethod, method)
	}
	if details == nil {
		details = &model.PaymentDetails{}
	}

	snapshot, err := d.GetOrder(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := checkConfirmable(snapshot); err != nil {
		return nil, err
	}

	generated, err := d.payments.GenerateCode(ctx, snapshot, method)
	if err != nil {
		return nil, err
	}

	var receipt *model.PaymentReceipt
	_, err = d.mutate(ctx, code, func(o *model.Order) error {
		if err := checkConfirmable(o); err != nil {
			return err
		}

		now := d.now()
		for _, p := range o.Payments {
			if p.IsPending() {
				p.Status = model.PaymentRecordSuperseded
				p.SupersededAt = &now
			}
		}

		record := &model.PaymentRecord{
			ID:                uuid.New(),
			OrderCode:         o.Code,
			Method:            method,
			Code:              generated.Code,
			ProviderReference: generated.ProviderReference,
			Status:            model.PaymentRecordPending,
			Amount:            generated.Amount,
			Currency:          generated.Currency,
			PayerName:         details.PayerName,
			PayerDocument:     details.PayerDocument,
			PayerEmail:        details.PayerEmail,
			CreatedAt:         now,
		}
		o.Payments = append(o.Payments, record)
		o.PaymentCode = &record.Code

		if o.Status == model.OrderStatusCreated {
			if err := d.transition(o, model.OrderStatusAwaitingPayment); err != nil {
				return err
			}
		}

		receipt = &model.PaymentReceipt{
			OrderCode:    o.Code,
			Status:       o.Status,
			Method:       method,
			PaymentCode:  record.Code,
			QRCode:       generated.QRCode,
			ClientSecret: generated.ClientSecret,
			Amount:       record.Amount,
			Currency:     record.Currency,
			CreatedAt:    now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithRequest(ctx, d.logger).Info("payment confirmation started",
		zap.Int64("order_code", code),
		zap.String("method", method.String()),
	)
	return receipt, nil
}

// SettlePayment completes a confirmation started by BeginPaymentConfirmation.
// Replaying a settled code succeeds without side effects while the order is
// still active.
func (d *orderDomain) SettlePayment(ctx context.Context, paymentCode string, method model.PaymentMethod) (int64, error) {
	orderCode, replayed, err := d.settle(ctx, paymentCode, method)
	if d.metrics != nil {
		result := settlementSettled
		switch {
		case err != nil:
			result = settlementRejected
		case replayed:
			result = settlementReplayed
		}
		d.metrics.RecordSettlement(method.String(), result)
	}
	if err != nil {
		logger.WithRequest(ctx, d.logger).Warn("payment settlement rejected",
			zap.String("method", method.String()),
			zap.Error(err),
		)
		return 0, err
	}
	return orderCode, nil
}

func (d *orderDomain) settle(ctx context.Context, paymentCode string, method model.PaymentMethod) (int64, bool, error) {
	record, err := d.orderDB.GetPaymentByCode(ctx, paymentCode)
	if err != nil {
		return 0, false, fmt.Errorf("get payment record: %w", err)
	}
	if record == nil {
		return 0, false, payment.ErrUnknownPaymentCode
	}

	orderCode, err := d.payments.ResolveCode(ctx, paymentCode, method)
	if err != nil {
		return 0, false, err
	}

	replayed := false
	_, err = d.mutate(ctx, orderCode, func(o *model.Order) error {
		if o.Status.IsTerminal() {
			return fmt.Errorf("%w: order %d is %s", ErrInvalidSettlementState, o.Code, o.Status)
		}

		p := o.PaymentByCode(paymentCode)
		if p == nil || p.Status == model.PaymentRecordSuperseded {
			return payment.ErrUnknownPaymentCode
		}
		if p.IsSettled() {
			replayed = true
			return errUnchanged
		}
		if o.Status != model.OrderStatusAwaitingPayment {
			return fmt.Errorf("%w: order %d is %s", ErrInvalidSettlementState, o.Code, o.Status)
		}

		now := d.now()
		p.Status = model.PaymentRecordSettled
		p.SettledAt = &now
		return d.transition(o, model.OrderStatusConfirmed)
	})
	if errors.Is(err, ErrOrderNotFound) {
		return 0, false, fmt.Errorf("%w: %v", payment.ErrUnknownPaymentCode, err)
	}
	if err != nil {
		return 0, false, err
	}

	if replayed {
		logger.WithRequest(ctx, d.logger).Info("payment settlement replayed", zap.Int64("order_code", orderCode))
	}
	return orderCode, replayed, nil
}

// HandlePaymentWebhook archives a raw provider delivery, extracts its id and
// settles the matching payment.
func (d *orderDomain) HandlePaymentWebhook(ctx context.Context, body []byte, method model.PaymentMethod) (int64, error) {
	if d.archive != nil {
		key, err := d.archive.Archive(ctx, method, body)
		if err != nil {
			d.logger.Warn("failed to archive webhook payload", zap.Error(err))
		} else {
			d.logger.Debug("webhook payload archived", zap.String("key", key))
		}
	}

	paymentCode, err := payment.ParseWebhookPayload(body)
	if err != nil {
		if d.metrics != nil {
			d.metrics.RecordSettlement(method.String(), settlementRejected)
		}
		return 0, err
	}

	return d.SettlePayment(ctx, paymentCode, method)
}
