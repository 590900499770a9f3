package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/port/outbound"
	"go.uber.org/zap"
)

// PaymentDomain generates and resolves payment codes. It never mutates orders.
type PaymentDomain interface {
	// GenerateCode produces an opaque, method-scoped code for the order.
	GenerateCode(ctx context.Context, order *model.Order, method model.PaymentMethod) (*model.GeneratedPaymentCode, error)

	// ResolveCode maps a code back to the order it was issued for.
	ResolveCode(ctx context.Context, code string, method model.PaymentMethod) (int64, error)
}

// Config holds payment domain configuration.
type Config struct {
	// SimplifiedMethods are settled with self-contained codes instead of the acquirer.
	SimplifiedMethods []model.PaymentMethod
	Currency          string
}

// DefaultConfig returns default payment configuration.
func DefaultConfig() *Config {
	return &Config{
		SimplifiedMethods: []model.PaymentMethod{model.PaymentMethodPix},
		Currency:          "brl",
	}
}

// paymentDomain implements PaymentDomain.
type paymentDomain struct {
	codec      *Codec
	gateway    outbound.PaymentGatewayPort
	records    outbound.PaymentRecordReaderPort
	simplified map[model.PaymentMethod]bool
	currency   string
	logger     *zap.Logger
}

// NewPaymentDomain creates a new payment domain service.
func NewPaymentDomain(
	codec *Codec,
	gateway outbound.PaymentGatewayPort,
	records outbound.PaymentRecordReaderPort,
	cfg *Config,
	logger *zap.Logger,
) PaymentDomain {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	simplified := make(map[model.PaymentMethod]bool, len(cfg.SimplifiedMethods))
	for _, m := range cfg.SimplifiedMethods {
		simplified[m] = true
	}
	return &paymentDomain{
		codec:      codec,
		gateway:    gateway,
		records:    records,
		simplified: simplified,
		currency:   cfg.Currency,
		logger:     logger,
	}
}

func (d *paymentDomain) GenerateCode(ctx context.Context, order *model.Order, method model.PaymentMethod) (*model.GeneratedPaymentCode, error) {
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPaymentMethod, method)
	}

	currency := order.Currency
	if currency == "" {
		currency = d.currency
	}

	if d.simplified[method] {
		code, err := d.codec.Encode(method, order.Code)
		if err != nil {
			return nil, fmt.Errorf("encode payment code: %w", err)
		}
		return &model.GeneratedPaymentCode{
			Code:     code,
			Method:   method,
			Amount:   order.Total,
			Currency: currency,
		}, nil
	}

	if d.gateway == nil {
		return nil, fmt.Errorf("%w: no gateway for %s", ErrPaymentProviderUnavailable, method)
	}

	pp, err := d.gateway.InitiatePayment(ctx, order, order.Total, method)
	if err != nil {
		d.logger.Warn("initiate payment failed",
			zap.String("gateway", d.gateway.Name()),
			zap.Int64("order_code", order.Code),
			zap.Error(err),
		)
		return nil, asUnavailable(err)
	}

	return &model.GeneratedPaymentCode{
		Code:              pp.Reference,
		Method:            method,
		ProviderReference: pp.Reference,
		QRCode:            pp.QRCode,
		ClientSecret:      pp.ClientSecret,
		Amount:            order.Total,
		Currency:          currency,
	}, nil
}

func (d *paymentDomain) ResolveCode(ctx context.Context, code string, method model.PaymentMethod) (int64, error) {
	if code == "" {
		return 0, fmt.Errorf("%w: empty code", ErrMalformedCode)
	}
	if !method.IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedPaymentMethod, method)
	}

	var orderCode int64
	if d.simplified[method] {
		decoded, err := d.codec.Decode(code)
		if err != nil {
			return 0, err
		}
		if decoded.Method != method {
			return 0, fmt.Errorf("%w: issued for %s", ErrUnknownPaymentCode, decoded.Method)
		}
		orderCode = decoded.OrderCode
	} else {
		if d.gateway == nil {
			return 0, fmt.Errorf("%w: no gateway for %s", ErrPaymentProviderUnavailable, method)
		}
		resolved, err := d.gateway.ResolveProviderReference(ctx, code, method)
		if err != nil {
			if errors.Is(err, ErrMalformedCode) || errors.Is(err, ErrUnknownPaymentCode) {
				return 0, err
			}
			return 0, asUnavailable(err)
		}
		orderCode = resolved
	}

	record, err := d.records.GetPaymentByCode(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("get payment record: %w", err)
	}
	if record == nil || record.Status == model.PaymentRecordSuperseded ||
		record.Method != method || record.OrderCode != orderCode {
		return 0, ErrUnknownPaymentCode
	}

	return orderCode, nil
}

func asUnavailable(err error) error {
	if errors.Is(err, ErrPaymentProviderUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPaymentProviderUnavailable, err)
}
