package acquirer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fastorder/server/internal/domain/payment"
	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/port/outbound"
	"github.com/fastorder/server/internal/utils/random"
)

const (
	simulatedPrefix     = "QRCODE-SIMULADO"
	simulatedTimeLayout = "20060102150405"
)

// simulatedGateway issues QR references that embed the order code.
// It is meant for local development and demos; it never contacts an acquirer.
type simulatedGateway struct {
	now func() time.Time
}

// NewSimulatedGateway creates an offline payment gateway.
func NewSimulatedGateway() outbound.PaymentGatewayPort {
	return &simulatedGateway{now: time.Now}
}

func (g *simulatedGateway) Name() string {
	return "simulated"
}

func (g *simulatedGateway) InitiatePayment(ctx context.Context, order *model.Order, amount int64, method model.PaymentMethod) (*model.ProviderPayment, error) {
	suffix, err := random.String(6, random.CharsetUpperAlphaNum)
	if err != nil {
		return nil, err
	}
	ref := fmt.Sprintf("%s-%d-%s-%s", simulatedPrefix, order.Code, g.now().Format(simulatedTimeLayout), suffix)
	return &model.ProviderPayment{
		Reference: ref,
		QRCode:    ref,
	}, nil
}

func (g *simulatedGateway) ResolveProviderReference(ctx context.Context, reference string, method model.PaymentMethod) (int64, error) {
	parts := strings.Split(reference, "-")
	if len(parts) < 3 || parts[0]+"-"+parts[1] != simulatedPrefix {
		return 0, fmt.Errorf("%w: not a simulated reference", payment.ErrMalformedCode)
	}
	code, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || code <= 0 {
		return 0, fmt.Errorf("%w: bad order code %q", payment.ErrMalformedCode, parts[2])
	}
	return code, nil
}

// Compile-time check
var _ outbound.PaymentGatewayPort = (*simulatedGateway)(nil)
