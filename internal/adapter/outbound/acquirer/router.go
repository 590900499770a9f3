package acquirer

import (
	"context"
	"fmt"
	"strings"

	"github.com/fastorder/server/internal/domain/payment"
	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/port/outbound"
)

// routerGateway dispatches each call to the gateway registered for the method.
type routerGateway struct {
	routes map[model.PaymentMethod]outbound.PaymentGatewayPort
}

// NewRouterGateway creates a gateway that selects a backend per payment method.
func NewRouterGateway(routes map[model.PaymentMethod]outbound.PaymentGatewayPort) outbound.PaymentGatewayPort {
	copied := make(map[model.PaymentMethod]outbound.PaymentGatewayPort, len(routes))
	for m, g := range routes {
		if g != nil {
			copied[m] = g
		}
	}
	return &routerGateway{routes: copied}
}

func (r *routerGateway) Name() string {
	names := make([]string, 0, len(r.routes))
	for _, m := range []model.PaymentMethod{model.PaymentMethodCreditCard, model.PaymentMethodPix} {
		if g, ok := r.routes[m]; ok {
			names = append(names, m.String()+"="+g.Name())
		}
	}
	return "router(" + strings.Join(names, ",") + ")"
}

func (r *routerGateway) InitiatePayment(ctx context.Context, order *model.Order, amount int64, method model.PaymentMethod) (*model.ProviderPayment, error) {
	g, err := r.route(method)
	if err != nil {
		return nil, err
	}
	return g.InitiatePayment(ctx, order, amount, method)
}

func (r *routerGateway) ResolveProviderReference(ctx context.Context, reference string, method model.PaymentMethod) (int64, error) {
	g, err := r.route(method)
	if err != nil {
		return 0, err
	}
	return g.ResolveProviderReference(ctx, reference, method)
}

func (r *routerGateway) route(method model.PaymentMethod) (outbound.PaymentGatewayPort, error) {
	g, ok := r.routes[method]
	if !ok {
		return nil, fmt.Errorf("%w: no gateway for %s", payment.ErrPaymentProviderUnavailable, method)
	}
	return g, nil
}

// Compile-time check
var _ outbound.PaymentGatewayPort = (*routerGateway)(nil)
