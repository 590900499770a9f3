package order

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/fastorder/server/internal/adapter/outbound/memory"
	"github.com/fastorder/server/internal/domain/payment"
	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/port/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Test doubles ---

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event *model.OrderStatusChangedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordOrderTransition(from, to string) {
	m.Called(from, to)
}

func (m *MockMetrics) RecordSettlement(method, result string) {
	m.Called(method, result)
}

type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Archive(ctx context.Context, method model.PaymentMethod, payload []byte) (string, error) {
	args := m.Called(ctx, method, payload)
	return args.String(0), args.Error(1)
}

// stubGateway hands out sequential provider references.
type stubGateway struct {
	mu   sync.Mutex
	fail error
	seq  int
	refs map[string]int64
}

func newStubGateway() *stubGateway {
	return &stubGateway{refs: make(map[string]int64)}
}

func (g *stubGateway) Name() string { return "stub" }

func (g *stubGateway) InitiatePayment(ctx context.Context, order *model.Order, amount int64, method model.PaymentMethod) (*model.ProviderPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return nil, g.fail
	}
	g.seq++
	ref := fmt.Sprintf("pi_%d_%d", order.Code, g.seq)
	g.refs[ref] = order.Code
	return &model.ProviderPayment{Reference: ref, ClientSecret: ref + "_secret"}, nil
}

func (g *stubGateway) ResolveProviderReference(ctx context.Context, reference string, method model.PaymentMethod) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return 0, g.fail
	}
	code, ok := g.refs[reference]
	if !ok {
		return 0, payment.ErrUnknownPaymentCode
	}
	return code, nil
}

func (g *stubGateway) setFailure(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail = err
}

// --- Fixture ---

type testEnv struct {
	domain  *orderDomain
	store   outbound.OrderDatabasePort
	gateway *stubGateway
	clock   time.Time
}

type envOption func(*orderDomain)

func withPublisher(p outbound.EventPublisherPort) envOption {
	return func(d *orderDomain) { d.events = p }
}

func withMetrics(m outbound.OrderMetricsPort) envOption {
	return func(d *orderDomain) { d.metrics = m }
}

func withArchive(a outbound.WebhookArchivePort) envOption {
	return func(d *orderDomain) { d.archive = a }
}

func withTTL(ttl time.Duration) envOption {
	return func(d *orderDomain) { d.cfg.AwaitingPaymentTTL = ttl }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	store := memory.NewOrderStore()
	gateway := newStubGateway()
	codec, err := payment.NewCodec("order-test-secret")
	require.NoError(t, err)
	payments := payment.NewPaymentDomain(codec, gateway, store, payment.DefaultConfig(), zap.NewNop())

	env := &testEnv{
		store:   store,
		gateway: gateway,
		clock:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	d := NewOrderDomain(store, memory.NewLocker(), payments, nil, nil, nil, DefaultConfig(), zap.NewNop()).(*orderDomain)
	d.now = func() time.Time { return env.clock }
	for _, opt := range opts {
		opt(d)
	}
	env.domain = d
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

func (e *testEnv) createOrder(t *testing.T) *model.Order {
	t.Helper()
	order, err := e.domain.CreateOrder(context.Background(), nil, &model.CreateOrderRequest{
		Items: []*model.OrderItemRequest{
			{ProductCode: 10, Description: "X-Burger", Quantity: 2, UnitPrice: 1500},
		},
	})
	require.NoError(t, err)
	return order
}

// driveTo moves a fresh order to status through administrative transitions.
func (e *testEnv) driveTo(t *testing.T, code int64, status model.OrderStatus) {
	t.Helper()
	ctx := context.Background()
	if status == model.OrderStatusCancelled {
		_, err := e.domain.Cancel(ctx, code)
		require.NoError(t, err)
		return
	}
	for {
		current, err := e.domain.GetStatus(ctx, code)
		require.NoError(t, err)
		if current == status {
			return
		}
		next := current.AllowedTransitions()
		require.NotEmpty(t, next, "cannot reach %s from %s", status, current)
		_, err = e.domain.SetStatus(ctx, code, next[0])
		require.NoError(t, err)
	}
}

func (e *testEnv) status(t *testing.T, code int64) model.OrderStatus {
	t.Helper()
	s, err := e.domain.GetStatus(context.Background(), code)
	require.NoError(t, err)
	return s
}

// --- Tests ---

func TestOrderDomain_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("computes totals and publishes creation", func(t *testing.T) {
		publisher := new(MockPublisher)
		publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e *model.OrderStatusChangedEvent) bool {
			return e.From == "" && e.To == model.OrderStatusCreated && e.Total == 5000
		})).Return(nil).Once()
		env := newTestEnv(t, withPublisher(publisher))

		client := "client-7"
		order, err := env.domain.CreateOrder(ctx, &client, &model.CreateOrderRequest{
			Items:        []*model.OrderItemRequest{{ProductCode: 1, Quantity: 2, UnitPrice: 1500}},
			Combos:       []*model.ComboItemRequest{{ComboCode: 3, Quantity: 1, UnitPrice: 2000}},
			Observations: []string{"no onions"},
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), order.Code)
		assert.Equal(t, model.OrderStatusCreated, order.Status)
		assert.Equal(t, int64(5000), order.Total)
		assert.Equal(t, "brl", order.Currency)
		assert.Equal(t, &client, order.ClientID)
		publisher.AssertExpectations(t)
	})

	t.Run("empty order", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.domain.CreateOrder(ctx, nil, &model.CreateOrderRequest{})
		assert.ErrorIs(t, err, ErrEmptyOrder)

		_, err = env.domain.CreateOrder(ctx, nil, nil)
		assert.ErrorIs(t, err, ErrEmptyOrder)
	})

	t.Run("invalid combo", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.domain.CreateOrder(ctx, nil, &model.CreateOrderRequest{
			Combos: []*model.ComboItemRequest{{ComboCode: 3, Quantity: 0}},
		})
		assert.ErrorIs(t, err, ErrInvalidComboItem)
	})

	t.Run("publish failure does not fail creation", func(t *testing.T) {
		publisher := new(MockPublisher)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))
		env := newTestEnv(t, withPublisher(publisher))

		order := env.createOrder(t)
		assert.Equal(t, model.OrderStatusCreated, env.status(t, order.Code))
	})
}

func TestOrderDomain_Scenarios(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	var order *model.Order
	for order == nil || order.Code < 42 {
		order = env.createOrder(t)
	}
	require.Equal(t, int64(42), order.Code)

	var paymentCode string

	t.Run("1 begin confirmation", func(t *testing.T) {
		receipt, err := env.domain.BeginPaymentConfirmation(ctx, 42, &model.PaymentDetails{PayerName: "Ana"}, model.PaymentMethodPix)

		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusAwaitingPayment, receipt.Status)
		assert.NotEmpty(t, receipt.PaymentCode)
		assert.Equal(t, model.OrderStatusAwaitingPayment, env.status(t, 42))
		paymentCode = receipt.PaymentCode
	})

	t.Run("2 webhook settles", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"id": %q}`, paymentCode))
		code, err := env.domain.HandlePaymentWebhook(ctx, body, model.PaymentMethodPix)

		require.NoError(t, err)
		assert.Equal(t, int64(42), code)
		assert.Equal(t, model.OrderStatusConfirmed, env.status(t, 42))
	})

	t.Run("3 webhook replay", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"id": %q}`, paymentCode))
		code, err := env.domain.HandlePaymentWebhook(ctx, body, model.PaymentMethodPix)

		require.NoError(t, err)
		assert.Equal(t, int64(42), code)
		assert.Equal(t, model.OrderStatusConfirmed, env.status(t, 42))
	})

	t.Run("4 finalized rejects ready", func(t *testing.T) {
		env.driveTo(t, 42, model.OrderStatusFinalized)

		_, err := env.domain.SetStatus(ctx, 42, model.OrderStatusReady)

		assert.ErrorIs(t, err, ErrIllegalTransition)
		assert.Equal(t, model.OrderStatusFinalized, env.status(t, 42))
	})

	t.Run("5 unknown code", func(t *testing.T) {
		_, err := env.domain.HandlePaymentWebhook(ctx, []byte(`{"id": "unknown-code"}`), model.PaymentMethodPix)
		assert.ErrorIs(t, err, payment.ErrUnknownPaymentCode)
	})

	t.Run("6 missing combo", func(t *testing.T) {
		other := newTestEnv(t)
		var o *model.Order
		for o == nil || o.Code < 42 {
			o = other.createOrder(t)
		}

		_, err := other.domain.RemoveComboItem(ctx, 42, 99)
		assert.ErrorIs(t, err, ErrComboNotFound)
	})
}

func TestOrderDomain_SetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("forward chain", func(t *testing.T) {
		metrics := new(MockMetrics)
		metrics.On("RecordOrderTransition", mock.Anything, mock.Anything).Return()
		env := newTestEnv(t, withMetrics(metrics))
		order := env.createOrder(t)

		for _, next := range model.OrderStatuses[1:6] {
			env.advance(time.Minute)
			updated, err := env.domain.SetStatus(ctx, order.Code, next)
			require.NoError(t, err, "transition to %s", next)
			assert.Equal(t, next, updated.Status)
		}

		final, err := env.domain.GetOrder(ctx, order.Code)
		require.NoError(t, err)
		require.NotNil(t, final.ConfirmedAt)
		require.NotNil(t, final.FinalizedAt)
		assert.True(t, final.FinalizedAt.After(*final.ConfirmedAt))
		metrics.AssertCalled(t, "RecordOrderTransition", "ready", "finalized")
	})

	t.Run("skipping a step", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)

		_, err := env.domain.SetStatus(ctx, order.Code, model.OrderStatusConfirmed)
		assert.ErrorIs(t, err, ErrIllegalTransition)
		assert.Equal(t, model.OrderStatusCreated, env.status(t, order.Code))
	})

	t.Run("same status", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)

		_, err := env.domain.SetStatus(ctx, order.Code, model.OrderStatusCreated)
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("unknown status", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)

		_, err := env.domain.SetStatus(ctx, order.Code, model.OrderStatus("bogus"))
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("order not found", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.domain.SetStatus(ctx, 404, model.OrderStatusCancelled)
		assert.ErrorIs(t, err, ErrOrderNotFound)

		_, err = env.domain.GetStatus(ctx, 404)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("cancel from any active status", func(t *testing.T) {
		for _, from := range model.OrderStatuses[:5] {
			t.Run(from.String(), func(t *testing.T) {
				env := newTestEnv(t)
				order := env.createOrder(t)
				env.driveTo(t, order.Code, from)

				cancelled, err := env.domain.Cancel(ctx, order.Code)
				require.NoError(t, err)
				assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
				assert.NotNil(t, cancelled.CancelledAt)
			})
		}
	})

	t.Run("finalize requires ready", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)
		env.driveTo(t, order.Code, model.OrderStatusInPreparation)

		_, err := env.domain.Finalize(ctx, order.Code)
		assert.ErrorIs(t, err, ErrIllegalTransition)

		env.driveTo(t, order.Code, model.OrderStatusReady)
		finalized, err := env.domain.Finalize(ctx, order.Code)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusFinalized, finalized.Status)
	})
}

func TestOrderDomain_TerminalStatesAreAbsorbing(t *testing.T) {
	ctx := context.Background()

	for _, terminal := range []model.OrderStatus{model.OrderStatusFinalized, model.OrderStatusCancelled} {
		t.Run(terminal.String(), func(t *testing.T) {
			env := newTestEnv(t)
			order := env.createOrder(t)

			receipt, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodPix)
			require.NoError(t, err)
			if terminal == model.OrderStatusFinalized {
				_, err = env.domain.SettlePayment(ctx, receipt.PaymentCode, model.PaymentMethodPix)
				require.NoError(t, err)
			}
			env.driveTo(t, order.Code, terminal)

			for _, target := range model.OrderStatuses {
				_, err := env.domain.SetStatus(ctx, order.Code, target)
				assert.ErrorIs(t, err, ErrIllegalTransition, "set %s", target)
			}

			_, err = env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodPix)
			assert.ErrorIs(t, err, ErrIllegalTransition)

			_, err = env.domain.SettlePayment(ctx, receipt.PaymentCode, model.PaymentMethodPix)
			assert.ErrorIs(t, err, ErrInvalidSettlementState)

			assert.Equal(t, terminal, env.status(t, order.Code))
		})
	}
}

func TestOrderDomain_RandomTransitionSequences(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(20240501))
	methods := []model.PaymentMethod{model.PaymentMethodPix, model.PaymentMethodCreditCard}
	targets := append(append([]model.OrderStatus{}, model.OrderStatuses...), model.OrderStatus("bogus"))

	for run := 0; run < 50; run++ {
		env := newTestEnv(t)
		order := env.createOrder(t)
		var codes []string
		var codeMethods []model.PaymentMethod

		for step := 0; step < 30; step++ {
			before := env.status(t, order.Code)

			var err error
			switch op := rng.Intn(4); op {
			case 0, 1:
				_, err = env.domain.SetStatus(ctx, order.Code, targets[rng.Intn(len(targets))])
			case 2:
				var receipt *model.PaymentReceipt
				method := methods[rng.Intn(len(methods))]
				receipt, err = env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, method)
				if err == nil {
					codes = append(codes, receipt.PaymentCode)
					codeMethods = append(codeMethods, method)
				}
			case 3:
				if len(codes) == 0 {
					continue
				}
				i := rng.Intn(len(codes))
				_, err = env.domain.SettlePayment(ctx, codes[i], codeMethods[i])
			}

			after := env.status(t, order.Code)
			if err != nil {
				assert.Equal(t, before, after, "run %d step %d: failed call changed status", run, step)
				continue
			}
			assert.True(t, after == before || before.CanTransitionTo(after),
				"run %d step %d: illegal edge %s -> %s", run, step, before, after)
		}
	}
}

func TestOrderDomain_BeginPaymentConfirmation(t *testing.T) {
	ctx := context.Background()

	t.Run("credit card goes through the gateway", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)

		receipt, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, &model.PaymentDetails{PayerEmail: "a@b.c"}, model.PaymentMethodCreditCard)

		require.NoError(t, err)
		assert.Equal(t, "pi_1_1", receipt.PaymentCode)
		assert.Equal(t, "pi_1_1_secret", receipt.ClientSecret)
		assert.Equal(t, int64(3000), receipt.Amount)

		stored, err := env.domain.GetOrder(ctx, order.Code)
		require.NoError(t, err)
		require.Len(t, stored.Payments, 1)
		assert.Equal(t, "a@b.c", stored.Payments[0].PayerEmail)
		assert.Equal(t, model.PaymentRecordPending, stored.Payments[0].Status)
	})

	t.Run("retry supersedes the pending code", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)

		first, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodPix)
		require.NoError(t, err)
		second, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodCreditCard)
		require.NoError(t, err)
		assert.NotEqual(t, first.PaymentCode, second.PaymentCode)

		stored, err := env.domain.GetOrder(ctx, order.Code)
		require.NoError(t, err)
		require.Len(t, stored.Payments, 2)
		assert.Equal(t, model.PaymentRecordSuperseded, stored.Payments[0].Status)
		assert.NotNil(t, stored.Payments[0].SupersededAt)
		assert.Equal(t, second.PaymentCode, *stored.PaymentCode)

		_, err = env.domain.SettlePayment(ctx, first.PaymentCode, model.PaymentMethodPix)
		assert.ErrorIs(t, err, payment.ErrUnknownPaymentCode)
		assert.Equal(t, model.OrderStatusAwaitingPayment, env.status(t, order.Code))

		_, err = env.domain.SettlePayment(ctx, second.PaymentCode, model.PaymentMethodCreditCard)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusConfirmed, env.status(t, order.Code))
	})

	t.Run("provider unavailable leaves order untouched", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)
		env.gateway.setFailure(errors.New("connection reset"))

		_, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodCreditCard)

		assert.ErrorIs(t, err, payment.ErrPaymentProviderUnavailable)
		stored, err := env.domain.GetOrder(ctx, order.Code)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCreated, stored.Status)
		assert.Empty(t, stored.Payments)
		assert.Nil(t, stored.PaymentCode)
	})

	t.Run("unsupported method", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)

		_, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethod("cash"))
		assert.ErrorIs(t, err, payment.ErrUnsupportedPaymentMethod)
	})

	t.Run("order already confirmed", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)
		env.driveTo(t, order.Code, model.OrderStatusConfirmed)

		_, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodPix)
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("order not found", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.domain.BeginPaymentConfirmation(ctx, 7, nil, model.PaymentMethodPix)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestOrderDomain_SettlePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("replay is recorded once as settled", func(t *testing.T) {
		metrics := new(MockMetrics)
		metrics.On("RecordOrderTransition", mock.Anything, mock.Anything).Return()
		metrics.On("RecordSettlement", "pix", "settled").Return().Once()
		metrics.On("RecordSettlement", "pix", "replayed").Return().Twice()
		env := newTestEnv(t, withMetrics(metrics))
		order := env.createOrder(t)

		receipt, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodPix)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			code, err := env.domain.SettlePayment(ctx, receipt.PaymentCode, model.PaymentMethodPix)
			require.NoError(t, err)
			assert.Equal(t, order.Code, code)
		}

		assert.Equal(t, model.OrderStatusConfirmed, env.status(t, order.Code))
		metrics.AssertNumberOfCalls(t, "RecordOrderTransition", 3) // create, awaiting, confirmed
		metrics.AssertExpectations(t)
	})

	t.Run("replay after kitchen progress", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)
		receipt, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodPix)
		require.NoError(t, err)
		_, err = env.domain.SettlePayment(ctx, receipt.PaymentCode, model.PaymentMethodPix)
		require.NoError(t, err)
		env.driveTo(t, order.Code, model.OrderStatusReady)

		_, err = env.domain.SettlePayment(ctx, receipt.PaymentCode, model.PaymentMethodPix)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusReady, env.status(t, order.Code))
	})

	t.Run("method mismatch", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)
		receipt, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodPix)
		require.NoError(t, err)

		_, err = env.domain.SettlePayment(ctx, receipt.PaymentCode, model.PaymentMethodCreditCard)
		assert.ErrorIs(t, err, payment.ErrUnknownPaymentCode)
		assert.Equal(t, model.OrderStatusAwaitingPayment, env.status(t, order.Code))
	})

	t.Run("credit card settlement", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)
		receipt, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodCreditCard)
		require.NoError(t, err)

		code, err := env.domain.SettlePayment(ctx, receipt.PaymentCode, model.PaymentMethodCreditCard)
		require.NoError(t, err)
		assert.Equal(t, order.Code, code)

		stored, err := env.domain.GetOrder(ctx, order.Code)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusConfirmed, stored.Status)
		assert.Equal(t, model.PaymentRecordSettled, stored.Payments[0].Status)
		assert.NotNil(t, stored.ConfirmedAt)
	})

	t.Run("order moved on by staff while payment pending", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)
		receipt, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodPix)
		require.NoError(t, err)
		_, err = env.domain.SetStatus(ctx, order.Code, model.OrderStatusConfirmed)
		require.NoError(t, err)

		_, err = env.domain.SettlePayment(ctx, receipt.PaymentCode, model.PaymentMethodPix)
		assert.ErrorIs(t, err, ErrInvalidSettlementState)
		assert.NotErrorIs(t, err, payment.ErrUnknownPaymentCode)

		stored, err := env.domain.GetOrder(ctx, order.Code)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusConfirmed, stored.Status)
		assert.Equal(t, model.PaymentRecordPending, stored.Payments[0].Status)
	})

	t.Run("card intent not yet captured", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)
		receipt, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodCreditCard)
		require.NoError(t, err)
		env.gateway.setFailure(fmt.Errorf("%w: intent %s is requires_payment_method", payment.ErrUnknownPaymentCode, receipt.PaymentCode))

		_, err = env.domain.SettlePayment(ctx, receipt.PaymentCode, model.PaymentMethodCreditCard)
		assert.ErrorIs(t, err, payment.ErrUnknownPaymentCode)
		assert.Equal(t, model.OrderStatusAwaitingPayment, env.status(t, order.Code))
	})

	t.Run("gateway outage during settlement", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)
		receipt, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodCreditCard)
		require.NoError(t, err)
		env.gateway.setFailure(errors.New("timeout"))

		_, err = env.domain.SettlePayment(ctx, receipt.PaymentCode, model.PaymentMethodCreditCard)
		assert.ErrorIs(t, err, payment.ErrPaymentProviderUnavailable)
		assert.Equal(t, model.OrderStatusAwaitingPayment, env.status(t, order.Code))
	})

	t.Run("concurrent deliveries confirm once", func(t *testing.T) {
		publisher := new(MockPublisher)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
		env := newTestEnv(t, withPublisher(publisher))
		order := env.createOrder(t)
		receipt, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodPix)
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make(chan error, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := env.domain.SettlePayment(ctx, receipt.PaymentCode, model.PaymentMethodPix)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}
		assert.Equal(t, model.OrderStatusConfirmed, env.status(t, order.Code))

		confirmed := 0
		for _, call := range publisher.Calls {
			if call.Arguments.Get(1).(*model.OrderStatusChangedEvent).To == model.OrderStatusConfirmed {
				confirmed++
			}
		}
		assert.Equal(t, 1, confirmed)
	})
}

func TestOrderDomain_HandlePaymentWebhook(t *testing.T) {
	ctx := context.Background()

	t.Run("archives and rejects malformed payloads", func(t *testing.T) {
		archive := new(MockArchive)
		body := []byte(`{"type":"payment"}`)
		archive.On("Archive", mock.Anything, model.PaymentMethodPix, body).Return("webhooks/pix/1.json", nil).Once()
		metrics := new(MockMetrics)
		metrics.On("RecordOrderTransition", mock.Anything, mock.Anything).Return().Maybe()
		metrics.On("RecordSettlement", "pix", "rejected").Return().Once()
		env := newTestEnv(t, withArchive(archive), withMetrics(metrics))

		_, err := env.domain.HandlePaymentWebhook(ctx, body, model.PaymentMethodPix)

		assert.ErrorIs(t, err, payment.ErrMalformedWebhookPayload)
		archive.AssertExpectations(t)
		metrics.AssertExpectations(t)
	})

	t.Run("archive failure does not block settlement", func(t *testing.T) {
		archive := new(MockArchive)
		archive.On("Archive", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("bucket missing"))
		env := newTestEnv(t, withArchive(archive))
		order := env.createOrder(t)
		receipt, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodPix)
		require.NoError(t, err)

		code, err := env.domain.HandlePaymentWebhook(ctx, []byte(`{"id":"`+receipt.PaymentCode+`"}`), model.PaymentMethodPix)
		require.NoError(t, err)
		assert.Equal(t, order.Code, code)
	})

	t.Run("tampered code", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.domain.HandlePaymentWebhook(ctx, []byte(`{"id":"UEFHLXBpeC00Mi0yMDI0MDUwMTEyMDAwMA.AAAA"}`), model.PaymentMethodPix)
		assert.ErrorIs(t, err, payment.ErrUnknownPaymentCode)
	})
}

func TestOrderDomain_ComboEditability(t *testing.T) {
	ctx := context.Background()
	combo := &model.ComboItem{ComboCode: 5, Description: "Fries + Soda", Quantity: 1, UnitPrice: 1200}

	for _, status := range []model.OrderStatus{
		model.OrderStatusCreated,
		model.OrderStatusAwaitingPayment,
		model.OrderStatusConfirmed,
	} {
		t.Run("editable "+status.String(), func(t *testing.T) {
			env := newTestEnv(t)
			order := env.createOrder(t)
			env.driveTo(t, order.Code, status)

			updated, err := env.domain.AddComboItem(ctx, order.Code, combo)
			require.NoError(t, err)
			assert.Equal(t, int64(4200), updated.Total)

			updated, err = env.domain.RemoveComboItem(ctx, order.Code, combo.ComboCode)
			require.NoError(t, err)
			assert.Empty(t, updated.Combos)
			assert.Equal(t, int64(3000), updated.Total)
		})
	}

	for _, status := range []model.OrderStatus{
		model.OrderStatusInPreparation,
		model.OrderStatusReady,
		model.OrderStatusFinalized,
		model.OrderStatusCancelled,
	} {
		t.Run("locked "+status.String(), func(t *testing.T) {
			env := newTestEnv(t)
			order, err := env.domain.CreateOrder(ctx, nil, &model.CreateOrderRequest{
				Combos: []*model.ComboItemRequest{{ComboCode: 5, Quantity: 1, UnitPrice: 1200}},
			})
			require.NoError(t, err)
			env.driveTo(t, order.Code, status)

			_, err = env.domain.AddComboItem(ctx, order.Code, combo)
			assert.ErrorIs(t, err, ErrOrderNotEditable)

			_, err = env.domain.RemoveComboItem(ctx, order.Code, combo.ComboCode)
			assert.ErrorIs(t, err, ErrOrderNotEditable)

			stored, err := env.domain.GetOrder(ctx, order.Code)
			require.NoError(t, err)
			assert.Len(t, stored.Combos, 1)
		})
	}

	t.Run("adding the same combo accumulates quantity", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)

		_, err := env.domain.AddComboItem(ctx, order.Code, combo)
		require.NoError(t, err)
		updated, err := env.domain.AddComboItem(ctx, order.Code, &model.ComboItem{ComboCode: 5, Quantity: 2, UnitPrice: 1200})
		require.NoError(t, err)

		require.Len(t, updated.Combos, 1)
		assert.Equal(t, 3, updated.Combos[0].Quantity)
		assert.Equal(t, int64(3000+3600), updated.Total)
	})

	t.Run("invalid combo", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)

		_, err := env.domain.AddComboItem(ctx, order.Code, &model.ComboItem{ComboCode: 0, Quantity: 1})
		assert.ErrorIs(t, err, ErrInvalidComboItem)
		_, err = env.domain.AddComboItem(ctx, order.Code, nil)
		assert.ErrorIs(t, err, ErrInvalidComboItem)
	})
}

func TestOrderDomain_Boards(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	statuses := []model.OrderStatus{
		model.OrderStatusReady,
		model.OrderStatusConfirmed,
		model.OrderStatusCreated,
		model.OrderStatusInPreparation,
		model.OrderStatusConfirmed,
		model.OrderStatusFinalized,
		model.OrderStatusReady,
	}
	codes := make([]int64, len(statuses))
	for i, s := range statuses {
		order := env.createOrder(t)
		codes[i] = order.Code
		env.driveTo(t, order.Code, s)
		env.advance(time.Minute)
	}

	t.Run("kitchen queue", func(t *testing.T) {
		queue, err := env.domain.ListKitchenQueue(ctx)
		require.NoError(t, err)

		var got []int64
		for _, p := range queue {
			got = append(got, p.Code)
		}
		assert.Equal(t, []int64{codes[1], codes[3], codes[4]}, got)
	})

	t.Run("monitor board", func(t *testing.T) {
		board, err := env.domain.ListMonitorBoard(ctx)
		require.NoError(t, err)

		var got []int64
		for _, p := range board {
			got = append(got, p.Code)
		}
		assert.Equal(t, []int64{codes[0], codes[6], codes[3], codes[1], codes[4]}, got)
		assert.Equal(t, 2, board[0].ItemCount)
	})
}

func TestOrderDomain_ExpireAwaitingPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled by default", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.createOrder(t)
		_, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodPix)
		require.NoError(t, err)
		env.advance(24 * time.Hour)

		n, err := env.domain.ExpireAwaitingPayment(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, model.OrderStatusAwaitingPayment, env.status(t, order.Code))
	})

	t.Run("cancels stale confirmations only", func(t *testing.T) {
		env := newTestEnv(t, withTTL(10*time.Minute))
		stale := env.createOrder(t)
		fresh := env.createOrder(t)
		untouched := env.createOrder(t)

		_, err := env.domain.BeginPaymentConfirmation(ctx, stale.Code, nil, model.PaymentMethodPix)
		require.NoError(t, err)
		env.advance(9 * time.Minute)
		_, err = env.domain.BeginPaymentConfirmation(ctx, fresh.Code, nil, model.PaymentMethodPix)
		require.NoError(t, err)
		env.advance(2 * time.Minute)

		n, err := env.domain.ExpireAwaitingPayment(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, model.OrderStatusCancelled, env.status(t, stale.Code))
		assert.Equal(t, model.OrderStatusAwaitingPayment, env.status(t, fresh.Code))
		assert.Equal(t, model.OrderStatusCreated, env.status(t, untouched.Code))
	})

	t.Run("retry restarts the deadline", func(t *testing.T) {
		env := newTestEnv(t, withTTL(10*time.Minute))
		order := env.createOrder(t)

		_, err := env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodPix)
		require.NoError(t, err)
		env.advance(8 * time.Minute)
		_, err = env.domain.BeginPaymentConfirmation(ctx, order.Code, nil, model.PaymentMethodPix)
		require.NoError(t, err)
		env.advance(8 * time.Minute)

		n, err := env.domain.ExpireAwaitingPayment(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
