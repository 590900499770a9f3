package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/port/outbound"
)

// orderStore keeps order aggregates in process memory.
// Every read and write copies the aggregate so callers never share state.
type orderStore struct {
	mu       sync.RWMutex
	nextCode int64
	orders   map[int64]*model.Order
	payments map[string]int64 // payment code -> order code
}

// NewOrderStore creates an in-memory order store.
func NewOrderStore() outbound.OrderDatabasePort {
	return &orderStore{
		orders:   make(map[int64]*model.Order),
		payments: make(map[string]int64),
	}
}

func (s *orderStore) Create(ctx context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCode++
	order.Code = s.nextCode
	for _, item := range order.Items {
		item.OrderCode = order.Code
	}
	for _, combo := range order.Combos {
		combo.OrderCode = order.Code
	}
	s.put(order)
	return nil
}

func (s *orderStore) GetByCode(ctx context.Context, code int64) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[code]
	if !ok {
		return nil, nil
	}
	return order.Clone(), nil
}

func (s *orderStore) List(ctx context.Context, filter *model.OrderFilter, page, pageSize int) ([]*model.Order, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*model.Order
	for _, o := range s.orders {
		if filter != nil {
			if filter.Status != nil && o.Status != *filter.Status {
				continue
			}
			if filter.ClientID != nil && (o.ClientID == nil || *o.ClientID != *filter.ClientID) {
				continue
			}
		}
		matched = append(matched, o)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Code > matched[j].Code
	})

	total := int64(len(matched))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return []*model.Order{}, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}

	result := make([]*model.Order, 0, end-start)
	for _, o := range matched[start:end] {
		result = append(result, o.Clone())
	}
	return result, total, nil
}

func (s *orderStore) ListByStatus(ctx context.Context, statuses []model.OrderStatus) ([]*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[model.OrderStatus]bool, len(statuses))
	for _, st := range statuses {
		wanted[st] = true
	}

	result := make([]*model.Order, 0)
	for _, o := range s.orders {
		if wanted[o.Status] {
			result = append(result, o.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].Code < result[j].Code
	})
	return result, nil
}

func (s *orderStore) Save(ctx context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.Code]; !ok {
		return ErrNotFound
	}
	for _, p := range order.Payments {
		if owner, ok := s.payments[p.Code]; ok && owner != order.Code {
			return ErrDuplicatePaymentCode
		}
	}
	s.put(order)
	return nil
}

func (s *orderStore) GetPaymentByCode(ctx context.Context, code string) (*model.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orderCode, ok := s.payments[code]
	if !ok {
		return nil, nil
	}
	p := s.orders[orderCode].PaymentByCode(code)
	if p == nil {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// put stores a copy of the order and indexes its payment codes. Caller holds mu.
func (s *orderStore) put(order *model.Order) {
	stored := order.Clone()
	s.orders[order.Code] = stored
	for _, p := range stored.Payments {
		s.payments[p.Code] = stored.Code
	}
}
