package memory

import (
	"context"
	"sync"

	"github.com/fastorder/server/internal/port/outbound"
)

// locker serializes work per order inside a single process.
type locker struct {
	mu    sync.Mutex
	slots map[int64]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

// NewLocker creates a process-local order locker.
func NewLocker() outbound.OrderLockerPort {
	return &locker{slots: make(map[int64]*lockSlot)}
}

func (l *locker) Lock(ctx context.Context, orderCode int64) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[orderCode]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[orderCode] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(orderCode, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.release(orderCode, slot)
		})
	}, nil
}

// release drops a reference and forgets idle slots.
func (l *locker) release(orderCode int64, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, orderCode)
	}
}
