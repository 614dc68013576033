package memory

import (
	"context"
	"sync"

	"habit-garden/internal/domain/entity"
	"habit-garden/internal/domain/service"

	"github.com/google/uuid"
)

// subscriberBuffer bounds each subscriber queue; slow subscribers miss changes
const subscriberBuffer = 64

// Notifier fans habit changes out to in-process subscribers
type Notifier struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[chan entity.HabitChange]struct{}
}

var _ service.Notifier = (*Notifier)(nil)

// NewNotifier creates an in-process notifier
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[uuid.UUID]map[chan entity.HabitChange]struct{})}
}

func (n *Notifier) Publish(ctx context.Context, change entity.HabitChange) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for ch := range n.subs[change.UserID] {
		select {
		case ch <- change:
		default:
		}
	}
	return nil
}

func (n *Notifier) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan entity.HabitChange, error) {
	ch := make(chan entity.HabitChange, subscriberBuffer)

	n.mu.Lock()
	if n.subs[userID] == nil {
		n.subs[userID] = make(map[chan entity.HabitChange]struct{})
	}
	n.subs[userID][ch] = struct{}{}
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		delete(n.subs[userID], ch)
		if len(n.subs[userID]) == 0 {
			delete(n.subs, userID)
		}
		n.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}
