package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"habit-garden/internal/domain/entity"
	"habit-garden/internal/domain/repository"
	"habit-garden/internal/domain/service"

	"github.com/google/uuid"
)

type recordingNotifier struct {
	mu      sync.Mutex
	changes []entity.HabitChange
}

func (n *recordingNotifier) Publish(ctx context.Context, change entity.HabitChange) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
	return nil
}

func (n *recordingNotifier) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan entity.HabitChange, error) {
	return nil, errors.New("not supported")
}

func (n *recordingNotifier) kinds() []entity.ChangeKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]entity.ChangeKind, 0, len(n.changes))
	for _, c := range n.changes {
		out = append(out, c.Kind)
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []service.HabitEvent
	err    error
}

func (p *recordingPublisher) PublishHabitEvent(ctx context.Context, event service.HabitEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []service.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]service.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// flakyHabitRepository fails Replace a configured number of times and can
// hold a Replace until released
type flakyHabitRepository struct {
	repository.HabitRepository

	mu       sync.Mutex
	failures int
	failWith error
	replaces int

	started chan struct{} // receives once a held Replace has begun
	release chan struct{}
}

func (r *flakyHabitRepository) hold() {
	r.mu.Lock()
	r.started = make(chan struct{}, 1)
	r.release = make(chan struct{})
	r.mu.Unlock()
}

func (r *flakyHabitRepository) Replace(ctx context.Context, habit *entity.Habit, expectedUpdatedAt time.Time) error {
	r.mu.Lock()
	started, release := r.started, r.release
	r.mu.Unlock()
	if release != nil {
		started <- struct{}{}
		<-release
	}

	r.mu.Lock()
	r.replaces++
	if r.failures > 0 {
		r.failures--
		r.mu.Unlock()
		return r.failWith
	}
	r.mu.Unlock()
	return r.HabitRepository.Replace(ctx, habit, expectedUpdatedAt)
}
