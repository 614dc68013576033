// Package readmodel keeps the latest known habit records per user.
//
// The store is the local authoritative view: services write optimistic
// results into it before persisting and put the previous snapshot back when
// the write fails. Remote changes arrive through Follow.
package readmodel

import (
	"context"
	"sort"
	"sync"

	"habit-garden/internal/domain/entity"

	"github.com/google/uuid"
)

// Store is safe for concurrent use. Records are copied in and out.
type Store struct {
	mu    sync.RWMutex
	users map[uuid.UUID]map[uuid.UUID]*entity.Habit
	// deleted ids per user; habit ids are never reused
	deleted map[uuid.UUID]map[uuid.UUID]struct{}
}

func New() *Store {
	return &Store{
		users:   make(map[uuid.UUID]map[uuid.UUID]*entity.Habit),
		deleted: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// Put stores a copy of habit unless the store already holds a newer version
// of it or it was deleted. It reports whether the record was stored.
func (s *Store) Put(habit *entity.Habit) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, gone := s.deleted[habit.UserID][habit.ID]; gone {
		return false
	}
	if prev, ok := s.users[habit.UserID][habit.ID]; ok && prev.UpdatedAt.After(habit.UpdatedAt) {
		return false
	}
	s.put(habit)
	return true
}

// Restore puts back a snapshot regardless of its age. Used to revert an
// optimistic record after its write failed.
func (s *Store) Restore(habit *entity.Habit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, gone := s.deleted[habit.UserID][habit.ID]; gone {
		return
	}
	s.put(habit)
}

func (s *Store) put(habit *entity.Habit) {
	habits := s.users[habit.UserID]
	if habits == nil {
		habits = make(map[uuid.UUID]*entity.Habit)
		s.users[habit.UserID] = habits
	}
	habits[habit.ID] = habit.Clone()
}

// Remove drops a habit and returns the removed snapshot, if any. Later
// changes for the same habit are ignored.
func (s *Store) Remove(userID, habitID uuid.UUID) *entity.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.users[userID][habitID]
	delete(s.users[userID], habitID)
	if s.deleted[userID] == nil {
		s.deleted[userID] = make(map[uuid.UUID]struct{})
	}
	s.deleted[userID][habitID] = struct{}{}
	return prev
}

// Get returns a copy of one habit
func (s *Store) Get(userID, habitID uuid.UUID) (*entity.Habit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.users[userID][habitID]
	if !ok {
		return nil, false
	}
	return h.Clone(), true
}

// Loaded reports whether the user's habits have been seeded
func (s *Store) Loaded(userID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[userID]
	return ok
}

// Replace seeds the user's full habit set
func (s *Store) Replace(userID uuid.UUID, habits []*entity.Habit) {
	m := make(map[uuid.UUID]*entity.Habit, len(habits))
	for _, h := range habits {
		m[h.ID] = h.Clone()
	}
	s.mu.Lock()
	s.users[userID] = m
	delete(s.deleted, userID)
	s.mu.Unlock()
}

// Snapshot returns copies of the user's habits, oldest first
func (s *Store) Snapshot(userID uuid.UUID) []*entity.Habit {
	s.mu.RLock()
	out := make([]*entity.Habit, 0, len(s.users[userID]))
	for _, h := range s.users[userID] {
		out = append(out, h.Clone())
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Apply folds a change notification into the store. Changes for users that
// were never seeded are dropped; their first read loads from storage.
func (s *Store) Apply(change entity.HabitChange) {
	if !s.Loaded(change.UserID) {
		return
	}
	switch change.Kind {
	case entity.ChangeUpserted, entity.ChangeWriteFailed:
		if change.Habit != nil {
			s.Put(change.Habit)
		}
	case entity.ChangeDeleted:
		s.Remove(change.UserID, change.HabitID)
	}
}

// Follow applies changes from ch until it closes or ctx is done
func (s *Store) Follow(ctx context.Context, ch <-chan entity.HabitChange) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-ch:
			if !ok {
				return
			}
			s.Apply(change)
		}
	}
}
