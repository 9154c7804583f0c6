// Package identity tracks the signed-in shopper of a session and answers the
// administrator question.
package identity

import (
	"sync"

	"github.com/rosie073/shopfinalcross/internal/domain"
)

// Signal holds the current user and notifies observers when the identity
// changes. A nil user means anonymous.
type Signal struct {
	mu        sync.Mutex
	current   *domain.User
	nextID    int
	observers map[int]func(*domain.User)
	order     []int
}

func NewSignal() *Signal {
	return &Signal{observers: make(map[int]func(*domain.User))}
}

func (s *Signal) Current() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Observe calls fn with the current user right away and again after every
// identity change. The returned func stops notifications.
func (s *Signal) Observe(fn func(*domain.User)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.observers[id] = fn
	s.order = append(s.order, id)
	current := s.current
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// Set replaces the current user. Observers run only when the uid changes.
func (s *Signal) Set(u *domain.User) {
	s.mu.Lock()
	changed := uidOf(s.current) != uidOf(u)
	s.current = u
	var fns []func(*domain.User)
	if changed {
		live := s.order[:0]
		for _, id := range s.order {
			if fn, ok := s.observers[id]; ok {
				fns = append(fns, fn)
				live = append(live, id)
			}
		}
		s.order = live
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}

func uidOf(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.UID
}
