package state

import (
	"log/slog"
	"slices"
	"sync"
)

// Dispatcher accepts actions. Action creators and realtime subscriptions
// depend on this interface only.
type Dispatcher interface {
	Dispatch(a Action)
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(a Action)

// Dispatch calls f(a).
func (f DispatchFunc) Dispatch(a Action) { f(a) }

// Listener observes the state after each reduction together with the action that produced it.
type Listener func(s State, a Action)

// Middleware wraps dispatch, e.g. for logging or metrics.
type Middleware func(next DispatchFunc) DispatchFunc

type subscriber struct {
	id uint64
	fn Listener
}

// Store is the state container of one client session. Reductions are
// serialized; listeners run outside the lock in subscription order.
type Store struct {
	mu          sync.Mutex
	state       State
	subscribers []subscriber
	nextID      uint64
	dispatch    DispatchFunc
}

// NewStore creates a store holding initial. Middleware is applied in the
// given order, the first one sees each action first.
func NewStore(initial State, middleware ...Middleware) *Store {
	s := &Store{state: initial}

	dispatch := DispatchFunc(s.reduce)
	for i := len(middleware) - 1; i >= 0; i-- {
		dispatch = middleware[i](dispatch)
	}
	s.dispatch = dispatch

	return s
}

// Dispatch runs a through the middleware chain and the reducers.
func (s *Store) Dispatch(a Action) {
	if a == nil {
		return
	}

	s.dispatch(a)
}

// State returns the current state tree.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Subscribe registers fn and returns a function that removes it. The returned
// function is safe to call more than once.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			s.subscribers = slices.DeleteFunc(slices.Clone(s.subscribers), func(sub subscriber) bool {
				return sub.id == id
			})
		})
	}
}

func (s *Store) reduce(a Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	subscribers := s.subscribers
	s.mu.Unlock()

	for _, sub := range subscribers {
		sub.fn(next, a)
	}
}

// LoggingMiddleware logs every dispatched action at debug and failures at warn.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next DispatchFunc) DispatchFunc {
		return func(a Action) {
			if f, ok := a.(Failure); ok {
				logger.Warn("Action failed",
					slog.String("action", string(a.Type())),
					slog.String("message", f.FailureMessage()))
			} else {
				logger.Debug("Dispatching action", slog.String("action", string(a.Type())))
			}

			next(a)
		}
	}
}
