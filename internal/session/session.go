// Package session is the composition root of client sessions: every session
// owns its state store, its namespaced local cache and its realtime
// subscriptions.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"harbor/internal/infra/cache"
	"harbor/internal/realtime"
	"harbor/internal/state"
	"harbor/internal/usecase"
)

// Session is one signed-in (or signing-in) client.
type Session struct {
	ID       string
	Store    *state.Store
	Cache    *cache.SessionCache
	Auth     usecase.AuthUsecase
	Realtime *realtime.Manager

	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu           sync.Mutex
	form         *usecase.RegistrationForm
	stopMessages realtime.Unsubscribe
	watching     string
	lastSeen     time.Time
}

// Context is cancelled when the session is closed.
func (s *Session) Context() context.Context {
	return s.ctx
}

// State returns the session's current state tree.
func (s *Session) State() state.State {
	return s.Store.State()
}

// UserID returns the signed-in user's id, or "".
func (s *Session) UserID() string {
	return s.Store.State().CurrentUserID()
}

// Registration runs fn on the session's registration form, starting a new
// form at step 1 when none is in progress.
func (s *Session) Registration(fn func(form *usecase.RegistrationForm) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.form == nil {
		s.form = usecase.NewRegistrationForm()
	}

	return fn(s.form)
}

// ResumeRegistration replaces the form with one resuming at the port step.
func (s *Session) ResumeRegistration(pending state.PendingIdentity) *usecase.RegistrationForm {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.form = usecase.ResumeRegistration(pending)

	return s.form
}

// ResetRegistration discards the registration in progress.
func (s *Session) ResetRegistration() {
	s.mu.Lock()
	s.form = nil
	s.mu.Unlock()
}

// WatchChats streams the user's chat list into the store until the session
// ends or the user signs in again. Streams held for a previously signed-in
// user are stopped first.
func (s *Session) WatchChats(uid string) error {
	s.mu.Lock()
	prev := s.watching
	s.watching = uid
	s.mu.Unlock()

	if prev != "" && prev != uid {
		s.StopWatchingMessages()
		s.Realtime.StopUser(prev)
		s.logger.Debug("Stopped previous user's streams", slog.String("user_id", prev))
	}

	_, err := s.Realtime.SubscribeChats(s.ctx, s.Store, uid)

	return err
}

// WatchMessages streams the selected chat's messages into the store. A
// previous messages subscription of uid is replaced.
func (s *Session) WatchMessages(chatID, uid string) error {
	unsubscribe, err := s.Realtime.SubscribeMessages(s.ctx, s.Store, chatID, uid)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.stopMessages = unsubscribe
	s.mu.Unlock()

	return nil
}

// StopWatchingMessages ends the selected chat's message stream, if any.
func (s *Session) StopWatchingMessages() {
	s.mu.Lock()
	stop := s.stopMessages
	s.stopMessages = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return now.Sub(s.lastSeen)
}

func (s *Session) close() {
	s.Realtime.Close()
	s.cancel()
}
