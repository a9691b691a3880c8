package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"harbor/config"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/lifecycle"
	"harbor/internal/domain/repository"
	"harbor/internal/domain/service"
	"harbor/internal/errors"
	"harbor/internal/infra/cache"
	"harbor/internal/infra/metrics"
	"harbor/internal/realtime"
	"harbor/internal/state"
	"harbor/internal/usecase"
	"harbor/internal/util"
)

const sweepInterval = time.Minute

// Manager creates, resolves and ends client sessions.
type Manager struct {
	logger  *slog.Logger
	tokens  service.TokenService
	backend cache.Backend
	auth    usecase.AuthUsecaseFactory
	chats   repository.ChatRepository
	metrics *metrics.Metrics
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool

	stopSweep chan struct{}
	sweepDone chan struct{}
}

// ManagerParams holds dependencies for Manager, injected by Fx
type ManagerParams struct {
	fx.In

	Lc      fx.Lifecycle
	Config  *config.Config
	Logger  *slog.Logger
	Tokens  service.TokenService
	Backend cache.Backend
	Auth    usecase.AuthUsecaseFactory
	Chats   repository.ChatRepository
	Metrics *metrics.Metrics `optional:"true"`
}

// NewManager creates the session manager and ties its idle sweep to the app lifecycle.
func NewManager(params ManagerParams) *Manager {
	m := newManager(params.Logger, params.Tokens, params.Backend, params.Auth, params.Chats, params.Metrics, params.Config.Session.TTL)

	params.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go m.sweepLoop()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(m.stopSweep)

			select {
			case <-m.sweepDone:
			case <-time.After(lifecycle.DefaultTimeout):
			}

			m.CloseAll()

			return nil
		},
	})

	return m
}

func newManager(
	logger *slog.Logger,
	tokens service.TokenService,
	backend cache.Backend,
	auth usecase.AuthUsecaseFactory,
	chats repository.ChatRepository,
	m *metrics.Metrics,
	idleTTL time.Duration,
) *Manager {
	return &Manager{
		logger:    logger.With(slog.String("component", "session")),
		tokens:    tokens,
		backend:   backend,
		auth:      auth,
		chats:     chats,
		metrics:   m,
		idleTTL:   idleTTL,
		now:       time.Now,
		sessions:  make(map[string]*Session),
		stopSweep: make(chan struct{}),
		sweepDone: make(chan struct{}),
	}
}

// Create opens a new anonymous session and issues its token.
func (m *Manager) Create() (*Session, string, time.Time, error) {
	id := uuid.NewString()

	token, expiresAt, err := m.tokens.IssueSessionToken(id)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	sess, err := m.open(id)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	return sess, token, expiresAt, nil
}

// Resolve returns the session of token. A valid token whose session is no
// longer live (idle sweep or restart) gets a fresh session under the same id,
// restored from the session's persisted cache.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := m.tokens.ValidateSessionToken(token)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	sess, ok := m.sessions[claims.SessionID]
	m.mu.Unlock()

	if ok {
		sess.touch(m.now())

		return sess, nil
	}

	sess, err = m.open(claims.SessionID)
	if err != nil {
		return nil, err
	}

	user, err := sess.Auth.RestoreSession(ctx, sess.Store)
	switch {
	case err == nil:
		if err := sess.WatchChats(user.ID); err != nil {
			m.logger.Warn("Failed to watch chats of restored session", slog.String("session_id", sess.ID), slog.Any("error", err))
		}
	case errors.Is(err, domainerrors.ErrUnauthenticated):
		// Nothing cached: the session simply is not signed in.
	default:
		m.logger.Warn("Failed to restore session", slog.String("session_id", sess.ID), slog.Any("error", err))
	}

	return sess, nil
}

// End closes the session and clears its cache. Used at sign-out.
func (m *Manager) End(ctx context.Context, sess *Session) {
	m.mu.Lock()
	if current, ok := m.sessions[sess.ID]; ok && current == sess {
		delete(m.sessions, sess.ID)
	}
	m.mu.Unlock()

	m.release(sess)

	if err := sess.Cache.Clear(ctx); err != nil {
		m.logger.Warn("Failed to clear session cache", slog.String("session_id", sess.ID), slog.Any("error", err))
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

// CloseAll releases every live session. Persisted caches are kept so that
// tokens stay usable across restarts.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, sess := range sessions {
		m.release(sess)
	}
}

func (m *Manager) open(id string) (*Session, error) {
	logger := m.logger.With(slog.String("session_id", id))

	middleware := []state.Middleware{state.LoggingMiddleware(logger)}
	var opts []realtime.Option
	if m.metrics != nil {
		middleware = append(middleware, m.metrics.StateMiddleware())
		opts = append(opts, realtime.WithObserver(m.metrics))
	}

	sessionCache := cache.Namespaced(m.backend, id)
	ctx, cancel := context.WithCancel(context.Background())

	sess := &Session{
		ID:       id,
		Store:    state.NewStore(state.State{}, middleware...),
		Cache:    sessionCache,
		Auth:     m.auth.ForSession(sessionCache),
		Realtime: realtime.NewManager(m.chats, logger, opts...),
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
		lastSeen: m.now(),
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		cancel()

		return nil, errors.New("session manager closed")
	}
	if prev, ok := m.sessions[id]; ok {
		// Lost a race with a concurrent restore of the same token.
		m.mu.Unlock()
		cancel()

		return prev, nil
	}
	m.sessions[id] = sess
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SessionOpened()
	}
	logger.Debug("Session opened")

	return sess, nil
}

func (m *Manager) release(sess *Session) {
	sess.close()

	if m.metrics != nil {
		m.metrics.SessionClosed()
	}
	sess.logger.Debug("Session closed")
}

func (m *Manager) sweepLoop() {
	defer close(m.sweepDone)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopSweep:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep releases sessions idle for longer than the session TTL.
func (m *Manager) sweep() {
	now := m.now()

	m.mu.Lock()
	var idle []*Session
	for id, sess := range m.sessions {
		if sess.idleSince(now) > m.idleTTL {
			idle = append(idle, sess)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, sess := range idle {
		m.release(sess)
	}

	if len(idle) > 0 {
		m.logger.Info("Released idle sessions",
			slog.Int("count", len(idle)),
			slog.String("idle_ttl", util.FormatDuration(m.idleTTL)))
	}
}
