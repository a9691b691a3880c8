package middleware

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	deliverycontext "harbor/internal/delivery/context"
	"harbor/internal/domain/constants"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/errors"
	"harbor/internal/session"
)

const (
	keySession = "session"
	keyUserID  = "userID"
)

// SessionMiddleware binds requests to client sessions.
type SessionMiddleware struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewSessionMiddleware is the constructor for SessionMiddleware.
func NewSessionMiddleware(sessions *session.Manager, logger *slog.Logger) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, logger: logger}
}

// Attach resolves the session of the request's token when there is a valid
// one. Requests without a usable token pass through without a session.
func (m *SessionMiddleware) Attach(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := SessionToken(c)
		if token == "" {
			return next(c)
		}

		sess, err := m.sessions.Resolve(c.Request().Context(), token)
		if err != nil {
			deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).
				Debug("Ignoring unusable session token", slog.Any("error", err))

			return next(c)
		}

		bind(c, sess)

		return next(c)
	}
}

// Authenticate requires a session with a signed-in user.
func (m *SessionMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := SessionToken(c)
		if token == "" {
			return errors.WithStack(domainerrors.ErrUnauthenticated)
		}

		sess, err := m.sessions.Resolve(c.Request().Context(), token)
		if err != nil {
			return err
		}

		uid := sess.UserID()
		if uid == "" {
			return errors.WithStack(domainerrors.ErrUnauthenticated)
		}

		bind(c, sess)
		c.Set(keyUserID, uid)

		return next(c)
	}
}

func bind(c echo.Context, sess *session.Session) {
	c.Set(keySession, sess)

	ctx := deliverycontext.WithSessionID(c.Request().Context(), sess.ID)
	if logger := deliverycontext.GetLogger(ctx); logger != nil {
		ctx = deliverycontext.WithLogger(ctx, logger.With(slog.String("session_id", sess.ID)))
	}
	c.SetRequest(c.Request().WithContext(ctx))
}

// SessionToken reads the session token from the Authorization header, the
// session cookie or, for websocket upgrades, the query string.
func SessionToken(c echo.Context) string {
	if header := c.Request().Header.Get(constants.SessionHeader); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := c.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return c.QueryParam(constants.SessionQueryParam)
}

// SessionFrom returns the session bound to the request, or nil.
func SessionFrom(c echo.Context) *session.Session {
	sess, _ := c.Get(keySession).(*session.Session)

	return sess
}

// UserIDFrom returns the authenticated user's id, or "".
func UserIDFrom(c echo.Context) string {
	uid, _ := c.Get(keyUserID).(string)

	return uid
}
