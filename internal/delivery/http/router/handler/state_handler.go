package handler

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	deliverycontext "harbor/internal/delivery/context"
	"harbor/internal/delivery/http/middleware"
	"harbor/internal/delivery/http/response"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/errors"
	"harbor/internal/session"
	"harbor/internal/state"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsReadLimit  = 512

	eventSnapshot = "SNAPSHOT"
	eventAction   = "ACTION"
)

// StateHandler exposes the session's state tree.
type StateHandler struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewStateHandler is the constructor for StateHandler, injected by Fx.
func NewStateHandler(logger *slog.Logger) *StateHandler {
	return &StateHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Origins are governed by the CORS middleware.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// stateEvent is one websocket frame: the whole tree after an action.
type stateEvent struct {
	Type   string      `json:"type"`
	Action string      `json:"action,omitempty"`
	State  state.State `json:"state"`
}

// GetState returns the session's state tree.
func (h *StateHandler) GetState(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return errors.WithStack(domainerrors.ErrUnauthenticated)
	}

	return response.Success(c, http.StatusOK, sess.State())
}

// StreamState upgrades to a websocket that receives a snapshot followed by
// the tree after every dispatched action. A slow client skips intermediate
// trees but always receives the latest one.
func (h *StateHandler) StreamState(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return errors.WithStack(domainerrors.ErrUnauthenticated)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already answered the client
		return nil
	}
	defer conn.Close()

	logger := deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger)

	stream := newLatestEvent()
	unsubscribe := sess.Store.Subscribe(func(s state.State, a state.Action) {
		stream.push(stateEvent{Type: eventAction, Action: string(a.Type()), State: s})
	})
	defer unsubscribe()

	if err := writeEvent(conn, stateEvent{Type: eventSnapshot, State: sess.State()}); err != nil {
		return nil
	}

	closed := readUntilClosed(conn)
	h.writeLoop(conn, sess, stream, closed, logger)

	return nil
}

func (h *StateHandler) writeLoop(conn *websocket.Conn, sess *session.Session, stream *latestEvent, closed <-chan struct{}, logger *slog.Logger) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-sess.Context().Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
				time.Now().Add(wsWriteWait))

			return
		case <-stream.ready:
			ev, ok := stream.take()
			if !ok {
				continue
			}
			if err := writeEvent(conn, ev); err != nil {
				logger.Debug("State stream write failed", slog.Any("error", err))

				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, ev stateEvent) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(conn.WriteJSON(ev))
}

// readUntilClosed drains client frames so that control frames are handled,
// and closes the returned channel when the connection ends.
func readUntilClosed(conn *websocket.Conn) <-chan struct{} {
	closed := make(chan struct{})

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	go func() {
		defer close(closed)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return closed
}

// latestEvent keeps only the newest pending event.
type latestEvent struct {
	mu    sync.Mutex
	ev    *stateEvent
	ready chan struct{}
}

func newLatestEvent() *latestEvent {
	return &latestEvent{ready: make(chan struct{}, 1)}
}

func (l *latestEvent) push(ev stateEvent) {
	l.mu.Lock()
	l.ev = &ev
	l.mu.Unlock()

	select {
	case l.ready <- struct{}{}:
	default:
	}
}

func (l *latestEvent) take() (stateEvent, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ev == nil {
		return stateEvent{}, false
	}
	ev := *l.ev
	l.ev = nil

	return ev, true
}
