package monitor

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/informalsystems/go-actor/internal/logging"
	"github.com/informalsystems/go-actor/pkg/actor"
	"github.com/informalsystems/go-actor/pkg/mailbox"
)

const (
	defaultSubscriberBufSize = 100
	defaultWSWriteTimeout    = 10 * time.Second
	defaultWSPongWait        = 30 * time.Second
	defaultWSPingPeriod      = (defaultWSPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// EventMsg is the JSON form of an actor.LifecycleEvent sent to /events
// subscribers.
type EventMsg struct {
	Ref     string    `json:"ref"`
	Type    string    `json:"type"`
	Time    time.Time `json:"time"`
	Error   string    `json:"error,omitempty"`
	Details string    `json:"details,omitempty"`
}

func newEventMsg(e actor.LifecycleEvent) EventMsg {
	msg := EventMsg{
		Ref:     e.Sender.String(),
		Type:    string(e.Type),
		Time:    e.Time,
		Details: e.Details,
	}
	if e.Error != nil {
		msg.Error = e.Error.Error()
	}
	return msg
}

// eventHub reads lifecycle events off the system's event queue and fans them
// out to every connected subscriber. Each subscriber gets its own bounded
// queue: when a slow client's queue is full, further events for that client
// are dropped rather than holding up the others.
type eventHub struct {
	events  mailbox.Mailbox[actor.LifecycleEvent]
	bufSize int
	logger  logging.Logger

	mtx         sync.Mutex
	stopped     bool
	subscribers map[*mailbox.Queue[[]byte]]struct{}
	done        chan struct{} // Closed once run has returned.
}

func newEventHub(events mailbox.Mailbox[actor.LifecycleEvent], bufSize int, logger logging.Logger) *eventHub {
	if bufSize <= 0 {
		bufSize = defaultSubscriberBufSize
	}
	return &eventHub{
		events:      events,
		bufSize:     bufSize,
		logger:      logger,
		subscribers: make(map[*mailbox.Queue[[]byte]]struct{}),
		done:        make(chan struct{}),
	}
}

func (h *eventHub) run() {
	defer close(h.done)
	for {
		e, err := h.events.Take()
		if err != nil {
			if !errors.As(err, &mailbox.ErrClosed{}) {
				h.logger.Error("Failed to read lifecycle event", "err", err)
			}
			return
		}
		data, err := json.Marshal(newEventMsg(e))
		if err != nil {
			h.logger.Error("Failed to marshal lifecycle event", "err", err)
			continue
		}
		h.broadcast(data)
	}
}

func (h *eventHub) broadcast(data []byte) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	for sub := range h.subscribers {
		if err := sub.Add(data); err != nil {
			h.logger.Debug("Dropped event for slow subscriber", "err", err)
		}
	}
}

func (h *eventHub) subscribe() (*mailbox.Queue[[]byte], error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.stopped {
		return nil, errors.New("event stream has been shut down")
	}
	sub := mailbox.New[[]byte](mailbox.MaxCapacity(h.bufSize), mailbox.OverflowStrategyFail)
	h.subscribers[sub] = struct{}{}
	return sub, nil
}

func (h *eventHub) unsubscribe(sub *mailbox.Queue[[]byte]) {
	h.mtx.Lock()
	delete(h.subscribers, sub)
	h.mtx.Unlock()
	sub.Close()
}

func (h *eventHub) subscriberCount() int {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return len(h.subscribers)
}

// stop closes the event queue and every subscriber queue, which ends each
// subscriber's writer once it has flushed what it already has.
func (h *eventHub) stop() {
	h.mtx.Lock()
	if h.stopped {
		h.mtx.Unlock()
		return
	}
	h.stopped = true
	subs := make([]*mailbox.Queue[[]byte], 0, len(h.subscribers))
	for sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mtx.Unlock()

	h.events.Close()
	for _, sub := range subs {
		sub.Close()
	}
}

func (h *eventHub) newWebSocketHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := h.subscribe()
		if err != nil {
			respond(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.unsubscribe(sub)
			h.logger.Error("Error while attempting to upgrade incoming WebSockets connection", "err", err)
			return
		}
		defer conn.Close()
		h.logger.Debug("Received incoming WebSockets connection", "remote", r.RemoteAddr)

		go h.readLoop(conn, sub)
		h.writeLoop(conn, sub)
		h.unsubscribe(sub)
		h.logger.Debug("WebSockets subscriber disconnected", "remote", r.RemoteAddr)
	}
}

// readLoop only exists to process control frames. Subscribers are not
// expected to send anything; the loop ends when the connection does.
func (h *eventHub) readLoop(conn *websocket.Conn, sub *mailbox.Queue[[]byte]) {
	defer h.unsubscribe(sub)
	_ = conn.SetReadDeadline(time.Now().Add(defaultWSPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(defaultWSPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *eventHub) writeLoop(conn *websocket.Conn, sub *mailbox.Queue[[]byte]) {
	pingTicker := time.NewTicker(defaultWSPingPeriod)
	defer pingTicker.Stop()

	msgc := make(chan []byte)
	go func() {
		defer close(msgc)
		for {
			data, err := sub.Take()
			if err != nil {
				return
			}
			msgc <- data
		}
	}()

	for {
		select {
		case data, ok := <-msgc:
			_ = conn.SetWriteDeadline(time.Now().Add(defaultWSWriteTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("Failed to write to WebSockets subscriber", "err", err)
				sub.Close()
				// drain so the pump goroutine can exit
				for range msgc {
				}
				return
			}

		case <-pingTicker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(defaultWSWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sub.Close()
				for range msgc {
				}
				return
			}
		}
	}
}
