package monitor

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/informalsystems/go-actor/internal/logging"
	"github.com/informalsystems/go-actor/pkg/actor"
	"github.com/informalsystems/go-actor/pkg/mailbox"
	"github.com/stretchr/testify/require"
)

func newMonitoredSystem(t *testing.T, cfg Config) (*actor.System, *Server) {
	events := mailbox.New[actor.LifecycleEvent]()
	sys := actor.NewSystem(
		actor.WithName("monitored"),
		actor.WithLogger(logging.NewNoopLogger()),
		actor.WithLifecycleEvents(events),
	)
	srv := NewServer(sys, cfg, WithEvents(events), WithLogger(logging.NewNoopLogger()))
	return sys, srv
}

func TestMetricsEndpoint(t *testing.T) {
	sys, srv := newMonitoredSystem(t, Config{})
	defer sys.StopAll()
	_, err := sys.ActorOf(actor.Func(idle))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	r, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer r.Body.Close()
	require.Equal(t, http.StatusOK, r.StatusCode)
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `actor_live_actors{system="monitored"} 1`)
	require.Contains(t, string(body), `actor_spawned_total{system="monitored"} 1`)
}

func TestAdminDisabledWithoutUsername(t *testing.T) {
	_, srv := newMonitoredSystem(t, Config{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	r, err := http.Post(ts.URL+"/admin", "text/plain", strings.NewReader("stop"))
	require.NoError(t, err)
	defer r.Body.Close()
	require.Equal(t, http.StatusNotFound, r.StatusCode)
}

func TestEventStream(t *testing.T) {
	sys, srv := newMonitoredSystem(t, Config{})
	go srv.hub.run()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/events", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Equal(t, 1, srv.hub.subscriberCount())

	ref, err := sys.ActorOf(actor.Func(idle))
	require.NoError(t, err)
	require.NoError(t, sys.Stop(ref))

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for _, expected := range []actor.LifecycleEventType{
		actor.EventCreated,
		actor.EventRunning,
		actor.EventDraining,
		actor.EventStopped,
		actor.EventRemoved,
	} {
		var msg EventMsg
		require.NoError(t, conn.ReadJSON(&msg))
		require.Equal(t, string(expected), msg.Type)
		require.Equal(t, ref.ID(), msg.Ref)
		require.False(t, msg.Time.IsZero())
	}

	// shutting the hub down closes the stream cleanly
	srv.hub.stop()
	_, _, err = conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
	require.Eventually(t, func() bool { return srv.hub.subscriberCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestSubscriberDisconnectUnsubscribes(t *testing.T) {
	_, srv := newMonitoredSystem(t, Config{})
	go srv.hub.run()
	defer srv.hub.stop()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/events", nil)
	require.NoError(t, err)
	require.Equal(t, 1, srv.hub.subscriberCount())
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return srv.hub.subscriberCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	events := mailbox.New[actor.LifecycleEvent]()
	hub := newEventHub(events, 2, logging.NewNoopLogger())
	sub, err := hub.subscribe()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		hub.broadcast([]byte("event"))
	}
	require.Equal(t, 2, sub.Len())

	hub.stop()
	_, err = hub.subscribe()
	require.Error(t, err)
	require.True(t, sub.Closed())
	require.True(t, events.Closed())
}

func TestServerStartStop(t *testing.T) {
	sys, srv := newMonitoredSystem(t, Config{BindAddr: "127.0.0.1:0"})
	defer sys.StopAll()
	srv.Start()
	require.NoError(t, srv.Stop(context.Background()))

	select {
	case <-srv.hub.done:
	case <-time.After(time.Second):
		t.Fatal("event fan-out did not stop with the server")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, DefaultBindAddr, cfg.BindAddr)
	require.Empty(t, cfg.AdminUsername)
	require.Equal(t, defaultSubscriberBufSize, cfg.SubscriberBufSize)
}
