package actor

import (
	"testing"

	"github.com/informalsystems/go-actor/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestSystemMetrics(t *testing.T) {
	s := NewSystem(WithLogger(logging.NewNoopLogger()), WithName("metrics"))
	done := make(chan struct{})
	ref, err := s.ActorOf(Func(func(ctx *Context, msg Message) {
		if msg == "last" {
			close(done)
		}
	}))
	require.NoError(t, err)
	_, err = s.ActorOf(nil)
	require.Error(t, err)

	require.NoError(t, s.Send("first", ref, NoSender))
	require.NoError(t, s.Send("last", ref, NoSender))
	<-done
	require.NoError(t, s.Interrupt(ref))
	require.Error(t, s.Send("rejected", ref, NoSender))
	require.NoError(t, s.Stop(ref))
	require.Error(t, s.Send("not found", ref, NoSender))

	m := s.metrics
	require.Equal(t, 0.0, testutil.ToFloat64(m.liveActors))
	require.Equal(t, 1.0, testutil.ToFloat64(m.spawnedTotal))
	require.Equal(t, 1.0, testutil.ToFloat64(m.instantiateFailed))
	require.Equal(t, 1.0, testutil.ToFloat64(m.stoppedTotal))
	require.Equal(t, 2.0, testutil.ToFloat64(m.acceptedTotal))
	require.Equal(t, 2.0, testutil.ToFloat64(m.processedTotal))
	require.Equal(t, 1.0, testutil.ToFloat64(m.rejectedTotal))
	require.Equal(t, 1.0, testutil.ToFloat64(m.notFoundTotal))
}

func TestSharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewSystem(WithLogger(logging.NewNoopLogger()), WithRegistry(reg), WithName("a"), WithMetricsNamespace("test"))
	b := NewSystem(WithLogger(logging.NewNoopLogger()), WithRegistry(reg), WithName("b"), WithMetricsNamespace("test"))
	require.Equal(t, a.Gatherer(), b.Gatherer())

	_, err := a.ActorOf(Func(func(*Context, Message) {}))
	require.NoError(t, err)
	defer a.StopAll()

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() == "test_live_actors" {
			found = true
			// one series per system
			require.Len(t, mf.GetMetric(), 2)
		}
	}
	require.True(t, found, "expected test_live_actors to be registered")
}

func TestCellStateMachine(t *testing.T) {
	s := NewSystem(WithLogger(logging.NewNoopLogger()))
	ref := s.NewRef("cell", Local)
	c := newCell(s, &Context{self: ref, system: s}, ActorFunc(func(*Context, Message) {}), UnboundedMailboxes())
	require.Equal(t, Created, c.getState())

	// messages can be queued before the worker starts
	require.NoError(t, c.storeMessage("early", NoSender))
	c.start()
	require.Equal(t, Running, c.getState())

	require.NoError(t, c.interrupt())
	require.True(t, IsAlreadyStopped(c.interrupt()))
	require.True(t, IsRejected(c.storeMessage("late", NoSender)))
	<-c.done
	require.Equal(t, Stopped, c.getState())
	require.True(t, IsAlreadyStopped(c.interrupt()))
	require.True(t, IsRejected(c.storeMessage("later", NoSender)))
	require.Equal(t, 1.0, testutil.ToFloat64(s.metrics.processedTotal))
}

func TestStateAndModeStrings(t *testing.T) {
	require.Equal(t, "created", Created.String())
	require.Equal(t, "running", Running.String())
	require.Equal(t, "draining", Draining.String())
	require.Equal(t, "stopped", Stopped.String())
	require.Equal(t, "unknown", State(42).String())
	require.Equal(t, "local", Local.String())
	require.Equal(t, "remote", Remote.String())
	require.Equal(t, "mode(7)", Mode(7).String())
}
