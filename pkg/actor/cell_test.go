package actor

import (
	"errors"
	"sync"
	"testing"

	"github.com/informalsystems/go-actor/internal/logging"
	"github.com/informalsystems/go-actor/pkg/mailbox"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func drainEvents(t *testing.T, q *mailbox.Queue[LifecycleEvent]) []LifecycleEventType {
	var types []LifecycleEventType
	for {
		e, err := q.TryTake()
		if err != nil {
			require.True(t, errors.As(err, &mailbox.ErrEmpty{}), "unexpected error: %v", err)
			return types
		}
		types = append(types, e.Type)
	}
}

func TestInterruptBeforeStart(t *testing.T) {
	events := mailbox.New[LifecycleEvent]()
	s := NewSystem(WithLogger(logging.NewNoopLogger()), WithLifecycleEvents(events))
	ref := s.NewRef("early-stop", Local)
	c := newCell(s, &Context{self: ref, system: s}, ActorFunc(func(*Context, Message) {}), UnboundedMailboxes())

	require.NoError(t, c.storeMessage("accepted", NoSender))
	require.NoError(t, c.interrupt())
	c.start()
	<-c.done

	require.Equal(t, Stopped, c.getState())
	// what was accepted before the interrupt is still processed
	require.Equal(t, 1.0, testutil.ToFloat64(s.metrics.processedTotal))
	// the actor never reached Running, so it must not claim to have
	require.Equal(t, []LifecycleEventType{EventDraining, EventStopped}, drainEvents(t, events))
}

// registrationCheckingSink records, for every Created event, whether the ref
// was already visible in the registry when the event was emitted.
type registrationCheckingSink struct {
	s *System

	mtx             sync.Mutex
	visibleOnCreate []bool
	types           []LifecycleEventType
}

func (r *registrationCheckingSink) Add(e LifecycleEvent) error {
	visible := r.s.registered(e.Sender)
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.types = append(r.types, e.Type)
	if e.Type == EventCreated {
		r.visibleOnCreate = append(r.visibleOnCreate, visible)
	}
	return nil
}

func TestCreatedEmittedBeforeRegistration(t *testing.T) {
	s := NewSystem(WithLogger(logging.NewNoopLogger()))
	sink := &registrationCheckingSink{s: s}
	s.events = sink

	for i := 0; i < 10; i++ {
		_, err := s.ActorOf(Func(func(*Context, Message) {}))
		require.NoError(t, err)
	}
	s.StopAll()

	sink.mtx.Lock()
	defer sink.mtx.Unlock()
	require.Len(t, sink.visibleOnCreate, 10)
	for _, visible := range sink.visibleOnCreate {
		require.False(t, visible, "ref was stoppable before its Created event")
	}
}

func TestDuplicateRefRegistrationFails(t *testing.T) {
	events := mailbox.New[LifecycleEvent]()
	var fixed *Ref
	s := NewSystem(
		WithLogger(logging.NewNoopLogger()),
		WithLifecycleEvents(events),
		WithRefFactory(func(s *System, mode Mode) (*Ref, error) {
			if fixed == nil {
				fixed = s.NewRef("fixed", mode)
			}
			return fixed, nil
		}),
	)
	defer s.StopAll()

	_, err := s.ActorOf(Func(func(*Context, Message) {}))
	require.NoError(t, err)
	require.Equal(t, []LifecycleEventType{EventCreated, EventRunning}, drainEvents(t, events))

	_, err = s.ActorOf(Func(func(*Context, Message) {}))
	var instErr *ErrInstantiation
	require.True(t, errors.As(err, &instErr), "expected ErrInstantiation, got %v", err)
	// rejected before anything was announced for the second actor
	require.Empty(t, drainEvents(t, events))
	require.Equal(t, 1, s.Len())
}
