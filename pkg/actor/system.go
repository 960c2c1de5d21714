package actor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/informalsystems/go-actor/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// System is the registry of live actors and owns their lifecycle. All of its
// methods are safe for concurrent use. There is no global system: create one
// with NewSystem and pass it to whoever needs it.
type System struct {
	name             string
	logger           logging.Logger
	refFactory       RefFactory
	mailboxFactory   MailboxFactory
	events           eventSink
	registry         *prometheus.Registry
	metricsNamespace string
	metrics          *systemMetrics

	mtx    sync.RWMutex
	actors map[*Ref]*cell
}

type eventSink interface {
	Add(e LifecycleEvent) error
}

// NewSystem creates an empty actor system.
func NewSystem(opts ...SystemOption) *System {
	s := &System{
		refFactory:       DefaultRefFactory,
		mailboxFactory:   UnboundedMailboxes,
		metricsNamespace: defaultMetricsNamespace,
		actors:           make(map[*Ref]*cell),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.name) == 0 {
		s.name = "system-" + newRefID()[:8]
	}
	if s.logger == nil {
		s.logger = logging.NewLogrusLogger("actor", "system", s.name)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = newSystemMetrics(s.registry, s.metricsNamespace, s.name)
	return s
}

// Name returns the name of the system.
func (s *System) Name() string {
	return s.name
}

// Gatherer exposes the system's metrics, e.g. for promhttp.HandlerFor.
func (s *System) Gatherer() prometheus.Gatherer {
	return s.registry
}

// NewRef builds a ref belonging to this system. It is intended for custom
// RefFactory implementations; the ref addresses nothing until ActorOf
// registers it.
func (s *System) NewRef(id string, mode Mode) *Ref {
	return &Ref{id: id, mode: mode, system: s}
}

// ActorOf creates a new actor using the given factory, registers it and
// starts its worker. On failure it returns an *ErrInstantiation and nothing
// is registered.
func (s *System) ActorOf(f Factory, opts ...Option) (*Ref, error) {
	o := spawnOpts{mode: Local}
	for _, opt := range opts {
		opt(&o)
	}
	ref, err := s.refFactory(s, o.mode)
	if err == nil && (ref == nil || ref.system != s) {
		err = fmt.Errorf("ref factory returned a ref that does not belong to system %s", s.name)
	}
	if err != nil {
		return nil, s.instantiationFailed(err)
	}

	a, err := instantiate(f, ref.id)
	if err != nil {
		return nil, s.instantiationFailed(err)
	}
	for _, p := range o.props {
		p(a)
	}

	ctx := &Context{self: ref, system: s}
	if starter, ok := a.(Starter); ok {
		if err := starter.OnStart(ctx); err != nil {
			return nil, s.instantiationFailed(fmt.Errorf("OnStart() call failed: %w", err))
		}
	}

	mbox := o.mailbox
	if mbox == nil {
		mbox = s.mailboxFactory()
	}
	c := newCell(s, ctx, a, mbox)

	if s.registered(ref) {
		return nil, s.instantiationFailed(fmt.Errorf("ref %s is already registered", ref))
	}
	// Created must be out before the ref is visible to Stop and StopAll
	s.lifecycleEvent(LifecycleEvent{Sender: ref, Type: EventCreated})

	s.mtx.Lock()
	if _, exists := s.actors[ref]; exists {
		s.mtx.Unlock()
		err := fmt.Errorf("ref %s is already registered", ref)
		s.lifecycleEvent(LifecycleEvent{Sender: ref, Type: EventFailed, Error: err, Details: "registration failed"})
		return nil, s.instantiationFailed(err)
	}
	s.actors[ref] = c
	s.mtx.Unlock()

	s.metrics.spawnedTotal.Inc()
	s.metrics.liveActors.Inc()
	s.logger.Debug("Spawned actor", "ref", ref, "mode", o.mode)

	c.start()
	return ref, nil
}

func instantiate(f Factory, id string) (a Actor, err error) {
	if f == nil {
		return nil, errors.New("nil actor factory")
	}
	defer func() {
		if r := recover(); r != nil {
			a, err = nil, fmt.Errorf("actor factory panicked: %v", r)
		}
	}()
	a, err = f(id)
	if err == nil && a == nil {
		err = errors.New("actor factory returned a nil actor")
	}
	return a, err
}

func (s *System) instantiationFailed(cause error) error {
	s.metrics.instantiateFailed.Inc()
	s.logger.Error("Failed to create actor", "err", cause)
	return &ErrInstantiation{Cause: cause}
}

// Send resolves `to` and queues msg in its mailbox, tagged with `from` as the
// sender (which may be NoSender).
func (s *System) Send(msg Message, to, from *Ref) error {
	c, err := s.lookup(to)
	if err != nil {
		s.metrics.notFoundTotal.Inc()
		return err
	}
	if err := c.storeMessage(msg, from); err != nil {
		s.metrics.rejectedTotal.Inc()
		s.logger.Debug("Message rejected", "to", to, "from", from, "err", err)
		return err
	}
	s.metrics.acceptedTotal.Inc()
	return nil
}

// ActorByRef returns the actor behind ref. It is meant for routing and
// inspection, not for mutating actor state from outside its own goroutine.
func (s *System) ActorByRef(ref *Ref) (Actor, error) {
	c, err := s.lookup(ref)
	if err != nil {
		return nil, err
	}
	return c.actor, nil
}

// StateOf reports the lifecycle state of the actor behind ref.
func (s *System) StateOf(ref *Ref) (State, error) {
	c, err := s.lookup(ref)
	if err != nil {
		return Stopped, err
	}
	return c.getState(), nil
}

// Interrupt stops the actor from accepting new messages and returns without
// waiting for its mailbox to drain. The actor stays registered until Stop is
// called for it. Interrupting twice fails with ErrAlreadyStopped.
func (s *System) Interrupt(ref *Ref) error {
	c, err := s.lookup(ref)
	if err != nil {
		return err
	}
	return c.interrupt()
}

// Stop interrupts the actor, waits until every message it had already
// accepted has been processed, and then removes it from the registry. Sends
// that resolved the ref before removal therefore still reach a live (if
// draining) mailbox. If the actor was already interrupted, Stop just waits
// for the drain and removes it.
//
// An actor must not Stop itself from inside Receive, since it would wait on
// its own drain forever; it should use Context.StopSelf instead.
func (s *System) Stop(ref *Ref) error {
	c, err := s.lookup(ref)
	if err != nil {
		return err
	}
	if err := c.interrupt(); err != nil && !IsAlreadyStopped(err) {
		return err
	}
	<-c.done
	s.remove(ref, c)
	return nil
}

// StopAll stops every actor registered at the time of the call, one after
// the other. Actors removed concurrently by someone else are skipped, so
// calling StopAll again (or concurrently) is harmless.
func (s *System) StopAll() {
	refs := s.Refs()
	s.logger.Debug("Stopping all actors", "count", len(refs))
	for _, ref := range refs {
		if err := s.Stop(ref); err != nil && !IsNotFound(err) {
			s.logger.Error("Failed to stop actor", "ref", ref, "err", err)
		}
	}
}

// Refs returns a snapshot of the refs currently registered.
func (s *System) Refs() []*Ref {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	refs := make([]*Ref, 0, len(s.actors))
	for ref := range s.actors {
		refs = append(refs, ref)
	}
	return refs
}

// Len returns the number of actors currently registered.
func (s *System) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.actors)
}

// Lookup finds a registered ref by its ID.
func (s *System) Lookup(id string) (*Ref, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	for ref := range s.actors {
		if ref.id == id {
			return ref, nil
		}
	}
	return nil, &ErrNotFound{Ref: s.NewRef(id, Local)}
}

func (s *System) registered(ref *Ref) bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	_, ok := s.actors[ref]
	return ok
}

func (s *System) lookup(ref *Ref) (*cell, error) {
	if ref == nil {
		return nil, &ErrNotFound{Ref: ref}
	}
	s.mtx.RLock()
	c, ok := s.actors[ref]
	s.mtx.RUnlock()
	if !ok {
		return nil, &ErrNotFound{Ref: ref}
	}
	return c, nil
}

// remove only deletes the entry if it still belongs to c; the first of any
// concurrent stoppers wins.
func (s *System) remove(ref *Ref, c *cell) {
	s.mtx.Lock()
	cur, ok := s.actors[ref]
	removed := ok && cur == c
	if removed {
		delete(s.actors, ref)
	}
	s.mtx.Unlock()

	if removed {
		s.metrics.liveActors.Dec()
		s.metrics.stoppedTotal.Inc()
		s.lifecycleEvent(LifecycleEvent{Sender: ref, Type: EventRemoved})
		s.logger.Debug("Stopped actor", "ref", ref)
	}
}

// stopAsync is Stop for an actor stopping itself: waiting for the drain on
// its own goroutine would never return. Like Stop, it also removes an actor
// that someone else has already interrupted.
func (s *System) stopAsync(ref *Ref) error {
	c, err := s.lookup(ref)
	if err != nil {
		return err
	}
	if err := c.interrupt(); err != nil && !IsAlreadyStopped(err) {
		return err
	}
	go func() {
		<-c.done
		s.remove(ref, c)
	}()
	return nil
}
