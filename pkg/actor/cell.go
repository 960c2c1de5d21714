package actor

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/informalsystems/go-actor/pkg/mailbox"
)

// Envelope is a single mailbox item: a message together with its sender.
type Envelope struct {
	Message Message
	Sender  *Ref
}

// cell holds the runtime state of one actor: its behaviour, its mailbox and
// the single goroutine that drives it.
type cell struct {
	ref    *Ref
	actor  Actor
	ctx    *Context
	mbox   mailbox.Mailbox[Envelope]
	system *System

	state int32         // State, accessed atomically.
	done  chan struct{} // Closed once the worker has exited.
}

func newCell(s *System, ctx *Context, a Actor, mbox mailbox.Mailbox[Envelope]) *cell {
	return &cell{
		ref:    ctx.self,
		actor:  a,
		ctx:    ctx,
		mbox:   mbox,
		system: s,
		state:  int32(Created),
		done:   make(chan struct{}),
	}
}

func (c *cell) getState() State {
	return State(atomic.LoadInt32(&c.state))
}

// start spawns the worker goroutine. Must be called exactly once. If the
// actor was interrupted while still Created, it never reports Running but the
// worker still runs its drain so that waiters on done are released.
func (c *cell) start() {
	if atomic.CompareAndSwapInt32(&c.state, int32(Created), int32(Running)) {
		c.system.lifecycleEvent(LifecycleEvent{Sender: c.ref, Type: EventRunning})
	}
	go c.run()
}

// storeMessage queues the message unless the actor has been interrupted. The
// mailbox's Close is the actual cut-off: a sender that passes the state check
// just before interrupt still gets rejected by the closed mailbox.
func (c *cell) storeMessage(msg Message, sender *Ref) error {
	switch c.getState() {
	case Draining, Stopped:
		return &ErrRejectedMessage{Ref: c.ref}
	}
	if err := c.mbox.Add(Envelope{Message: msg, Sender: sender}); err != nil {
		if errors.As(err, &mailbox.ErrClosed{}) {
			return &ErrRejectedMessage{Ref: c.ref}
		}
		return fmt.Errorf("failed to store message for actor %s: %w", c.ref, err)
	}
	return nil
}

// interrupt moves the actor to Draining and closes its mailbox, which also
// wakes the worker if it is waiting.
func (c *cell) interrupt() error {
	for {
		cur := c.getState()
		if cur == Draining || cur == Stopped {
			return &ErrAlreadyStopped{Ref: c.ref}
		}
		if atomic.CompareAndSwapInt32(&c.state, int32(cur), int32(Draining)) {
			break
		}
	}
	// emitted before the cut-off so that it always precedes EventStopped
	c.system.lifecycleEvent(LifecycleEvent{Sender: c.ref, Type: EventDraining})
	c.mbox.Close()
	return nil
}

func (c *cell) run() {
	defer close(c.done)
	for {
		env, err := c.mbox.Take()
		if err != nil {
			if !errors.As(err, &mailbox.ErrClosed{}) {
				c.system.logger.Error("Mailbox failed, stopping actor", "ref", c.ref, "err", err)
			}
			break
		}
		c.deliver(env)
	}
	if stopper, ok := c.actor.(Stopper); ok {
		if err := stopper.OnStop(c.ctx); err != nil {
			c.system.logger.Error("OnStop() call failed", "ref", c.ref, "err", err)
			c.system.lifecycleEvent(LifecycleEvent{
				Sender:  c.ref,
				Type:    EventFailed,
				Details: "OnStop() call failed",
				Error:   err,
			})
		}
	}
	atomic.StoreInt32(&c.state, int32(Stopped))
	c.system.lifecycleEvent(LifecycleEvent{Sender: c.ref, Type: EventStopped})
}

func (c *cell) deliver(env Envelope) {
	c.ctx.sender = env.Sender
	c.actor.Receive(c.ctx, env.Message)
	c.ctx.sender = nil
	c.system.metrics.processedTotal.Inc()
}
