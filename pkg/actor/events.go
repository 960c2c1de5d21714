package actor

import "time"

type LifecycleEventType string

// The different kinds of lifecycle events that an actor can emit.
const (
	EventCreated  LifecycleEventType = "created"
	EventRunning  LifecycleEventType = "running"
	EventDraining LifecycleEventType = "draining"
	EventStopped  LifecycleEventType = "stopped"
	EventRemoved  LifecycleEventType = "removed"
	EventFailed   LifecycleEventType = "failed"
)

// LifecycleEvent objects are emitted by the system as an actor undergoes
// changes to its state.
type LifecycleEvent struct {
	Sender  *Ref
	Type    LifecycleEventType
	Time    time.Time
	Error   error
	Details string
}

// State is the lifecycle state of an actor as seen by the runtime.
type State int32

const (
	Created  State = iota // Constructed, worker not started yet.
	Running               // Worker is waiting for or processing messages.
	Draining              // Interrupted: no new messages, queued ones still processed.
	Stopped               // Mailbox drained and worker exited.
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// fire and forget
func (s *System) lifecycleEvent(e LifecycleEvent) {
	if s.events == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	if err := s.events.Add(e); err != nil {
		s.logger.Debug("Dropped lifecycle event", "type", e.Type, "ref", e.Sender, "err", err)
	}
}
