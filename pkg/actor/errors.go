package actor

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMode is returned by the default ref factory for any mode other
// than Local. Deployments that want Remote refs supply their own RefFactory.
var ErrUnsupportedMode = errors.New("actor mode not supported by this ref factory")

// ErrUnboundRef is returned when sending from a ref that does not belong to
// any system.
var ErrUnboundRef = errors.New("ref is not bound to an actor system")

type (
	// ErrNotFound indicates that a ref is unknown to the system, or that its
	// actor has already been stopped and removed.
	ErrNotFound struct {
		Ref *Ref
	}

	// ErrInstantiation indicates that ActorOf could not construct or start the
	// actor. Nothing was registered.
	ErrInstantiation struct {
		Cause error
	}

	// ErrRejectedMessage indicates that the target actor is draining or
	// stopped, so the message was not queued.
	ErrRejectedMessage struct {
		Ref *Ref
	}

	// ErrAlreadyStopped indicates a second interrupt of the same actor.
	ErrAlreadyStopped struct {
		Ref *Ref
	}

	// ErrNoSender is returned by Context.Reply when the message being
	// processed was sent without a sender.
	ErrNoSender struct {
		Ref *Ref
	}
)

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("no such actor: %s", e.Ref)
}

func (e *ErrInstantiation) Error() string {
	return fmt.Sprintf("failed to instantiate actor: %v", e.Cause)
}

func (e *ErrInstantiation) Unwrap() error {
	return e.Cause
}

func (e *ErrRejectedMessage) Error() string {
	return fmt.Sprintf("actor %s is not accepting messages", e.Ref)
}

func (e *ErrAlreadyStopped) Error() string {
	return fmt.Sprintf("actor %s is already stopped", e.Ref)
}

func (e *ErrNoSender) Error() string {
	return fmt.Sprintf("actor %s has no sender to reply to", e.Ref)
}

// IsNotFound reports whether err is, or wraps, an *ErrNotFound.
func IsNotFound(err error) bool {
	var e *ErrNotFound
	return errors.As(err, &e)
}

// IsRejected reports whether err is, or wraps, an *ErrRejectedMessage.
func IsRejected(err error) bool {
	var e *ErrRejectedMessage
	return errors.As(err, &e)
}

// IsAlreadyStopped reports whether err is, or wraps, an *ErrAlreadyStopped.
func IsAlreadyStopped(err error) bool {
	var e *ErrAlreadyStopped
	return errors.As(err, &e)
}
