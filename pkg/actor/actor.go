// Package actor implements a small in-process actor runtime. Actors are
// created through a System, addressed only via *Ref handles, and each one
// processes its mailbox strictly one message at a time on its own goroutine.
package actor

// Message is anything passed to an actor. The runtime never inspects it.
type Message interface{}

// Actor is the behaviour supplied by the actor author. Receive is only ever
// invoked from the actor's own goroutine, one message at a time, so state
// touched exclusively from Receive needs no locking.
//
// Receive must not block waiting on another actor's mailbox. A panic inside
// Receive is not recovered.
type Actor interface {
	Receive(ctx *Context, msg Message)
}

// Starter is implemented by actors that need to initialise themselves once
// their self ref is known. OnStart runs before the actor is registered; an
// error aborts ActorOf.
type Starter interface {
	OnStart(ctx *Context) error
}

// Stopper is implemented by actors that want a callback once their mailbox
// has been fully drained, just before they reach the Stopped state.
type Stopper interface {
	OnStop(ctx *Context) error
}

// ActorFunc allows a plain function to act as a stateless actor.
type ActorFunc func(ctx *Context, msg Message)

// Receive implements Actor.
func (f ActorFunc) Receive(ctx *Context, msg Message) {
	f(ctx, msg)
}

// Factory must be defined for a particular actor to be able to generate new
// actors of that type. The given ID is the ID of the ref for the new actor.
// Returning an error (or panicking) makes ActorOf fail with ErrInstantiation.
type Factory func(id string) (Actor, error)

// Props allows us to provide actor-specific property overrides after the
// factory has constructed the actor but before it starts.
type Props func(a Actor)

// Func returns a factory that always produces the given function actor.
func Func(fn ActorFunc) Factory {
	return func(string) (Actor, error) {
		return fn, nil
	}
}
