package actor

// Context is handed to Receive. Self is fixed for the lifetime of the actor;
// Sender is only meaningful during the Receive call it was passed to. A
// Context must not be retained or used from another goroutine.
type Context struct {
	self   *Ref
	sender *Ref
	system *System
}

// Self returns the ref of the actor being run.
func (c *Context) Self() *Ref {
	return c.self
}

// Sender returns the ref that sent the current message, or NoSender.
func (c *Context) Sender() *Ref {
	return c.sender
}

// System returns the system in which this actor runs.
func (c *Context) System() *System {
	return c.system
}

// Send delivers msg to `to`, tagged with this actor as the sender.
func (c *Context) Send(msg Message, to *Ref) error {
	return c.system.Send(msg, to, c.self)
}

// Reply sends msg back to the sender of the current message.
func (c *Context) Reply(msg Message) error {
	if c.sender == nil {
		return &ErrNoSender{Ref: c.self}
	}
	return c.Send(msg, c.sender)
}

// Forward passes msg on to `to`, preserving the original sender.
func (c *Context) Forward(msg Message, to *Ref) error {
	return c.system.Send(msg, to, c.sender)
}

// ActorOf creates a new actor in the same system.
func (c *Context) ActorOf(f Factory, opts ...Option) (*Ref, error) {
	return c.system.ActorOf(f, opts...)
}

// StopSelf stops accepting messages for this actor. It returns immediately:
// the remaining mailbox is still processed, and the actor is removed from
// the system once it has drained. Calling it on an actor that has already
// been interrupted only schedules the removal.
func (c *Context) StopSelf() error {
	return c.system.stopAsync(c.self)
}
