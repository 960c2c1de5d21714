package actor

import (
	"fmt"
	"strings"

	uuid "github.com/satori/go.uuid"
)

// Mode selects how the system constructs the ref for a new actor.
type Mode int

const (
	// Local refs address actors living in this process.
	Local Mode = iota
	// Remote is reserved for deployments that plug in their own RefFactory.
	Remote
)

func (m Mode) String() string {
	switch m {
	case Local:
		return "local"
	case Remote:
		return "remote"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// NoSender is the ref to use when sending from outside of any actor.
var NoSender *Ref

// Ref is an opaque handle to an actor. Two refs are the same handle only if
// they are the same pointer, so refs can be compared with == and used as map
// keys. A Ref carries no mutable state and can be shared freely between
// goroutines.
type Ref struct {
	id     string
	mode   Mode
	system *System
}

// RefFactory constructs the ref for a new actor. It is the extension point
// for Remote mode: the default factory only supports Local.
type RefFactory func(s *System, mode Mode) (*Ref, error)

// DefaultRefFactory hands out Local refs with random IDs.
func DefaultRefFactory(s *System, mode Mode) (*Ref, error) {
	if mode != Local {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}
	return s.NewRef(newRefID(), mode), nil
}

func newRefID() string {
	return strings.ReplaceAll(uuid.NewV4().String(), "-", "")
}

// ID returns the identifier of the actor to which the ref refers.
func (r *Ref) ID() string {
	if r == nil {
		return ""
	}
	return r.id
}

// Mode returns the mode this ref was constructed for.
func (r *Ref) Mode() Mode {
	if r == nil {
		return Local
	}
	return r.mode
}

// System returns the system this ref belongs to.
func (r *Ref) System() *System {
	if r == nil {
		return nil
	}
	return r.system
}

func (r *Ref) String() string {
	if r == nil {
		return "nosender"
	}
	if r.mode == Local {
		return r.id
	}
	return fmt.Sprintf("%s@%s", r.id, r.mode)
}

// Send delivers msg to the actor behind `to`, tagging r as the sender. The
// call returns as soon as the message is queued; it fails with ErrNotFound if
// `to` is unknown and with ErrRejectedMessage if that actor is shutting down.
func (r *Ref) Send(msg Message, to *Ref) error {
	if r == nil || r.system == nil {
		return ErrUnboundRef
	}
	return r.system.Send(msg, to, r)
}
