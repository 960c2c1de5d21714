package actor

import (
	"github.com/informalsystems/go-actor/internal/logging"
	"github.com/informalsystems/go-actor/pkg/mailbox"
	"github.com/prometheus/client_golang/prometheus"
)

// MailboxFactory creates the mailbox for each new actor.
type MailboxFactory func() mailbox.Mailbox[Envelope]

// UnboundedMailboxes is the default mailbox factory.
func UnboundedMailboxes() mailbox.Mailbox[Envelope] {
	return mailbox.New[Envelope]()
}

// BoundedMailboxes creates mailboxes holding at most capacity messages. With
// the default (block) overflow strategy, Send suspends the caller while the
// target mailbox is full.
func BoundedMailboxes(capacity int, opts ...mailbox.Option) MailboxFactory {
	opts = append([]mailbox.Option{mailbox.MaxCapacity(capacity)}, opts...)
	return func() mailbox.Mailbox[Envelope] {
		return mailbox.New[Envelope](opts...)
	}
}

// SystemOption overrides particular configuration in the construction of a
// System.
type SystemOption func(s *System)

// WithName sets the system name, used in logs and as a metric label.
func WithName(name string) SystemOption {
	return func(s *System) {
		s.name = name
	}
}

// WithLogger overrides the default logrus-backed logger.
func WithLogger(l logging.Logger) SystemOption {
	return func(s *System) {
		s.logger = l
	}
}

// WithRefFactory overrides how refs are constructed, e.g. to support Remote.
func WithRefFactory(f RefFactory) SystemOption {
	return func(s *System) {
		s.refFactory = f
	}
}

// WithMailboxFactory sets the default mailbox store for every actor.
func WithMailboxFactory(f MailboxFactory) SystemOption {
	return func(s *System) {
		s.mailboxFactory = f
	}
}

// WithLifecycleEvents allows one to supply a mailbox on which to listen for
// lifecycle events from every actor in the system. Events are delivered fire
// and forget: if Add fails, the event is dropped.
func WithLifecycleEvents(mb mailbox.Mailbox[LifecycleEvent]) SystemOption {
	return func(s *System) {
		s.events = mb
	}
}

// WithRegistry registers the system's metrics with reg instead of a private
// registry.
func WithRegistry(reg *prometheus.Registry) SystemOption {
	return func(s *System) {
		s.registry = reg
	}
}

// WithMetricsNamespace overrides the metric name prefix ("actor").
func WithMetricsNamespace(ns string) SystemOption {
	return func(s *System) {
		s.metricsNamespace = ns
	}
}

// Option overrides particular configuration in the construction of a single
// actor.
type Option func(o *spawnOpts)

type spawnOpts struct {
	mode    Mode
	mailbox mailbox.Mailbox[Envelope]
	props   []Props
}

// WithMode selects the ref mode for the new actor (Local by default).
func WithMode(m Mode) Option {
	return func(o *spawnOpts) {
		o.mode = m
	}
}

// WithMailbox uses the given mailbox for the new actor instead of one from
// the system's mailbox factory. The mailbox must be fresh and unshared.
func WithMailbox(mb mailbox.Mailbox[Envelope]) Option {
	return func(o *spawnOpts) {
		o.mailbox = mb
	}
}

// MailboxCapacity is an option for creating an actor with a bounded mailbox
// of the given capacity, blocking senders when full.
func MailboxCapacity(n int) Option {
	return func(o *spawnOpts) {
		o.mailbox = mailbox.New[Envelope](mailbox.MaxCapacity(n))
	}
}

// WithProps applies p to the actor right after the factory has built it.
func WithProps(p Props) Option {
	return func(o *spawnOpts) {
		o.props = append(o.props, p)
	}
}
