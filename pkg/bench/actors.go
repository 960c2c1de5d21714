package bench

import (
	"errors"
	"runtime"

	"github.com/informalsystems/go-actor/pkg/actor"
	"github.com/informalsystems/go-actor/pkg/mailbox"
)

type startMsg struct{}

type seqMsg struct {
	Seq int
}

// producerDoneMsg is the last message a producer sends to the sink. Since
// delivery is ordered per sender, everything the producer sent before it has
// already been processed by the time the sink sees it.
type producerDoneMsg struct {
	Sent    int
	Dropped int
	Err     error
}

// producer sends `messages` sequence-numbered messages to the sink as soon as
// it is told to start.
type producer struct {
	sink     *actor.Ref
	messages int
}

func (p *producer) Receive(ctx *actor.Context, msg actor.Message) {
	if _, ok := msg.(startMsg); !ok {
		return
	}
	done := producerDoneMsg{}
	for i := 0; i < p.messages; i++ {
		err := ctx.Send(seqMsg{Seq: i}, p.sink)
		if err == nil {
			done.Sent++
			continue
		}
		if isOverflow(err) {
			done.Dropped++
			continue
		}
		done.Err = err
		break
	}
	// the final report must not be dropped
	for {
		err := ctx.Send(done, p.sink)
		if err == nil || !isOverflow(err) {
			return
		}
		runtime.Gosched()
	}
}

func isOverflow(err error) bool {
	return errors.As(err, &mailbox.ErrOverflow{})
}

// sink counts what it receives and checks that each producer's messages
// arrive in the order they were sent.
type sink struct {
	producers int
	lastSeq   map[*actor.Ref]int

	received   int
	violations int
	sent       int
	dropped    int
	reported   int
	err        error

	done chan struct{} // Closed once every producer has reported.
}

func newSink(producers int) *sink {
	return &sink{
		producers: producers,
		lastSeq:   make(map[*actor.Ref]int),
		done:      make(chan struct{}),
	}
}

func (s *sink) Receive(ctx *actor.Context, msg actor.Message) {
	switch m := msg.(type) {
	case seqMsg:
		s.received++
		// drops leave gaps, so only regressions count as violations
		if last, ok := s.lastSeq[ctx.Sender()]; ok && m.Seq <= last {
			s.violations++
		}
		s.lastSeq[ctx.Sender()] = m.Seq

	case producerDoneMsg:
		s.reported++
		s.sent += m.Sent
		s.dropped += m.Dropped
		if m.Err != nil && s.err == nil {
			s.err = m.Err
		}
		if s.reported == s.producers {
			close(s.done)
		}
	}
}
