package client

import (
	"sync"

	"github.com/lumadb/natsio/pkg/natsio"
	"github.com/lumadb/natsio/pkg/wire"
)

// Subscriber is the application-facing handle returned by
// ClientHandle.Subscribe. It implements natsio.DeliverySink on the
// producer side and exposes a pull-based Next on the consumer side.
type Subscriber struct {
	handle  *ClientHandle
	subject string
	sid     string
	maxMsgs int

	msgs      chan wire.Message
	closed    chan struct{}
	closeOnce sync.Once
	delivered int
}

func newSubscriber(handle *ClientHandle, subject string, maxMsgs int) *Subscriber {
	return &Subscriber{
		handle:  handle,
		subject: subject,
		maxMsgs: maxMsgs,
		msgs:    make(chan wire.Message, 64),
		closed:  make(chan struct{}),
	}
}

// Deliver implements natsio.DeliverySink. A full or closed subscriber
// drops the message; the binding logs the drop.
func (s *Subscriber) Deliver(msg wire.Message) bool {
	select {
	case <-s.closed:
		return false
	default:
	}
	select {
	case s.msgs <- msg:
		return true
	default:
		return false
	}
}

// Close implements natsio.DeliverySink and is also the application's
// way to explicitly end the subscription: it enqueues UNSUB and stops
// delivery. Safe to call more than once.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		if s.handle != nil {
			s.handle.enqueue(natsio.UnsubscribeRequest{SID: s.sid})
		}
	})
}

// SID reports the subscription id the binding assigned on Subscribe.
func (s *Subscriber) SID() string { return s.sid }

// Next blocks for the next delivered message. ok is false once the
// subscription is closed, the max-msgs cap has been reached, or the
// connection has gone away.
func (s *Subscriber) Next() (msg wire.Message, ok bool) {
	if s.maxMsgs > 0 && s.delivered >= s.maxMsgs {
		return wire.Message{}, false
	}
	var gone <-chan struct{}
	if s.handle != nil {
		gone = s.handle.done
	}
	select {
	case msg, chanOK := <-s.msgs:
		if !chanOK {
			return wire.Message{}, false
		}
		s.delivered++
		return msg, true
	case <-s.closed:
	case <-gone:
	}
	// drain whatever arrived before the close was observed
	select {
	case msg := <-s.msgs:
		s.delivered++
		return msg, true
	default:
		return wire.Message{}, false
	}
}
