// Package client is the application-facing driver: it wires
// pkg/natsio's sans-I/O state machine to a real Transport using a
// driver goroutine, a reader goroutine and three timers, exposing
// ClientHandle/Subscriber as the
// collaborator implementation pkg/natsio deliberately stays free of.
package client

import (
	"sync"

	"github.com/lumadb/natsio/pkg/natsio"
	"go.uber.org/zap"
)

// ClientHandle is the application's entry point into one connection.
type ClientHandle struct {
	binding   *natsio.NatsBinding
	bindingMu *sync.Mutex
	appCh     chan natsio.ApplicationCommand
	closeCh   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	logger    *zap.Logger
}

// Connect opens a session over transport: it starts the driver
// goroutine, which emits CONNECT as soon as the server's INFO frame
// arrives.
func Connect(transport Transport, opts ...Option) *ClientHandle {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var bindingOpts []natsio.Option
	if cfg.errSink != nil {
		bindingOpts = append(bindingOpts, natsio.WithErrorSink(cfg.errSink))
	}
	binding := natsio.NewNatsBinding(cfg.timeouts, cfg.logger, bindingOpts...)
	var mu sync.Mutex

	h := &ClientHandle{
		binding:   binding,
		bindingMu: &mu,
		appCh:     make(chan natsio.ApplicationCommand, cfg.appBuffer),
		closeCh:   make(chan struct{}),
		done:      make(chan struct{}),
		logger:    cfg.logger,
	}

	go runDriver(binding, &mu, transport, cfg.logger, h.appCh, h.closeCh, h.done)
	return h
}

// Snapshot reports the binding's current connection state,
// subscription table, and keep-alive timestamps for introspection
// callers (internal/admin exposes this over HTTP). Safe to call
// concurrently with the driver goroutine.
func (h *ClientHandle) Snapshot() (state natsio.StateKind, subs []natsio.SubscriptionInfo, keepAlive natsio.KeepAliveInfo) {
	h.bindingMu.Lock()
	defer h.bindingMu.Unlock()
	return h.binding.Snapshot()
}

func (h *ClientHandle) enqueue(cmd natsio.ApplicationCommand) {
	select {
	case h.appCh <- cmd:
	case <-h.done:
	}
}

// Publish is fire-and-forget; there is no ack.
func (h *ClientHandle) Publish(subject string, payload []byte) {
	h.enqueue(natsio.PublishRequest{Subject: subject, Payload: payload})
}

// Subscribe registers interest in subject and returns a Subscriber
// whose Next yields the delivered messages. It blocks until the
// driver has assigned a sid (or the connection closes first).
func (h *ClientHandle) Subscribe(subject string, opts natsio.SubscribeOptions) *Subscriber {
	sub := newSubscriber(h, subject, opts.MaxMsgs)
	reply := make(chan natsio.SubscribeResponse, 1)
	h.enqueue(natsio.SubscribeRequest{Subject: subject, Options: opts, Sink: sub, Reply: reply})

	select {
	case resp := <-reply:
		sub.sid = resp.SID
	case <-h.done:
	}
	return sub
}

// Close drains the outbox and tears down the driver goroutine. Safe
// to call more than once.
func (h *ClientHandle) Close() {
	h.closeOnce.Do(func() { close(h.closeCh) })
	<-h.done
}
