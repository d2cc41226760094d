package natsio

import "github.com/lumadb/natsio/pkg/wire"

// DeliverySink is the producer-side collaborator a subscriber hands to
// Subscribe; the binding calls Deliver for every inbound message
// addressed to the subscription's sid, and Close when the
// subscription is explicitly unsubscribed. When the connection is
// lost the binding drops its subscriber table without calling Close.
type DeliverySink interface {
	// Deliver reports false if the sink is full or already closed, in
	// which case the binding drops the message and logs it.
	Deliver(msg wire.Message) bool
	Close()
}

// SubscribeOptions mirrors the application-facing subscribe options.
type SubscribeOptions struct {
	QueueGroup string
	// MaxMsgs, if positive, causes an UNSUB{max_msgs} to be enqueued
	// immediately after SUB so the broker auto-terminates delivery.
	MaxMsgs int
}

// ApplicationCommand is the sealed set of requests the application
// side feeds into a NatsBinding via StepApplication.
type ApplicationCommand interface {
	applicationCommand()
}

// PublishRequest asks the binding to enqueue a PUB command.
type PublishRequest struct {
	Subject string
	Payload []byte
}

func (PublishRequest) applicationCommand() {}

// SubscribeRequest asks the binding to register a subscription and
// enqueue SUB (and, if MaxMsgs is set, UNSUB). Reply, if non-nil,
// receives the allocated SubscribeResponse; sends are best-effort
// (non-blocking) so a slow reader cannot wedge the binding.
type SubscribeRequest struct {
	Subject string
	Options SubscribeOptions
	Sink    DeliverySink
	Reply   chan<- SubscribeResponse
}

func (SubscribeRequest) applicationCommand() {}

// SubscribeResponse confirms the sid a SubscribeRequest was assigned.
type SubscribeResponse struct {
	SID     string
	MaxMsgs int
}

// UnsubscribeRequest asks the binding to drop a subscription and
// enqueue UNSUB.
type UnsubscribeRequest struct {
	SID     string
	MaxMsgs int
}

func (UnsubscribeRequest) applicationCommand() {}
