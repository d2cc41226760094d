package natsio

import "time"

// Timeouts configures the three keep-alive durations a NatsBinding
// enforces once InfoReceived.
type Timeouts struct {
	// PingInterval is the cadence at which the client emits PING.
	PingInterval time.Duration
	// PongDelay is the maximum latency allowed between receiving a
	// server PING and emitting the answering PONG.
	PongDelay time.Duration
	// KeepAlive is the maximum silence allowed since the last PONG
	// received from the server before the connection is declared lost.
	KeepAlive time.Duration
}

// DefaultTimeouts mirrors the cadence most NATS clients use in
// practice: a PING every two minutes, an immediate PONG reply, and a
// keep-alive budget generous enough to tolerate one missed PING cycle.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		PingInterval: 2 * time.Minute,
		PongDelay:    0,
		KeepAlive:    5 * time.Minute,
	}
}

// keepAliveState tracks the three timestamps the six poll/handle
// methods consult. A nil pointer means "never happened yet".
type keepAliveState struct {
	lastPingSent     *time.Time
	lastPingReceived *time.Time
	lastPongReceived *time.Time
}

// PollSendPingDeadline returns when HandleSendPingTimeout should next
// be called. It reports ok=false outside InfoReceived.
func (b *NatsBinding) PollSendPingDeadline(now time.Time) (deadline time.Time, ok bool) {
	ir, ok := b.state.(*infoReceived)
	if !ok {
		return time.Time{}, false
	}
	if ir.keepAlive.lastPingSent == nil {
		return now, true
	}
	return ir.keepAlive.lastPingSent.Add(b.timeouts.PingInterval), true
}

// HandleSendPingTimeout enqueues PING if the ping interval has
// elapsed since the last one was sent (or none has ever been sent).
func (b *NatsBinding) HandleSendPingTimeout(now time.Time) {
	ir, ok := b.state.(*infoReceived)
	if !ok {
		return
	}
	if ir.keepAlive.lastPingSent != nil && now.Before(ir.keepAlive.lastPingSent.Add(b.timeouts.PingInterval)) {
		return
	}
	ir.outbox = append(ir.outbox, pingCommand)
	sent := now
	ir.keepAlive.lastPingSent = &sent
}

// PollSendPongDeadline returns when HandleSendPongTimeout must fire to
// answer an outstanding server PING, or ok=false if none is pending.
func (b *NatsBinding) PollSendPongDeadline() (deadline time.Time, ok bool) {
	ir, ok := b.state.(*infoReceived)
	if !ok || ir.keepAlive.lastPingReceived == nil {
		return time.Time{}, false
	}
	return ir.keepAlive.lastPingReceived.Add(b.timeouts.PongDelay), true
}

// HandleSendPongTimeout enqueues PONG and clears the pending-PING
// marker once the pong delay has elapsed.
func (b *NatsBinding) HandleSendPongTimeout(now time.Time) {
	ir, ok := b.state.(*infoReceived)
	if !ok || ir.keepAlive.lastPingReceived == nil {
		return
	}
	if now.Before(ir.keepAlive.lastPingReceived.Add(b.timeouts.PongDelay)) {
		return
	}
	ir.outbox = append(ir.outbox, pongCommand)
	ir.keepAlive.lastPingReceived = nil
}

// PollKeepAliveDeadline returns when HandleKeepAliveTimeout must next
// be called, or ok=false if no PONG has ever been received.
func (b *NatsBinding) PollKeepAliveDeadline() (deadline time.Time, ok bool) {
	ir, ok := b.state.(*infoReceived)
	if !ok || ir.keepAlive.lastPongReceived == nil {
		return time.Time{}, false
	}
	return ir.keepAlive.lastPongReceived.Add(b.timeouts.KeepAlive), true
}

// HandleKeepAliveTimeout transitions to ConnectionLost once the
// keep-alive budget has been exceeded since the last PONG.
func (b *NatsBinding) HandleKeepAliveTimeout(now time.Time) {
	ir, ok := b.state.(*infoReceived)
	if !ok || ir.keepAlive.lastPongReceived == nil {
		return
	}
	if now.Before(ir.keepAlive.lastPongReceived.Add(b.timeouts.KeepAlive)) {
		return
	}
	b.logger.Warn("keep-alive expired, declaring connection lost")
	b.state = &connectionLost{}
}
