// Package natsio implements the sans-I/O NATS connection state
// machine: a pure engine that ingests parsed server commands and
// application requests, and produces client commands for a driver to
// transmit. It performs no I/O and holds no goroutines; see
// FramedReader/FramedWriter/Clock for the collaborator contracts a
// driver must supply (pkg/client ships one).
package natsio

import (
	"strconv"
	"time"

	"github.com/lumadb/natsio/pkg/wire"
	"go.uber.org/zap"
)

var (
	pingCommand = wire.ClientCommand{Kind: wire.ClientPing}
	pongCommand = wire.ClientCommand{Kind: wire.ClientPong}
)

// StateKind reports which of the four connection states a binding is
// currently in.
type StateKind int

const (
	StateAwaitingInfo StateKind = iota
	StateInfoReceived
	StateProtocolViolation
	StateConnectionLost
)

// connState is the tagged-variant union: AwaitingInfo, InfoReceived,
// ProtocolViolation, ConnectionLost.
type connState interface {
	kind() StateKind
}

type awaitingInfo struct {
	preliminary []bufferedRequest
}

func (*awaitingInfo) kind() StateKind { return StateAwaitingInfo }

type bufferedRequest struct {
	cmd       ApplicationCommand
	arrivedAt time.Time
}

type infoReceived struct {
	outbox      []wire.ClientCommand
	keepAlive   keepAliveState
	sidCounter  uint64
	subscribers map[string]*subscription
}

func (*infoReceived) kind() StateKind { return StateInfoReceived }

type subscription struct {
	subject    string
	queueGroup string
	maxMsgs    int
	sink       DeliverySink
}

type protocolViolation struct{}

func (*protocolViolation) kind() StateKind { return StateProtocolViolation }

type connectionLost struct{}

func (*connectionLost) kind() StateKind { return StateConnectionLost }

// NatsBinding is the sans-I/O connection core. Zero value is not
// usable; construct with NewNatsBinding.
type NatsBinding struct {
	logger   *zap.Logger
	timeouts Timeouts
	errSink  chan<- string
	state    connState
}

// Option configures optional NatsBinding collaborators.
type Option func(*NatsBinding)

// WithErrorSink arranges for every -ERR message the server sends to be
// forwarded (non-blocking) to ch, per spec's "surface to observer
// channel; do not terminate" policy for -ERR.
func WithErrorSink(ch chan<- string) Option {
	return func(b *NatsBinding) { b.errSink = ch }
}

// NewNatsBinding constructs a binding in AwaitingInfo. A nil logger is
// replaced with a no-op logger.
func NewNatsBinding(timeouts Timeouts, logger *zap.Logger, opts ...Option) *NatsBinding {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &NatsBinding{
		logger:   logger,
		timeouts: timeouts,
		state:    &awaitingInfo{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State reports the binding's current connection state.
func (b *NatsBinding) State() StateKind {
	return b.state.kind()
}

// StepServer feeds one decoded server command into the machine.
func (b *NatsBinding) StepServer(cmd wire.ServerCommand, now time.Time) {
	switch st := b.state.(type) {
	case *awaitingInfo:
		b.stepAwaitingInfo(st, cmd, now)
	case *infoReceived:
		b.stepInfoReceived(st, cmd, now)
	case *protocolViolation, *connectionLost:
		b.logger.Debug("dropping server command: connection not usable")
	}
}

func (b *NatsBinding) stepAwaitingInfo(st *awaitingInfo, cmd wire.ServerCommand, now time.Time) {
	if cmd.Kind != wire.ServerInfo {
		b.logger.Warn("protocol violation: first server frame was not INFO", zap.Int("kind", int(cmd.Kind)))
		b.state = &protocolViolation{}
		return
	}

	ir := &infoReceived{subscribers: make(map[string]*subscription)}
	ir.outbox = append(ir.outbox, wire.ClientCommand{Kind: wire.ClientConnect, Connect: clientConnectOptions()})
	b.state = ir

	for _, buffered := range st.preliminary {
		b.applyApplicationCommand(ir, buffered.cmd, buffered.arrivedAt)
	}
}

// clientConnectOptions is the fixed client descriptor spec §4.5
// mandates be sent on every CONNECT.
func clientConnectOptions() wire.Connect {
	headers := true
	return wire.Connect{
		Verbose:     true,
		Pedantic:    true,
		TLSRequired: false,
		Lang:        "go",
		Version:     "1.0",
		Headers:     &headers,
	}
}

func (b *NatsBinding) stepInfoReceived(ir *infoReceived, cmd wire.ServerCommand, now time.Time) {
	switch cmd.Kind {
	case wire.ServerInfo:
		b.logger.Debug("ignoring server re-advertisement of INFO")
	case wire.ServerMsg:
		b.deliver(ir, wire.FromMsg(cmd.Msg))
	case wire.ServerHMsg:
		b.deliver(ir, wire.FromHMsg(cmd.HMsg))
	case wire.ServerPing:
		received := now
		ir.keepAlive.lastPingReceived = &received
	case wire.ServerPong:
		received := now
		ir.keepAlive.lastPongReceived = &received
	case wire.ServerOK:
		// traced, nothing to do
	case wire.ServerErr:
		b.logger.Warn("server reported -ERR", zap.String("message", cmd.Err))
		if b.errSink != nil {
			select {
			case b.errSink <- cmd.Err:
			default:
			}
		}
	}
}

func (b *NatsBinding) deliver(ir *infoReceived, msg wire.Message) {
	sub, ok := ir.subscribers[msg.SID]
	if !ok {
		b.logger.Debug("dropping message for unknown sid", zap.String("sid", msg.SID))
		return
	}
	if !sub.sink.Deliver(msg) {
		b.logger.Warn("dropping message: delivery sink full or closed", zap.String("sid", msg.SID))
	}
}

// StepApplication feeds one application request into the machine.
// Requests that arrive before INFO are buffered and replayed, in
// order, immediately after CONNECT is enqueued.
func (b *NatsBinding) StepApplication(cmd ApplicationCommand, now time.Time) {
	switch st := b.state.(type) {
	case *awaitingInfo:
		st.preliminary = append(st.preliminary, bufferedRequest{cmd: cmd, arrivedAt: now})
	case *infoReceived:
		b.applyApplicationCommand(st, cmd, now)
	case *protocolViolation, *connectionLost:
		b.logger.Debug("dropping application command: connection not usable")
	}
}

func (b *NatsBinding) applyApplicationCommand(ir *infoReceived, cmd ApplicationCommand, now time.Time) {
	switch c := cmd.(type) {
	case PublishRequest:
		ir.outbox = append(ir.outbox, wire.ClientCommand{
			Kind: wire.ClientPublish,
			Publish: wire.Publish{
				Subject: c.Subject,
				Bytes:   len(c.Payload),
				Payload: c.Payload,
			},
		})

	case SubscribeRequest:
		ir.sidCounter++
		sid := strconv.FormatUint(ir.sidCounter, 10)
		ir.subscribers[sid] = &subscription{
			subject:    c.Subject,
			queueGroup: c.Options.QueueGroup,
			maxMsgs:    c.Options.MaxMsgs,
			sink:       c.Sink,
		}
		if c.Reply != nil {
			select {
			case c.Reply <- SubscribeResponse{SID: sid, MaxMsgs: c.Options.MaxMsgs}:
			default:
			}
		}
		ir.outbox = append(ir.outbox, wire.ClientCommand{
			Kind: wire.ClientSubscribe,
			Subscribe: wire.Subscribe{
				Subject:    c.Subject,
				QueueGroup: c.Options.QueueGroup,
				SID:        sid,
			},
		})
		if c.Options.MaxMsgs > 0 {
			ir.outbox = append(ir.outbox, wire.ClientCommand{
				Kind:        wire.ClientUnsubscribe,
				Unsubscribe: wire.Unsubscribe{SID: sid, MaxMsgs: c.Options.MaxMsgs},
			})
		}

	case UnsubscribeRequest:
		if sub, ok := ir.subscribers[c.SID]; ok {
			sub.sink.Close()
			delete(ir.subscribers, c.SID)
		} else {
			b.logger.Debug("unsubscribe: unknown sid", zap.String("sid", c.SID))
		}
		ir.outbox = append(ir.outbox, wire.ClientCommand{
			Kind:        wire.ClientUnsubscribe,
			Unsubscribe: wire.Unsubscribe{SID: c.SID, MaxMsgs: c.MaxMsgs},
		})
	}
}

// PollTransmit pops the next outbound command, if any. The driver
// must loop-drain this between I/O events so the outbox never grows
// unboundedly.
func (b *NatsBinding) PollTransmit() (wire.ClientCommand, bool) {
	ir, ok := b.state.(*infoReceived)
	if !ok || len(ir.outbox) == 0 {
		return wire.ClientCommand{}, false
	}
	cmd := ir.outbox[0]
	ir.outbox = ir.outbox[1:]
	return cmd, true
}
