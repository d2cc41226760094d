package natsio

import (
	"testing"
	"time"

	"github.com/lumadb/natsio/pkg/wire"
)

type fakeSink struct {
	delivered []wire.Message
	closed    bool
	full      bool
}

func (s *fakeSink) Deliver(msg wire.Message) bool {
	if s.full || s.closed {
		return false
	}
	s.delivered = append(s.delivered, msg)
	return true
}

func (s *fakeSink) Close() { s.closed = true }

func drainTransmits(b *NatsBinding) []wire.ClientCommand {
	var out []wire.ClientCommand
	for {
		cmd, ok := b.PollTransmit()
		if !ok {
			return out
		}
		out = append(out, cmd)
	}
}

func infoFrame() wire.ServerCommand {
	return wire.ServerCommand{Kind: wire.ServerInfo, Info: &wire.Info{ServerID: "srv"}}
}

func TestPollTransmitNoneBeforeInfo(t *testing.T) {
	b := NewNatsBinding(DefaultTimeouts(), nil)
	if _, ok := b.PollTransmit(); ok {
		t.Fatalf("expected no transmits before INFO")
	}
	b.StepApplication(PublishRequest{Subject: "foo", Payload: []byte("x")}, time.Now())
	if _, ok := b.PollTransmit(); ok {
		t.Fatalf("expected no transmits before INFO even with a buffered request")
	}
}

func TestConnectEmittedExactlyOnce(t *testing.T) {
	b := NewNatsBinding(DefaultTimeouts(), nil)
	now := time.Now()
	b.StepServer(infoFrame(), now)
	b.StepServer(infoFrame(), now)

	cmds := drainTransmits(b)
	count := 0
	for _, c := range cmds {
		if c.Kind == wire.ClientConnect {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("CONNECT emitted %d times, want 1", count)
	}
}

func TestPreemptivePublishBeforeInfo(t *testing.T) {
	b := NewNatsBinding(DefaultTimeouts(), nil)
	now := time.Now()

	b.StepApplication(PublishRequest{Subject: "preemptive", Payload: []byte("Hello World!")}, now)
	b.StepApplication(SubscribeRequest{
		Subject: "preemptive",
		Options: SubscribeOptions{MaxMsgs: 5},
		Sink:    &fakeSink{},
	}, now)
	b.StepServer(infoFrame(), now)

	cmds := drainTransmits(b)
	if len(cmds) != 4 {
		t.Fatalf("got %d transmits, want 4: %+v", len(cmds), cmds)
	}
	if cmds[0].Kind != wire.ClientConnect {
		t.Fatalf("cmds[0].Kind = %v, want ClientConnect", cmds[0].Kind)
	}
	if cmds[1].Kind != wire.ClientPublish || cmds[1].Publish.Subject != "preemptive" {
		t.Fatalf("cmds[1] = %+v, want Publish(preemptive)", cmds[1])
	}
	if cmds[2].Kind != wire.ClientSubscribe || cmds[2].Subscribe.SID != "1" {
		t.Fatalf("cmds[2] = %+v, want Subscribe(sid=1)", cmds[2])
	}
	if cmds[3].Kind != wire.ClientUnsubscribe || cmds[3].Unsubscribe.SID != "1" || cmds[3].Unsubscribe.MaxMsgs != 5 {
		t.Fatalf("cmds[3] = %+v, want Unsubscribe(sid=1, max_msgs=5)", cmds[3])
	}

	if _, ok := b.PollTransmit(); ok {
		t.Fatalf("expected no further transmits")
	}
}

func TestSidsStrictlyIncreasing(t *testing.T) {
	b := NewNatsBinding(DefaultTimeouts(), nil)
	now := time.Now()
	b.StepServer(infoFrame(), now)
	drainTransmits(b)

	var sids []string
	for i := 0; i < 3; i++ {
		reply := make(chan SubscribeResponse, 1)
		b.StepApplication(SubscribeRequest{Subject: "foo", Sink: &fakeSink{}, Reply: reply}, now)
		resp := <-reply
		sids = append(sids, resp.SID)
	}
	if sids[0] != "1" || sids[1] != "2" || sids[2] != "3" {
		t.Fatalf("sids = %v, want [1 2 3]", sids)
	}
}

func TestProtocolViolationOnNonInfoFirstFrame(t *testing.T) {
	b := NewNatsBinding(DefaultTimeouts(), nil)
	b.StepServer(wire.ServerCommand{Kind: wire.ServerPing}, time.Now())
	if b.State() != StateProtocolViolation {
		t.Fatalf("State() = %v, want StateProtocolViolation", b.State())
	}
}

func TestMessageDeliveryAndUnknownSidDropped(t *testing.T) {
	b := NewNatsBinding(DefaultTimeouts(), nil)
	now := time.Now()
	b.StepServer(infoFrame(), now)
	drainTransmits(b)

	reply := make(chan SubscribeResponse, 1)
	sink := &fakeSink{}
	b.StepApplication(SubscribeRequest{Subject: "foo", Sink: sink, Reply: reply}, now)
	resp := <-reply
	drainTransmits(b)

	b.StepServer(wire.ServerCommand{Kind: wire.ServerMsg, Msg: wire.Msg{Subject: "foo", SID: resp.SID, Payload: []byte("hi")}}, now)
	b.StepServer(wire.ServerCommand{Kind: wire.ServerMsg, Msg: wire.Msg{Subject: "foo", SID: "999", Payload: []byte("ghost")}}, now)

	if len(sink.delivered) != 1 || string(sink.delivered[0].Payload) != "hi" {
		t.Fatalf("delivered = %+v, want exactly one message \"hi\"", sink.delivered)
	}
}

func TestUnsubscribeClosesSink(t *testing.T) {
	b := NewNatsBinding(DefaultTimeouts(), nil)
	now := time.Now()
	b.StepServer(infoFrame(), now)
	drainTransmits(b)

	reply := make(chan SubscribeResponse, 1)
	sink := &fakeSink{}
	b.StepApplication(SubscribeRequest{Subject: "foo", Sink: sink, Reply: reply}, now)
	resp := <-reply
	drainTransmits(b)

	b.StepApplication(UnsubscribeRequest{SID: resp.SID}, now)
	if !sink.closed {
		t.Fatalf("sink not closed after unsubscribe")
	}

	cmds := drainTransmits(b)
	if len(cmds) != 1 || cmds[0].Kind != wire.ClientUnsubscribe {
		t.Fatalf("cmds = %+v, want one UNSUB", cmds)
	}
}

func TestKeepAliveLoss(t *testing.T) {
	timeouts := Timeouts{PingInterval: 2 * time.Second, PongDelay: 0, KeepAlive: 3 * time.Second}
	b := NewNatsBinding(timeouts, nil)

	base := time.Unix(0, 0)
	b.StepServer(infoFrame(), base.Add(1*time.Second))
	drainTransmits(b)

	pongAt := base.Add(2 * time.Second)
	b.StepServer(wire.ServerCommand{Kind: wire.ServerPong}, pongAt)

	deadline, ok := b.PollKeepAliveDeadline()
	if !ok {
		t.Fatalf("expected a keep-alive deadline once a PONG has been received")
	}
	if !deadline.Equal(pongAt.Add(3 * time.Second)) {
		t.Fatalf("deadline = %v, want %v", deadline, pongAt.Add(3*time.Second))
	}

	checkAt := base.Add(7 * time.Second)
	b.HandleKeepAliveTimeout(checkAt)

	if b.State() != StateConnectionLost {
		t.Fatalf("State() = %v, want StateConnectionLost", b.State())
	}
	if _, ok := b.PollTransmit(); ok {
		t.Fatalf("expected no further transmits once connection is lost")
	}
}

func TestPollSendPingDeadlineFiresImmediatelyOnFirstEntry(t *testing.T) {
	b := NewNatsBinding(DefaultTimeouts(), nil)
	now := time.Now()
	b.StepServer(infoFrame(), now)

	deadline, ok := b.PollSendPingDeadline(now)
	if !ok || !deadline.Equal(now) {
		t.Fatalf("deadline = %v, ok = %v, want (%v, true)", deadline, ok, now)
	}

	b.HandleSendPingTimeout(now)
	cmds := drainTransmits(b)

	found := false
	for _, c := range cmds {
		if c.Kind == wire.ClientPing {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a PING among %+v", cmds)
	}
}
