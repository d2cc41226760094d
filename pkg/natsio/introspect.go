package natsio

import "time"

// SubscriptionInfo is a read-only snapshot of one live subscription,
// for introspection callers that must not reach into connState.
type SubscriptionInfo struct {
	SID        string
	Subject    string
	QueueGroup string
	MaxMsgs    int
}

// KeepAliveInfo is a read-only snapshot of the three keep-alive
// timestamps. A nil field means the corresponding event has not
// happened yet.
type KeepAliveInfo struct {
	LastPingSent     *time.Time
	LastPingReceived *time.Time
	LastPongReceived *time.Time
}

// Snapshot reports the binding's current state, subscription table,
// and keep-alive timestamps, for use by an out-of-band introspection
// surface (pkg/client does not otherwise expose connState). Outside
// InfoReceived the subscription and keep-alive fields are zero.
func (b *NatsBinding) Snapshot() (state StateKind, subs []SubscriptionInfo, keepAlive KeepAliveInfo) {
	ir, ok := b.state.(*infoReceived)
	if !ok {
		return b.state.kind(), nil, KeepAliveInfo{}
	}
	for sid, sub := range ir.subscribers {
		subs = append(subs, SubscriptionInfo{
			SID:        sid,
			Subject:    sub.subject,
			QueueGroup: sub.queueGroup,
			MaxMsgs:    sub.maxMsgs,
		})
	}
	keepAlive = KeepAliveInfo{
		LastPingSent:     ir.keepAlive.lastPingSent,
		LastPingReceived: ir.keepAlive.lastPingReceived,
		LastPongReceived: ir.keepAlive.lastPongReceived,
	}
	return StateInfoReceived, subs, keepAlive
}
