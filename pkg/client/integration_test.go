package client_test

import (
	"net"
	"testing"
	"time"

	"github.com/lumadb/natsio/internal/testnats"
	"github.com/lumadb/natsio/pkg/client"
	"github.com/lumadb/natsio/pkg/natsio"
)

func TestPublishSubscribeOverRealTCP(t *testing.T) {
	server, err := testnats.Start()
	if err != nil {
		t.Fatalf("testnats.Start: %v", err)
	}
	defer server.Close()

	conn, err := net.Dial("tcp", server.Addr())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	handle := client.Connect(conn, client.WithTimeouts(natsio.Timeouts{
		PingInterval: time.Hour,
		PongDelay:    time.Hour,
		KeepAlive:    time.Hour,
	}))
	defer handle.Close()

	sub := handle.Subscribe("greet.hello", natsio.SubscribeOptions{})
	defer sub.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		_, subs, _ := handle.Snapshot()
		if len(subs) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscription never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	handle.Publish("greet.hello", []byte("hello"))

	msg, ok := sub.Next()
	if !ok {
		t.Fatalf("expected a delivered message")
	}
	if msg.Subject != "greet.hello" || string(msg.Payload) != "hello" {
		t.Fatalf("msg = %+v, want subject=greet.hello payload=hello", msg)
	}
}
