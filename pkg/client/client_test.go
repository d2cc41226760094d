package client

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/lumadb/natsio/pkg/natsio"
)

// pipeTransport adapts a net.Conn (from net.Pipe) to Transport.
type pipeTransport struct{ net.Conn }

func newPipe(t *testing.T) (*pipeTransport, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	return &pipeTransport{client}, server
}

func TestConnectSendsConnectAfterInfo(t *testing.T) {
	transport, server := newPipe(t)
	defer server.Close()

	handle := Connect(transport, WithTimeouts(natsio.Timeouts{
		PingInterval: time.Hour,
		PongDelay:    time.Hour,
		KeepAlive:    time.Hour,
	}))
	defer handle.Close()

	server.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := server.Write([]byte(`INFO {"server_id":"srv"}` + "\r\n")); err != nil {
		t.Fatalf("write INFO: %v", err)
	}

	reader := bufio.NewReader(server)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read CONNECT: %v", err)
	}
	if len(line) < 7 || line[:7] != "CONNECT" {
		t.Fatalf("line = %q, want a CONNECT frame", line)
	}

	// The first PING is due as soon as INFO arrives; read it so the
	// driver is not left blocked writing to the pipe.
	line, err = reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read PING: %v", err)
	}
	if line != "PING\r\n" {
		t.Fatalf("line = %q, want the initial PING", line)
	}
}

func TestPublishIsWrittenAfterConnect(t *testing.T) {
	transport, server := newPipe(t)
	defer server.Close()

	handle := Connect(transport, WithTimeouts(natsio.Timeouts{
		PingInterval: time.Hour,
		PongDelay:    time.Hour,
		KeepAlive:    time.Hour,
	}))
	defer handle.Close()

	server.SetDeadline(time.Now().Add(2 * time.Second))
	server.Write([]byte(`INFO {"server_id":"srv"}` + "\r\n"))

	reader := bufio.NewReader(server)
	if _, err := reader.ReadString('\n'); err != nil {
		t.Fatalf("read CONNECT: %v", err)
	}
	if line, err := reader.ReadString('\n'); err != nil || line != "PING\r\n" {
		t.Fatalf("line = %q, err = %v, want the initial PING", line, err)
	}

	handle.Publish("greet.hello", []byte("hi"))

	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read PUB: %v", err)
	}
	if line != "PUB greet.hello 2\r\n" {
		t.Fatalf("line = %q, want PUB metadata line", line)
	}
}

func TestSubscribeReceivesDeliveredMessage(t *testing.T) {
	transport, server := newPipe(t)
	defer server.Close()

	handle := Connect(transport, WithTimeouts(natsio.Timeouts{
		PingInterval: time.Hour,
		PongDelay:    time.Hour,
		KeepAlive:    time.Hour,
	}))
	defer handle.Close()

	server.SetDeadline(time.Now().Add(2 * time.Second))
	server.Write([]byte(`INFO {"server_id":"srv"}` + "\r\n"))

	reader := bufio.NewReader(server)
	if _, err := reader.ReadString('\n'); err != nil {
		t.Fatalf("read CONNECT: %v", err)
	}
	if line, err := reader.ReadString('\n'); err != nil || line != "PING\r\n" {
		t.Fatalf("line = %q, err = %v, want the initial PING", line, err)
	}

	sub := handle.Subscribe("greet.hello", natsio.SubscribeOptions{})

	if _, err := reader.ReadString('\n'); err != nil {
		t.Fatalf("read SUB: %v", err)
	}

	if _, err := server.Write([]byte("MSG greet.hello 1 5\r\nhello\r\n")); err != nil {
		t.Fatalf("write MSG: %v", err)
	}

	msg, ok := sub.Next()
	if !ok {
		t.Fatalf("expected a delivered message")
	}
	if string(msg.Payload) != "hello" {
		t.Fatalf("payload = %q, want hello", msg.Payload)
	}
}

func TestCloseTerminatesDriver(t *testing.T) {
	transport, server := newPipe(t)
	defer server.Close()

	handle := Connect(transport)
	handle.Close()
	handle.Close() // idempotent
}
