package wire

import (
	"bytes"
	"testing"
)

// TestPartialFrameAtEveryByteBoundary feeds a single MSG frame to the
// decoder one byte at a time, asserting OutcomeNeedMore until the final
// byte arrives, then OutcomeFrame consuming exactly the frame length.
func TestPartialFrameAtEveryByteBoundary(t *testing.T) {
	full := []byte("MSG foo.bar 1 reply.to 5\r\nhello\r\n")

	for split := 0; split < len(full); split++ {
		_, consumed, outcome, err := DecodeServerCommand(full[:split])
		if err != nil {
			t.Fatalf("split %d: unexpected error %v", split, err)
		}
		if outcome != OutcomeNeedMore {
			t.Fatalf("split %d: outcome = %v, want OutcomeNeedMore", split, outcome)
		}
		if consumed != 0 {
			t.Fatalf("split %d: consumed = %d, want 0", split, consumed)
		}
	}

	cmd, consumed, outcome, err := DecodeServerCommand(full)
	if err != nil {
		t.Fatalf("full frame: unexpected error %v", err)
	}
	if outcome != OutcomeFrame {
		t.Fatalf("full frame: outcome = %v, want OutcomeFrame", outcome)
	}
	if consumed != len(full) {
		t.Fatalf("consumed = %d, want %d", consumed, len(full))
	}
	if cmd.Msg.Subject != "foo.bar" || string(cmd.Msg.Payload) != "hello" {
		t.Fatalf("Msg = %+v", cmd.Msg)
	}
}

// TestMalformedFrameThenValidFrame asserts that a frame-level decode
// error reports consumed bytes past the bad frame's CRLF, so the next
// call to Decode*Command recovers and decodes the following valid
// frame without the caller needing to do anything special.
func TestMalformedFrameThenValidFrame(t *testing.T) {
	bad := []byte("PUB foo notanumber\r\n")
	good := []byte("PUB bar 2\r\nhi\r\n")
	buf := append(append([]byte{}, bad...), good...)

	cmd, consumed, outcome, err := DecodeClientCommand(buf)
	if outcome != OutcomeError || err == nil {
		t.Fatalf("bad frame: outcome = %v err = %v, want OutcomeError", outcome, err)
	}
	if consumed != len(bad) {
		t.Fatalf("bad frame consumed = %d, want %d", consumed, len(bad))
	}

	rest := buf[consumed:]
	cmd, consumed, outcome, err = DecodeClientCommand(rest)
	if err != nil {
		t.Fatalf("good frame: unexpected error %v", err)
	}
	if outcome != OutcomeFrame {
		t.Fatalf("good frame: outcome = %v, want OutcomeFrame", outcome)
	}
	if consumed != len(good) {
		t.Fatalf("good frame consumed = %d, want %d", consumed, len(good))
	}
	if cmd.Publish.Subject != "bar" || string(cmd.Publish.Payload) != "hi" {
		t.Fatalf("Publish = %+v", cmd.Publish)
	}
}

// TestUnknownCommandRecovers asserts that an unrecognized prefix is
// reported as OutcomeError and skips past its own CRLF, rather than
// stalling the stream.
func TestUnknownCommandRecovers(t *testing.T) {
	buf := []byte("BOGUS whatever\r\nPING\r\n")

	_, consumed, outcome, err := DecodeClientCommand(buf)
	if outcome != OutcomeError || err != ErrUnknownCommand {
		t.Fatalf("outcome = %v err = %v, want OutcomeError/ErrUnknownCommand", outcome, err)
	}

	rest := buf[consumed:]
	cmd, consumed, outcome, err := DecodeClientCommand(rest)
	if err != nil || outcome != OutcomeFrame {
		t.Fatalf("recovery frame: outcome = %v err = %v", outcome, err)
	}
	if cmd.Kind != ClientPing {
		t.Fatalf("Kind = %v, want ClientPing", cmd.Kind)
	}
	if consumed != len(rest) {
		t.Fatalf("consumed = %d, want %d", consumed, len(rest))
	}
}

// TestExceedsSoftLengthWithoutCRLF asserts that a line longer than
// SoftLengthLimit with no CRLF in view is reported as an error once the
// budget is exhausted, rather than buffering forever.
func TestExceedsSoftLengthWithoutCRLF(t *testing.T) {
	buf := append([]byte("PUB foo "), bytes.Repeat([]byte("9"), SoftLengthLimit+10)...)

	_, _, outcome, err := DecodeClientCommand(buf)
	if outcome != OutcomeError || err != ErrExceedsSoftLength {
		t.Fatalf("outcome = %v err = %v, want OutcomeError/ErrExceedsSoftLength", outcome, err)
	}
}

// TestExceedsSoftLengthRecoversOnceCRLFArrives asserts that once a
// CRLF does show up beyond the budget, the dispatcher skips past it and
// the stream is not stuck.
func TestExceedsSoftLengthRecoversOnceCRLFArrives(t *testing.T) {
	overlong := append([]byte("PUB foo "), bytes.Repeat([]byte("9"), SoftLengthLimit+10)...)
	overlong = append(overlong, CRLF...)
	buf := append(overlong, []byte("PING\r\n")...)

	_, consumed, outcome, err := DecodeClientCommand(buf)
	if outcome != OutcomeError || err != ErrExceedsSoftLength {
		t.Fatalf("outcome = %v err = %v, want OutcomeError/ErrExceedsSoftLength", outcome, err)
	}

	rest := buf[consumed:]
	cmd, _, outcome, err := DecodeClientCommand(rest)
	if err != nil || outcome != OutcomeFrame || cmd.Kind != ClientPing {
		t.Fatalf("recovery: cmd=%+v outcome=%v err=%v", cmd, outcome, err)
	}
}

// TestHMsgWaitsForFullPayloadAcrossReads asserts that a HMSG frame
// whose metadata line has arrived but whose header+payload block has
// not is reported as OutcomeNeedMore, not a decode error.
func TestHMsgWaitsForFullPayloadAcrossReads(t *testing.T) {
	full := []byte("HMSG foo 1 18 23\r\nNATS/1.0\r\nA: b\r\n\r\nhello\r\n")
	metaOnly := full[:len("HMSG foo 1 18 23\r\n")+5]

	_, _, outcome, err := DecodeServerCommand(metaOnly)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if outcome != OutcomeNeedMore {
		t.Fatalf("outcome = %v, want OutcomeNeedMore", outcome)
	}

	cmd, consumed, outcome, err := DecodeServerCommand(full)
	if err != nil {
		t.Fatalf("full frame: unexpected error %v", err)
	}
	if outcome != OutcomeFrame {
		t.Fatalf("full frame: outcome = %v, want OutcomeFrame", outcome)
	}
	if consumed != len(full) {
		t.Fatalf("consumed = %d, want %d", consumed, len(full))
	}
	if string(cmd.HMsg.Payload) != "hello" {
		t.Fatalf("Payload = %q", cmd.HMsg.Payload)
	}
}
