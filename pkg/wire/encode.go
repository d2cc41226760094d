package wire

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// EncodeClientCommand writes cmd's wire representation to buf. It is the
// inverse of DecodeClientCommand: for any cmd produced by a successful
// decode, decoding EncodeClientCommand's output reproduces an equal cmd.
func EncodeClientCommand(buf *bytes.Buffer, cmd ClientCommand) error {
	switch cmd.Kind {
	case ClientConnect:
		return encodeConnect(buf, cmd.Connect)
	case ClientPublish:
		encodePublish(buf, cmd.Publish)
		return nil
	case ClientHPublish:
		return encodeHPublish(buf, cmd.HPublish)
	case ClientSubscribe:
		encodeSubscribe(buf, cmd.Subscribe)
		return nil
	case ClientUnsubscribe:
		encodeUnsubscribe(buf, cmd.Unsubscribe)
		return nil
	case ClientPing:
		buf.WriteString("PING")
		buf.Write(CRLF)
		return nil
	case ClientPong:
		buf.WriteString("PONG")
		buf.Write(CRLF)
		return nil
	default:
		return ErrUnknownCommand
	}
}

// EncodeServerCommand writes cmd's wire representation to buf. The
// original codec this package is grounded on only encodes client
// commands, since it never needed to act as a server; this package
// adds the server-side encoder so that decode(encode(s)) == s holds
// for both directions, matching the round-trip law every other command
// already satisfies.
func EncodeServerCommand(buf *bytes.Buffer, cmd ServerCommand) error {
	switch cmd.Kind {
	case ServerInfo:
		return encodeInfo(buf, cmd.Info)
	case ServerMsg:
		encodeMsg(buf, cmd.Msg)
		return nil
	case ServerHMsg:
		return encodeHMsg(buf, cmd.HMsg)
	case ServerPing:
		buf.WriteString("PING")
		buf.Write(CRLF)
		return nil
	case ServerPong:
		buf.WriteString("PONG")
		buf.Write(CRLF)
		return nil
	case ServerOK:
		buf.WriteString("+OK")
		buf.Write(CRLF)
		return nil
	case ServerErr:
		buf.WriteString("-ERR '")
		buf.WriteString(cmd.Err)
		buf.WriteString("'")
		buf.Write(CRLF)
		return nil
	default:
		return ErrUnknownCommand
	}
}

func encodeConnect(buf *bytes.Buffer, c Connect) error {
	body, err := json.Marshal(c)
	if err != nil {
		return err
	}
	buf.WriteString("CONNECT ")
	buf.Write(body)
	buf.Write(CRLF)
	return nil
}

func encodeInfo(buf *bytes.Buffer, info *Info) error {
	body, err := json.Marshal(info)
	if err != nil {
		return err
	}
	buf.WriteString("INFO ")
	buf.Write(body)
	buf.Write(CRLF)
	return nil
}

func encodePublish(buf *bytes.Buffer, p Publish) {
	buf.WriteString("PUB ")
	buf.WriteString(p.Subject)
	buf.WriteByte(' ')
	if p.ReplyTo != "" {
		buf.WriteString(p.ReplyTo)
		buf.WriteByte(' ')
	}
	buf.WriteString(strconv.Itoa(len(p.Payload)))
	buf.Write(CRLF)
	buf.Write(p.Payload)
	buf.Write(CRLF)
}

func encodeMsg(buf *bytes.Buffer, m Msg) {
	buf.WriteString("MSG ")
	buf.WriteString(m.Subject)
	buf.WriteByte(' ')
	buf.WriteString(m.SID)
	buf.WriteByte(' ')
	if m.ReplyTo != "" {
		buf.WriteString(m.ReplyTo)
		buf.WriteByte(' ')
	}
	buf.WriteString(strconv.Itoa(len(m.Payload)))
	buf.Write(CRLF)
	buf.Write(m.Payload)
	buf.Write(CRLF)
}

func encodeHPublish(buf *bytes.Buffer, hp HPublish) error {
	headerBlock := encodeHeaderBlock(hp.Headers)
	totalBytes := len(headerBlock) + len(hp.Payload)

	buf.WriteString("HPUB ")
	buf.WriteString(hp.Subject)
	buf.WriteByte(' ')
	if hp.ReplyTo != "" {
		buf.WriteString(hp.ReplyTo)
		buf.WriteByte(' ')
	}
	buf.WriteString(strconv.Itoa(len(headerBlock)))
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(totalBytes))
	buf.Write(CRLF)
	buf.Write(headerBlock)
	buf.Write(hp.Payload)
	buf.Write(CRLF)
	return nil
}

func encodeHMsg(buf *bytes.Buffer, m HMsg) error {
	headerBlock := encodeHeaderBlock(m.Headers)
	totalBytes := len(headerBlock) + len(m.Payload)

	buf.WriteString("HMSG ")
	buf.WriteString(m.Subject)
	buf.WriteByte(' ')
	buf.WriteString(m.SID)
	buf.WriteByte(' ')
	if m.ReplyTo != "" {
		buf.WriteString(m.ReplyTo)
		buf.WriteByte(' ')
	}
	buf.WriteString(strconv.Itoa(len(headerBlock)))
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(totalBytes))
	buf.Write(CRLF)
	buf.Write(headerBlock)
	buf.Write(m.Payload)
	buf.Write(CRLF)
	return nil
}

func encodeSubscribe(buf *bytes.Buffer, s Subscribe) {
	buf.WriteString("SUB ")
	buf.WriteString(s.Subject)
	buf.WriteByte(' ')
	if s.QueueGroup != "" {
		buf.WriteString(s.QueueGroup)
		buf.WriteByte(' ')
	}
	buf.WriteString(s.SID)
	buf.Write(CRLF)
}

func encodeUnsubscribe(buf *bytes.Buffer, u Unsubscribe) {
	buf.WriteString("UNSUB ")
	buf.WriteString(u.SID)
	if u.MaxMsgs > 0 {
		buf.WriteByte(' ')
		buf.WriteString(strconv.Itoa(u.MaxMsgs))
	}
	buf.Write(CRLF)
}

// encodeHeaderBlock renders a HeaderMap into the "NATS/1.0\r\n" leader,
// one "Name: Value\r\n" line per value (repeated names repeat the
// line), and the terminating blank line, in header.go's expected
// format. A nil or empty map still produces the minimal leader+blank
// block, matching spec §4.3's empty-headers case.
func encodeHeaderBlock(h *HeaderMap) []byte {
	var block bytes.Buffer
	block.Write(natsVersionLine)
	block.Write(CRLF)
	if h != nil {
		for _, name := range h.Names() {
			for _, value := range h.Values(name) {
				block.WriteString(name)
				block.WriteString(": ")
				block.WriteString(value)
				block.Write(CRLF)
			}
		}
	}
	block.Write(CRLF)
	return block.Bytes()
}
