package wire

import (
	"encoding/json"
	"strconv"
)

func decodeConnect(body []byte) bodyResult[ClientCommand] {
	line, consumed, ok := NewCRLFSplitter(body).Next()
	if !ok {
		return tooShort[ClientCommand](0)
	}

	var connect Connect
	if err := json.Unmarshal(line, &connect); err != nil {
		return fatal[ClientCommand](ErrBadConnect, consumed)
	}

	return advance(ClientCommand{Kind: ClientConnect, Connect: connect}, consumed)
}

func decodePub(body []byte) bodyResult[ClientCommand] {
	crlf := NewCRLFSplitter(body)
	metadata, metaLen, ok := crlf.Next()
	if !ok {
		return tooShort[ClientCommand](0)
	}

	subject, replyTo, bytesField, ok := splitPubMetadata(metadata)
	if !ok {
		return fatal[ClientCommand](ErrBadPub, metaLen)
	}

	n, err := strconv.Atoi(string(bytesField))
	if err != nil || n < 0 {
		return fatal[ClientCommand](ErrBadPub, metaLen)
	}

	payload, end, ok := crlf.Next()
	if !ok {
		return tooShort[ClientCommand](n - (len(body) - metaLen))
	}
	if len(payload) != n {
		return fatal[ClientCommand](ErrBadPub, end)
	}

	pub := Publish{
		Subject: string(subject),
		ReplyTo: string(replyTo),
		Bytes:   n,
		Payload: append([]byte(nil), payload...),
	}
	return advance(ClientCommand{Kind: ClientPublish, Publish: pub}, end)
}

func splitPubMetadata(metadata []byte) (subject, replyTo, bytesField []byte, ok bool) {
	splitter := NewByteSplitter(metadata, ' ')
	s1, last1, ok1 := splitter.Next()
	s2, last2, ok2 := splitter.Next()
	_, _, ok3 := splitter.Next()

	switch {
	case ok1 && ok2 && !ok3:
		return s1, s2, metadata[last2:], true
	case ok1 && !ok2:
		return s1, nil, metadata[last1:], true
	default:
		return nil, nil, nil, false
	}
}

func decodeHPub(body []byte) bodyResult[ClientCommand] {
	crlf := NewCRLFSplitter(body)
	metadata, metaLen, ok := crlf.Next()
	if !ok {
		return tooShort[ClientCommand](0)
	}

	subject, replyTo, headerField, totalField, ok := splitHPubMetadata(metadata)
	if !ok {
		return fatal[ClientCommand](ErrBadHPub, metaLen)
	}

	headerBytes, err1 := strconv.Atoi(string(headerField))
	totalBytes, err2 := strconv.Atoi(string(totalField))
	if err1 != nil || err2 != nil {
		return fatal[ClientCommand](ErrBadHPub, metaLen)
	}
	if totalBytes < headerBytes {
		return fatal[ClientCommand](ErrBadHPub, metaLen)
	}
	if totalBytes > len(body)-metaLen {
		return tooShort[ClientCommand](totalBytes - (len(body) - metaLen))
	}

	headerBlock := body[metaLen : metaLen+headerBytes]
	payload := body[metaLen+headerBytes : metaLen+totalBytes]
	consumed := metaLen + totalBytes + len(CRLF)
	if len(body) < consumed {
		return tooShort[ClientCommand](consumed - len(body))
	}

	headers, err := parseHeaders(headerBlock, headerBytes)
	if err != nil {
		return fatal[ClientCommand](ErrBadHPub, consumed)
	}

	hpub := HPublish{
		Subject:     string(subject),
		ReplyTo:     string(replyTo),
		HeaderBytes: headerBytes,
		TotalBytes:  totalBytes,
		Headers:     headers,
		Payload:     append([]byte(nil), payload...),
	}
	return advance(ClientCommand{Kind: ClientHPublish, HPublish: hpub}, consumed)
}

func splitHPubMetadata(metadata []byte) (subject, replyTo, headerField, totalField []byte, ok bool) {
	splitter := NewByteSplitter(metadata, ' ')
	s1, _, ok1 := splitter.Next()
	s2, last2, ok2 := splitter.Next()
	s3, last3, ok3 := splitter.Next()
	_, _, ok4 := splitter.Next()

	switch {
	case ok1 && ok2 && ok3 && !ok4:
		return s1, s2, s3, metadata[last3:], true
	case ok1 && ok2 && !ok3:
		return s1, nil, s2, metadata[last2:], true
	default:
		return nil, nil, nil, nil, false
	}
}

func decodeSub(body []byte) bodyResult[ClientCommand] {
	line, consumed, ok := NewCRLFSplitter(body).Next()
	if !ok {
		return tooShort[ClientCommand](0)
	}

	subject, queue, sid, ok := splitSubMetadata(line)
	if !ok {
		return fatal[ClientCommand](ErrBadSub, consumed)
	}

	sub := Subscribe{
		Subject:    string(subject),
		QueueGroup: string(queue),
		SID:        string(sid),
	}
	return advance(ClientCommand{Kind: ClientSubscribe, Subscribe: sub}, consumed)
}

// splitSubMetadata splits "subject [queue-group] sid" into its parts:
// 2 tokens (no queue group) or 3 (with).
func splitSubMetadata(line []byte) (subject, queue, sid []byte, ok bool) {
	splitter := NewByteSplitter(line, ' ')
	s1, last1, ok1 := splitter.Next()
	s2, last2, ok2 := splitter.Next()
	_, _, ok3 := splitter.Next()

	switch {
	case ok1 && ok2 && !ok3:
		return s1, s2, line[last2:], true
	case ok1 && !ok2:
		return s1, nil, line[last1:], true
	default:
		return nil, nil, nil, false
	}
}

func decodeUnsub(body []byte) bodyResult[ClientCommand] {
	line, consumed, ok := NewCRLFSplitter(body).Next()
	if !ok {
		return tooShort[ClientCommand](0)
	}

	sid, maxMsgsBytes, ok := splitUnsubMetadata(line)
	if !ok {
		return fatal[ClientCommand](ErrBadUnsub, consumed)
	}

	maxMsgs := 0
	if maxMsgsBytes != nil {
		n, err := strconv.Atoi(string(maxMsgsBytes))
		if err != nil || n <= 0 {
			return fatal[ClientCommand](ErrBadUnsub, consumed)
		}
		maxMsgs = n
	}

	unsub := Unsubscribe{SID: string(sid), MaxMsgs: maxMsgs}
	return advance(ClientCommand{Kind: ClientUnsubscribe, Unsubscribe: unsub}, consumed)
}

// splitUnsubMetadata splits "sid [max-msgs]" into its parts. A nil
// maxMsgsField means the token was absent from the wire.
func splitUnsubMetadata(line []byte) (sid, maxMsgsField []byte, ok bool) {
	splitter := NewByteSplitter(line, ' ')
	s1, last1, ok1 := splitter.Next()
	_, _, ok2 := splitter.Next()

	switch {
	case ok1 && !ok2:
		return s1, line[last1:], true
	case !ok1:
		return line, nil, true
	default:
		return nil, nil, false
	}
}

func decodePingClient(body []byte) bodyResult[ClientCommand] {
	line, consumed, ok := NewCRLFSplitter(body).Next()
	if !ok {
		return tooShort[ClientCommand](0)
	}
	if len(line) != 0 {
		return wrongDecoder[ClientCommand]()
	}
	return advance(ClientCommand{Kind: ClientPing}, consumed)
}

func decodePongClient(body []byte) bodyResult[ClientCommand] {
	line, consumed, ok := NewCRLFSplitter(body).Next()
	if !ok {
		return tooShort[ClientCommand](0)
	}
	if len(line) != 0 {
		return wrongDecoder[ClientCommand]()
	}
	return advance(ClientCommand{Kind: ClientPong}, consumed)
}
