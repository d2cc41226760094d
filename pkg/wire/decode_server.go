package wire

import (
	"encoding/json"
	"strconv"
)

func decodeInfo(body []byte) bodyResult[ServerCommand] {
	line, consumed, ok := NewCRLFSplitter(body).Next()
	if !ok {
		return tooShort[ServerCommand](0)
	}

	var info Info
	if err := json.Unmarshal(line, &info); err != nil {
		return fatal[ServerCommand](ErrBadInfo, consumed)
	}

	return advance(ServerCommand{Kind: ServerInfo, Info: &info}, consumed)
}

func decodeMsg(body []byte) bodyResult[ServerCommand] {
	crlf := NewCRLFSplitter(body)
	metadata, _, ok := crlf.Next()
	if !ok {
		return tooShort[ServerCommand](0)
	}
	payload, msgEnd, ok := crlf.Next()
	if !ok {
		return tooShort[ServerCommand](0)
	}

	subject, sid, replyTo, bytesField, ok := splitMsgMetadata(metadata)
	if !ok {
		return fatal[ServerCommand](ErrBadMsg, msgEnd)
	}

	n, err := strconv.Atoi(string(bytesField))
	if err != nil || n < 0 {
		return fatal[ServerCommand](ErrBadMsg, msgEnd)
	}
	if len(payload) != n {
		return fatal[ServerCommand](ErrBadMsg, msgEnd)
	}

	msg := Msg{
		Subject: string(subject),
		SID:     string(sid),
		ReplyTo: string(replyTo),
		Bytes:   n,
		Payload: append([]byte(nil), payload...),
	}
	return advance(ServerCommand{Kind: ServerMsg, Msg: msg}, msgEnd)
}

// splitMsgMetadata splits "subject sid [reply-to] bytes" into its
// parts. Between 3 and 4 space-separated tokens are accepted; a 4th
// token is the reply-to.
func splitMsgMetadata(metadata []byte) (subject, sid, replyTo, bytesField []byte, ok bool) {
	splitter := NewByteSplitter(metadata, ' ')
	s1, _, ok1 := splitter.Next()
	s2, last2, ok2 := splitter.Next()
	s3, last3, ok3 := splitter.Next()
	_, _, ok4 := splitter.Next()

	switch {
	case ok1 && ok2 && ok3 && !ok4:
		return s1, s2, s3, metadata[last3:], true
	case ok1 && ok2 && !ok3:
		return s1, s2, nil, metadata[last2:], true
	default:
		return nil, nil, nil, nil, false
	}
}

func decodeHMsg(body []byte) bodyResult[ServerCommand] {
	crlf := NewCRLFSplitter(body)
	metadata, metaLen, ok := crlf.Next()
	if !ok {
		return tooShort[ServerCommand](0)
	}

	subject, sid, replyTo, headerField, totalField, ok := splitHMsgMetadata(metadata)
	if !ok {
		return fatal[ServerCommand](ErrBadHMsg, metaLen)
	}

	headerBytes, err1 := strconv.Atoi(string(headerField))
	totalBytes, err2 := strconv.Atoi(string(totalField))
	if err1 != nil || err2 != nil {
		return fatal[ServerCommand](ErrBadHMsg, metaLen)
	}
	if totalBytes < headerBytes {
		return fatal[ServerCommand](ErrBadHMsg, metaLen)
	}
	if totalBytes > len(body)-metaLen {
		return tooShort[ServerCommand](totalBytes - (len(body) - metaLen))
	}

	headerBlock := body[metaLen : metaLen+headerBytes]
	payload := body[metaLen+headerBytes : metaLen+totalBytes]
	consumed := metaLen + totalBytes + len(CRLF)
	if len(body) < consumed {
		return tooShort[ServerCommand](consumed - len(body))
	}

	headers, err := parseHeaders(headerBlock, headerBytes)
	if err != nil {
		return fatal[ServerCommand](ErrBadHMsg, consumed)
	}

	hmsg := HMsg{
		Subject:     string(subject),
		SID:         string(sid),
		ReplyTo:     string(replyTo),
		HeaderBytes: headerBytes,
		TotalBytes:  totalBytes,
		Headers:     headers,
		Payload:     append([]byte(nil), payload...),
	}
	return advance(ServerCommand{Kind: ServerHMsg, HMsg: hmsg}, consumed)
}

// splitHMsgMetadata splits "subject sid [reply-to] header-bytes
// total-bytes" into its parts: 4 tokens (no reply-to) or 5 (with).
func splitHMsgMetadata(metadata []byte) (subject, sid, replyTo, headerField, totalField []byte, ok bool) {
	splitter := NewByteSplitter(metadata, ' ')
	s1, _, ok1 := splitter.Next()
	s2, _, ok2 := splitter.Next()
	s3, last3, ok3 := splitter.Next()
	s4, last4, ok4 := splitter.Next()
	_, _, ok5 := splitter.Next()

	switch {
	case ok1 && ok2 && ok3 && ok4 && !ok5:
		return s1, s2, s3, s4, metadata[last4:], true
	case ok1 && ok2 && ok3 && !ok4:
		return s1, s2, nil, s3, metadata[last3:], true
	default:
		return nil, nil, nil, nil, nil, false
	}
}

func decodePingServer(body []byte) bodyResult[ServerCommand] {
	line, consumed, ok := NewCRLFSplitter(body).Next()
	if !ok {
		return tooShort[ServerCommand](0)
	}
	if len(line) != 0 {
		return wrongDecoder[ServerCommand]()
	}
	return advance(ServerCommand{Kind: ServerPing}, consumed)
}

func decodePongServer(body []byte) bodyResult[ServerCommand] {
	line, consumed, ok := NewCRLFSplitter(body).Next()
	if !ok {
		return tooShort[ServerCommand](0)
	}
	if len(line) != 0 {
		return wrongDecoder[ServerCommand]()
	}
	return advance(ServerCommand{Kind: ServerPong}, consumed)
}

func decodeOk(body []byte) bodyResult[ServerCommand] {
	line, consumed, ok := NewCRLFSplitter(body).Next()
	if !ok {
		return tooShort[ServerCommand](0)
	}
	if len(line) != 0 {
		return wrongDecoder[ServerCommand]()
	}
	return advance(ServerCommand{Kind: ServerOK}, consumed)
}

func decodeErr(body []byte) bodyResult[ServerCommand] {
	line, consumed, ok := NewCRLFSplitter(body).Next()
	if !ok {
		return tooShort[ServerCommand](0)
	}

	if len(line) < 2 || line[0] != '\'' || line[len(line)-1] != '\'' {
		return fatal[ServerCommand](ErrBadErr, consumed)
	}

	return advance(ServerCommand{Kind: ServerErr, Err: string(line[1 : len(line)-1])}, consumed)
}
