package wire

import (
	"bytes"
	"unicode/utf8"
)

var natsVersionLine = []byte("NATS/1.0")

// parseHeaders consumes exactly headerBytes of buf, which must be the
// literal leader "NATS/1.0\r\n", zero or more "Name: Value\r\n" lines,
// and a terminating "\r\n". Per spec §9, a line is split on its first
// colon only ("first colon wins"), relaxing the stricter "exactly one
// colon" rule so that values containing ':' are legal.
func parseHeaders(buf []byte, headerBytes int) (*HeaderMap, error) {
	if headerBytes < 2 {
		return nil, ErrBadHeaders
	}

	splitter := NewCRLFSplitter(buf)

	leader, _, ok := splitter.Next()
	if !ok || !bytes.Equal(leader, natsVersionLine) {
		return nil, ErrBadHeaders
	}

	headers := NewHeaderMap()
	for {
		line, consumed, ok := splitter.Next()
		if !ok {
			return nil, ErrBadHeaders
		}

		switch {
		case len(line) == 0 && consumed == headerBytes:
			return headers, nil
		case len(line) != 0 && consumed != headerBytes:
			name, value, err := parseHeaderLine(line)
			if err != nil {
				return nil, err
			}
			headers.Add(name, value)
		default:
			return nil, ErrBadHeaders
		}
	}
}

// parseHeaderLine splits a single "Name: Value" line on its first
// colon, stripping a single leading and trailing space from the value.
func parseHeaderLine(line []byte) (name, value string, err error) {
	colon := bytes.IndexByte(line, ':')
	if colon < 0 {
		return "", "", ErrBadHeaders
	}

	nameBytes := line[:colon]
	valueBytes := line[colon+1:]
	valueBytes = bytes.TrimPrefix(valueBytes, []byte(" "))
	valueBytes = bytes.TrimSuffix(valueBytes, []byte(" "))

	if !utf8.Valid(nameBytes) || !utf8.Valid(valueBytes) {
		return "", "", ErrBadHeaders
	}

	return string(nameBytes), string(valueBytes), nil
}
