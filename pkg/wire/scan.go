package wire

import "bytes"

// CRLFSplitter lazily yields the slices between successive CRLF
// delimiters in buf, without allocating. consumed is measured from
// the start of buf and includes the delimiter bytes, so the caller can
// advance an outer buffer precisely.
type CRLFSplitter struct {
	buf     []byte
	pos     int
	done    bool
}

// NewCRLFSplitter returns a splitter over buf.
func NewCRLFSplitter(buf []byte) *CRLFSplitter {
	return &CRLFSplitter{buf: buf}
}

// Next returns the next CRLF-delimited slice and the running consumed
// offset from the start of buf (inclusive of the CRLF just matched).
// ok is false once every delimiter has been exhausted; any remaining
// bytes without a trailing CRLF are never yielded.
func (s *CRLFSplitter) Next() (slice []byte, consumed int, ok bool) {
	if s.done {
		return nil, 0, false
	}
	idx := bytes.Index(s.buf[s.pos:], CRLF)
	if idx < 0 {
		s.done = true
		return nil, 0, false
	}
	slice = s.buf[s.pos : s.pos+idx]
	s.pos += idx + len(CRLF)
	return slice, s.pos, true
}

// ByteSplitter lazily yields the slices between successive occurrences
// of a single delimiter byte, without allocating.
type ByteSplitter struct {
	buf   []byte
	delim byte
	pos   int
	done  bool
}

// NewByteSplitter returns a splitter over buf on delim.
func NewByteSplitter(buf []byte, delim byte) *ByteSplitter {
	return &ByteSplitter{buf: buf, delim: delim}
}

// Next returns the next delimiter-bounded slice and the running
// consumed offset from the start of buf (inclusive of the delimiter
// just matched).
func (s *ByteSplitter) Next() (slice []byte, consumed int, ok bool) {
	if s.done {
		return nil, 0, false
	}
	idx := bytes.IndexByte(s.buf[s.pos:], s.delim)
	if idx < 0 {
		s.done = true
		return nil, 0, false
	}
	slice = s.buf[s.pos : s.pos+idx]
	s.pos += idx + 1
	return slice, s.pos, true
}

// findCRLF searches buf for the first CRLF and reports its index, or
// -1 if absent.
func findCRLF(buf []byte) int {
	return bytes.Index(buf, CRLF)
}
