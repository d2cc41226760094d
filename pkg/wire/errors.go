package wire

import "errors"

// Decode errors. Each is a frame-level error per spec §7: the
// dispatcher recovers locally (skips past the next CRLF) and the
// driver is expected to log and continue, never terminate the stream
// because of one of these.
var (
	ErrExceedsSoftLength = errors.New("wire: frame exceeds soft length limit without a CRLF")
	ErrUnknownCommand    = errors.New("wire: unrecognized command prefix")

	ErrBadInfo    = errors.New("wire: malformed INFO body")
	ErrBadMsg     = errors.New("wire: malformed MSG body")
	ErrBadHMsg    = errors.New("wire: malformed HMSG body")
	ErrBadPub     = errors.New("wire: malformed PUB body")
	ErrBadHPub    = errors.New("wire: malformed HPUB body")
	ErrBadSub     = errors.New("wire: malformed SUB body")
	ErrBadUnsub   = errors.New("wire: malformed UNSUB body")
	ErrBadConnect = errors.New("wire: malformed CONNECT body")
	ErrBadErr     = errors.New("wire: malformed -ERR body")
	ErrBadHeaders = errors.New("wire: malformed header block")
)
