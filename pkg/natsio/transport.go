package natsio

import (
	"time"

	"github.com/lumadb/natsio/pkg/wire"
)

// FramedReader yields one parsed server command per call. A driver
// implements this over a buffered net.Conn plus pkg/wire's decoder.
type FramedReader interface {
	ReadCommand() (wire.ServerCommand, error)
}

// FramedWriter accepts one client command per call and is responsible
// for encoding and flushing it onto the transport.
type FramedWriter interface {
	WriteCommand(wire.ClientCommand) error
}

// Clock is the monotonic time source a driver supplies to every Step
// and poll/handle call. Millisecond resolution is sufficient.
type Clock interface {
	Now() time.Time
}
