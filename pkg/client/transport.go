package client

import (
	"bytes"
	"io"

	"github.com/lumadb/natsio/pkg/wire"
	"go.uber.org/zap"
)

// Transport is the connection-oriented byte stream collaborator the
// driver consumes. A *net.TCPConn (or net.Conn more generally)
// satisfies it directly.
type Transport interface {
	io.Reader
	io.Writer
	Close() error
}

// framedReader turns a Transport into a natsio.FramedReader: it reads
// chunks as needed and decodes frames from an internal buffer,
// logging and skipping recoverable frame-level decode errors rather
// than surfacing them, per spec §7's propagation policy.
type framedReader struct {
	transport Transport
	logger    *zap.Logger
	buf       []byte
	chunk     []byte
}

func newFramedReader(t Transport, logger *zap.Logger) *framedReader {
	return &framedReader{transport: t, logger: logger, chunk: make([]byte, 4096)}
}

func (r *framedReader) ReadCommand() (wire.ServerCommand, error) {
	for {
		cmd, consumed, outcome, err := wire.DecodeServerCommand(r.buf)
		switch outcome {
		case wire.OutcomeFrame:
			r.buf = r.buf[consumed:]
			return cmd, nil
		case wire.OutcomeError:
			r.logger.Warn("dropping malformed frame", zap.Error(err))
			r.buf = r.buf[consumed:]
		case wire.OutcomeNeedMore:
			n, readErr := r.transport.Read(r.chunk)
			if n > 0 {
				r.buf = append(r.buf, r.chunk[:n]...)
			}
			if readErr != nil {
				return wire.ServerCommand{}, readErr
			}
		}
	}
}

// framedWriter turns a Transport into a natsio.FramedWriter.
type framedWriter struct {
	transport Transport
}

func (w *framedWriter) WriteCommand(cmd wire.ClientCommand) error {
	var buf bytes.Buffer
	if err := wire.EncodeClientCommand(&buf, cmd); err != nil {
		return err
	}
	_, err := w.transport.Write(buf.Bytes())
	return err
}
