package client

import (
	"github.com/lumadb/natsio/pkg/natsio"
	"go.uber.org/zap"
)

type config struct {
	timeouts  natsio.Timeouts
	logger    *zap.Logger
	errSink   chan<- string
	appBuffer int
}

// Option configures a ClientHandle at Connect time.
type Option func(*config)

// WithTimeouts overrides the keep-alive timeouts; the default is
// natsio.DefaultTimeouts().
func WithTimeouts(t natsio.Timeouts) Option {
	return func(c *config) { c.timeouts = t }
}

// WithLogger supplies a *zap.Logger; the default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithErrorSink forwards every server -ERR message (non-blocking) to
// ch.
func WithErrorSink(ch chan<- string) Option {
	return func(c *config) { c.errSink = ch }
}

func defaultConfig() config {
	return config{
		timeouts:  natsio.DefaultTimeouts(),
		logger:    zap.NewNop(),
		appBuffer: 64,
	}
}
