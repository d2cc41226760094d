package client

import (
	"sync"
	"time"

	"github.com/lumadb/natsio/pkg/natsio"
	"github.com/lumadb/natsio/pkg/wire"
	"go.uber.org/zap"
)

// runDriver is the per-connection driver loop (it starts one reader
// goroutine that decodes server frames into a channel): it pumps decoded
// server frames and application requests into binding, writes out
// whatever binding.PollTransmit produces, and re-arms the three
// keep-alive timers after every step. It returns (closing done) when
// the transport read side fails, the caller closes closeCh, or
// binding reaches ProtocolViolation/ConnectionLost.
func runDriver(
	binding *natsio.NatsBinding,
	mu *sync.Mutex,
	transport Transport,
	logger *zap.Logger,
	appCh <-chan natsio.ApplicationCommand,
	closeCh <-chan struct{},
	done chan<- struct{},
) {
	defer close(done)
	defer transport.Close()

	reader := newFramedReader(transport, logger)
	writer := &framedWriter{transport: transport}

	serverCh := make(chan wire.ServerCommand)
	readErrCh := make(chan error, 1)
	go func() {
		for {
			cmd, err := reader.ReadCommand()
			if err != nil {
				readErrCh <- err
				return
			}
			serverCh <- cmd
		}
	}()

	pingTimer := time.NewTimer(time.Hour)
	pongTimer := time.NewTimer(time.Hour)
	keepAliveTimer := time.NewTimer(time.Hour)
	defer pingTimer.Stop()
	defer pongTimer.Stop()
	defer keepAliveTimer.Stop()

	flush := func() bool {
		for {
			cmd, ok := binding.PollTransmit()
			if !ok {
				break
			}
			if err := writer.WriteCommand(cmd); err != nil {
				logger.Warn("write failed, closing connection", zap.Error(err))
				return false
			}
		}
		switch binding.State() {
		case natsio.StateProtocolViolation, natsio.StateConnectionLost:
			return false
		default:
			return true
		}
	}

	rearm := func(now time.Time) {
		rearmOne(pingTimer, func() (time.Time, bool) { return binding.PollSendPingDeadline(now) }, now)
		rearmOne(pongTimer, binding.PollSendPongDeadline, now)
		rearmOne(keepAliveTimer, binding.PollKeepAliveDeadline, now)
	}

	mu.Lock()
	rearm(time.Now())
	mu.Unlock()

	step := func(fn func(now time.Time)) bool {
		mu.Lock()
		defer mu.Unlock()
		now := time.Now()
		fn(now)
		if !flush() {
			return false
		}
		rearm(now)
		return true
	}

	for {
		select {
		case <-closeCh:
			return

		case err := <-readErrCh:
			logger.Info("transport closed", zap.Error(err))
			return

		case cmd := <-serverCh:
			if !step(func(now time.Time) { binding.StepServer(cmd, now) }) {
				return
			}

		case cmd, ok := <-appCh:
			if !ok {
				return
			}
			if !step(func(now time.Time) { binding.StepApplication(cmd, now) }) {
				return
			}

		case <-pingTimer.C:
			if !step(binding.HandleSendPingTimeout) {
				return
			}

		case <-pongTimer.C:
			if !step(binding.HandleSendPongTimeout) {
				return
			}

		case <-keepAliveTimer.C:
			if !step(binding.HandleKeepAliveTimeout) {
				return
			}
		}
	}
}

// rearmOne resets timer to fire at the next deadline poll returns,
// relative to now, clamping to a minimum of zero. A false ok parks
// the timer an hour out; it gets re-armed the next time something
// happens.
func rearmOne(timer *time.Timer, poll func() (time.Time, bool), now time.Time) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	deadline, ok := poll()
	if !ok {
		timer.Reset(time.Hour)
		return
	}
	d := deadline.Sub(now)
	if d < 0 {
		d = 0
	}
	timer.Reset(d)
}
