// Package engine implements the Network Engine (§4.3): the two NatNet
// sockets, the handshake, the receive loops, and the periodic keepalive.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mocapstream/natnet/internal/natlog"
	"github.com/mocapstream/natnet/internal/ratelimit"
	"github.com/mocapstream/natnet/pkg/transport/udp"
	"github.com/mocapstream/natnet/pkg/wire"
)

// State mirrors the lifecycle states of the engine's connection.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateError
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

const pingAttempts = 3
const pingAttemptTimeout = 100 * time.Millisecond
const readinessPoll = 100 * time.Millisecond

// FrameHandler receives one decoded FrameOfData plus its local arrival
// time, on the data receiver goroutine.
type FrameHandler func(fod wire.FrameOfData, arrival time.Time)

// ModelDefHandler receives one decoded ModelDef, on the command receiver
// goroutine.
type ModelDefHandler func(md wire.ModelDef)

// Engine owns the NatNet sockets and receive goroutines for one connected
// session (§4.3). It has no notion of Frame/ModelDefinitions application
// types; those are produced by the Frame Assembler from what Engine hands
// it over FrameHandler/ModelDefHandler.
type Engine struct {
	cfg Config
	log *natlog.Logger

	onFrame    FrameHandler
	onModelDef ModelDefHandler

	mu      sync.RWMutex
	state   State
	version wire.Version
	lastErr error

	data *udp.DataSocket
	cmd  *udp.CommandSocket

	cancel context.CancelFunc
	group  *errgroup.Group
	done   chan struct{}

	malformedLimiter   *ratelimit.Limiter
	unsupportedLimiter *ratelimit.Limiter
}

// New returns an Engine in the Stopped state.
func New(cfg Config, onFrame FrameHandler, onModelDef ModelDefHandler) *Engine {
	return &Engine{
		cfg:                cfg,
		log:                natlog.Default(),
		onFrame:            onFrame,
		onModelDef:         onModelDef,
		malformedLimiter:   ratelimit.New(5, time.Second),
		unsupportedLimiter: ratelimit.New(1, 10*time.Second),
	}
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Version returns the latched NatNet protocol version, zero before a
// successful handshake.
func (e *Engine) Version() wire.Version {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.version
}

// LastError returns the most recently observed engine-level error, if any.
func (e *Engine) LastError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastErr
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

func (e *Engine) setLastErr(err error) {
	e.mu.Lock()
	e.lastErr = err
	e.state = StateError
	e.mu.Unlock()
}

// Connect opens both sockets, runs the handshake, and starts the receive
// and keepalive goroutines (§4.3).
func (e *Engine) Connect(ctx context.Context) error {
	e.mu.Lock()
	if e.state == StateRunning || e.state == StateStarting {
		e.mu.Unlock()
		return &ConnectError{Err: fmt.Errorf("already connecting or connected")}
	}
	e.state = StateStarting
	e.mu.Unlock()

	data, err := udp.NewDataSocket(e.cfg.Interface, e.cfg.MulticastGroup, e.cfg.DataPort)
	if err != nil {
		e.setLastErr(err)
		return &ConnectError{Err: err}
	}
	cmd, err := udp.NewCommandSocket(e.cfg.Interface, e.cfg.ServerIP, e.cfg.CommandPort)
	if err != nil {
		data.Close()
		e.setLastErr(err)
		return &ConnectError{Err: err}
	}

	version, err := e.handshake(ctx, cmd)
	if err != nil {
		data.Close()
		cmd.Close()
		e.setLastErr(err)
		return &ConnectError{Err: err}
	}

	e.mu.Lock()
	e.data = data
	e.cmd = cmd
	e.version = version
	e.mu.Unlock()

	if e.cfg.RequestModelDefOnConnect {
		_ = e.SendRequestModelDef()
	}

	runCtx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(runCtx)
	e.cancel = cancel
	e.group = group
	e.done = make(chan struct{})

	group.Go(func() error { return e.dataReceiveLoop(gctx) })
	group.Go(func() error { return e.commandReceiveLoop(gctx) })
	if e.cfg.KeepaliveInterval > 0 {
		group.Go(func() error { return e.keepaliveLoop(gctx) })
	}

	go func() {
		_ = group.Wait()
		close(e.done)
	}()

	e.setState(StateRunning)
	return nil
}

// handshake sends PING up to three times with a 100ms per-attempt read
// timeout and returns the latched version from the first PingResponse. No
// read waits past ctx's deadline, and the handshake stops once ctx is done.
func (e *Engine) handshake(ctx context.Context, cmd *udp.CommandSocket) (wire.Version, error) {
	payload := wire.EncodeEnvelope(wire.MsgPing, wire.EncodePing())
	buf := make([]byte, wire.MaxPayloadBytes+4)

	for attempt := 0; attempt < pingAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return wire.Version{}, fmt.Errorf("handshake: %w", err)
		}
		if err := cmd.Send(payload); err != nil {
			return wire.Version{}, err
		}
		deadline := time.Now().Add(pingAttemptTimeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		_ = cmd.Conn().SetReadDeadline(deadline)
		n, err := cmd.Read(buf)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			return wire.Version{}, err
		}
		env, err := wire.DecodeEnvelope(buf[:n])
		if err != nil || env.MessageID != wire.MsgPingResponse {
			continue
		}
		sender, err := wire.DecodePingResponse(env.DataBytes)
		if err != nil {
			continue
		}
		return wire.Version{Major: sender.NatNetVersion[0], Minor: sender.NatNetVersion[1]}, nil
	}
	return wire.Version{}, &HandshakeTimeout{Attempts: pingAttempts}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// dataReceiveLoop drains the multicast data socket, decoding FrameOfData
// packets and handing them to onFrame (§4.3 "Steady state").
func (e *Engine) dataReceiveLoop(ctx context.Context) error {
	buf := make([]byte, wire.MaxPayloadBytes+4)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		_ = e.data.Conn().SetReadDeadline(time.Now().Add(readinessPoll))
		n, _, err := e.data.ReadFrom(buf)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		arrival := time.Now()

		env, err := wire.DecodeEnvelope(buf[:n])
		if err != nil {
			e.logMalformed(err)
			continue
		}
		if env.MessageID != wire.MsgFrameOfData {
			continue
		}

		version := e.Version()
		if !version.Supported() {
			e.logUnsupported(version)
			continue
		}
		fod, err := wire.DecodeFrameOfData(env.DataBytes, version)
		if err != nil {
			e.logMalformed(err)
			continue
		}
		if e.onFrame != nil {
			e.onFrame(fod, arrival)
		}
	}
}

// commandReceiveLoop drains the unicast command socket for ModelDef and
// informational responses that arrive outside the handshake window.
func (e *Engine) commandReceiveLoop(ctx context.Context) error {
	buf := make([]byte, wire.MaxPayloadBytes+4)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		_ = e.cmd.Conn().SetReadDeadline(time.Now().Add(readinessPoll))
		n, err := e.cmd.Read(buf)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			continue
		}

		env, err := wire.DecodeEnvelope(buf[:n])
		if err != nil {
			e.logMalformed(err)
			continue
		}
		switch env.MessageID {
		case wire.MsgModelDef:
			md, err := wire.DecodeModelDef(env.DataBytes, e.Version())
			if err != nil {
				e.logMalformed(err)
				continue
			}
			if e.onModelDef != nil {
				e.onModelDef(md)
			}
		case wire.MsgPingResponse:
			// steady-state keepalive response; version already latched.
		default:
		}
	}
}

// keepaliveLoop re-sends PING and REQUEST_MODELDEF every cfg.KeepaliveInterval.
func (e *Engine) keepaliveLoop(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.KeepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = e.SendPing()
			_ = e.SendRequestModelDef()
		}
	}
}

// SendPing fire-and-forget sends a PING on the command socket (§4.5).
func (e *Engine) SendPing() error {
	e.mu.RLock()
	cmd := e.cmd
	e.mu.RUnlock()
	if cmd == nil {
		return fmt.Errorf("not connected")
	}
	return cmd.Send(wire.EncodeEnvelope(wire.MsgPing, wire.EncodePing()))
}

// SendRequestModelDef fire-and-forget sends a REQUEST_MODELDEF (§4.5).
func (e *Engine) SendRequestModelDef() error {
	e.mu.RLock()
	cmd := e.cmd
	e.mu.RUnlock()
	if cmd == nil {
		return fmt.Errorf("not connected")
	}
	return cmd.Send(wire.EncodeEnvelope(wire.MsgRequestModelDef, nil))
}

func (e *Engine) logMalformed(err error) {
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
	if e.malformedLimiter.Allow() {
		e.log.Warnf("malformed packet: %v", err)
	}
}

func (e *Engine) logUnsupported(v wire.Version) {
	if e.unsupportedLimiter.Allow() {
		e.log.Warnf("unsupported protocol version %d.%d", v.Major, v.Minor)
	}
}

// Disconnect is idempotent and cooperative: it cancels the receive
// goroutines, joins them, closes both sockets, and zeroes the latched
// version (§4.3 "Disconnect").
func (e *Engine) Disconnect() {
	e.mu.Lock()
	if e.state == StateStopped || e.state == StateStopping {
		e.mu.Unlock()
		return
	}
	e.state = StateStopping
	cancel := e.cancel
	done := e.done
	data := e.data
	cmd := e.cmd
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	if data != nil {
		data.Close()
	}
	if cmd != nil {
		cmd.Close()
	}

	e.mu.Lock()
	e.data = nil
	e.cmd = nil
	e.version = wire.Version{}
	e.state = StateStopped
	e.mu.Unlock()
}
