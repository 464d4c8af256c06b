// Package pipeline implements the Delivery Pipeline (§4.4): a bounded,
// timestamp-ordered queue between the Network Engine's receive goroutine
// and the Client Facade's consumer tick, with optional fixed-latency
// buffering and liveness/data-rate bookkeeping.
package pipeline

import (
	"sync"
	"time"

	"github.com/mocapstream/natnet/pkg/natnet"
)

const queueBound = 100
const defaultTimeout = 100 * time.Millisecond
const fpsEMAFactor = 0.1

// Pipeline holds decoded Frames pending delivery to the consumer.
type Pipeline struct {
	mu sync.Mutex

	queue      []natnet.Frame
	bufferTime time.Duration
	timeout    time.Duration

	lastArrival time.Time
	haveArrival bool
	fps         float64

	latest    *natnet.Frame
	connected bool
}

// New returns a Pipeline with immediate delivery (bufferTime 0) and the
// default 100ms liveness timeout.
func New() *Pipeline {
	return &Pipeline{timeout: defaultTimeout}
}

// SetBufferTime configures the fixed-latency buffering mode (§4.4).
func (p *Pipeline) SetBufferTime(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bufferTime = d
}

// SetTimeout configures the liveness timeout used by IsConnected.
func (p *Pipeline) SetTimeout(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d <= 0 {
		d = defaultTimeout
	}
	p.timeout = d
}

// MarkHandshook records that the Network Engine's handshake succeeded;
// IsConnected is false until this is called (§4.4 "Liveness").
func (p *Pipeline) MarkHandshook() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = true
}

// MarkDisconnected clears handshake state, e.g. on Disconnect.
func (p *Pipeline) MarkDisconnected() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = false
	p.haveArrival = false
	p.latest = nil
	p.queue = nil
	p.fps = 0
}

// Push enqueues a newly-assembled Frame, dropping the oldest queued frame
// on overflow (§4.4 "Queue bound"). Frames are expected to arrive already
// in arrival-timestamp order (the Network Engine's data receiver is a
// single sequential goroutine).
func (p *Pipeline) Push(f natnet.Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.haveArrival {
		dt := f.Timestamp.Sub(p.lastArrival).Seconds()
		if dt > 0 {
			instant := 1 / dt
			p.fps = p.fps + fpsEMAFactor*(instant-p.fps)
		}
	}
	p.lastArrival = f.Timestamp
	p.haveArrival = true

	p.queue = append(p.queue, f)
	if len(p.queue) > queueBound {
		p.queue = p.queue[len(p.queue)-queueBound:]
	}
}

// Drain releases frames eligible for delivery as of now and returns the
// newest one, if any, plus whether a new frame was published this call
// (§4.4, §4.5 "update").
func (p *Pipeline) Drain(now time.Time) (*natnet.Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.queue) == 0 {
		return p.latest, false
	}

	var released []natnet.Frame
	if p.bufferTime <= 0 {
		released = p.queue
		p.queue = nil
	} else {
		cutoff := now.Add(-p.bufferTime)
		i := 0
		for i < len(p.queue) && p.queue[i].Timestamp.Before(cutoff) {
			i++
		}
		released = p.queue[:i]
		p.queue = p.queue[i:]
	}

	if len(released) == 0 {
		return p.latest, false
	}

	f := released[len(released)-1]
	p.latest = &f
	return p.latest, true
}

// Latest returns the currently-published newest frame without draining
// (§4.5 "getFrame").
func (p *Pipeline) Latest() (*natnet.Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.latest != nil
}

// IsConnected reports whether the handshake succeeded and a data packet
// has arrived within the configured timeout (§4.4 "Liveness"). On loss of
// liveness the public state resets to an empty snapshot, but the caller is
// responsible for leaving sockets open.
func (p *Pipeline) IsConnected(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected || !p.haveArrival {
		return false
	}
	if now.Sub(p.lastArrival) >= p.timeout {
		p.latest = nil
		return false
	}
	return true
}

// FPS returns the current exponential moving average of the data packet
// rate (§4.4 "Data-rate EMA").
func (p *Pipeline) FPS() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fps
}

// HealthState is a finer-grained liveness diagnostic than IsConnected's
// boolean, tracking how many timeout periods have elapsed since the last
// packet. It never feeds back into IsConnected's contract.
type HealthState int

const (
	HealthAlive HealthState = iota
	HealthSuspect
	HealthDead
)

func (s HealthState) String() string {
	switch s {
	case HealthAlive:
		return "alive"
	case HealthSuspect:
		return "suspect"
	case HealthDead:
		return "dead"
	default:
		return "unknown"
	}
}

// ConnectionHealth reports alive/suspect/dead the way the corpus's member
// failure detector does: suspect after missing one timeout window, dead
// after missing three, without altering the plain IsConnected boolean used
// elsewhere.
func (p *Pipeline) ConnectionHealth(now time.Time) HealthState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected || !p.haveArrival {
		return HealthDead
	}
	missed := now.Sub(p.lastArrival)
	switch {
	case missed < p.timeout:
		return HealthAlive
	case missed < 3*p.timeout:
		return HealthSuspect
	default:
		return HealthDead
	}
}
