// Package client implements the Client Facade (§4.5): the stable
// consumer-facing surface over the Network Engine, Frame Assembler, and
// Delivery Pipeline.
package client

import (
	"context"
	"sync"
	"time"

	"github.com/mocapstream/natnet/pkg/engine"
	"github.com/mocapstream/natnet/pkg/natnet"
	"github.com/mocapstream/natnet/pkg/pipeline"
	"github.com/mocapstream/natnet/pkg/wire"
)

// Client is the NatNet client: connect once, call Update on every consumer
// tick, read frames with GetFrame.
type Client struct {
	cfg engine.Config
	eng *engine.Engine
	asm *natnet.Assembler
	pipe *pipeline.Pipeline
	defs *natnet.ModelDefinitionsStore

	cfgMu      sync.RWMutex
	transform  natnet.Transform
	filterDist float32

	tickMu     sync.Mutex
	newThisTick bool

	handlersMu     sync.RWMutex
	onFrameUpdate  func(natnet.Frame)
	onFrameReceive func(natnet.Frame)
}

// New returns a Client configured to connect per cfg. The engine is not
// started until Connect is called.
func New(cfg engine.Config) *Client {
	c := &Client{
		cfg:       cfg,
		asm:       natnet.NewAssembler(),
		pipe:      pipeline.New(),
		defs:      natnet.NewModelDefinitionsStore(),
		transform: natnet.Identity(),
	}
	c.eng = engine.New(cfg, c.handleFrame, c.handleModelDef)
	return c
}

// Connect runs the Network Engine handshake, blocking up to the context
// deadline (§4.5 "connect").
func (c *Client) Connect(ctx context.Context) error {
	if c.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ConnectTimeout)
		defer cancel()
	}
	if err := c.eng.Connect(ctx); err != nil {
		return err
	}
	c.pipe.MarkHandshook()
	return nil
}

// Disconnect stops the engine and resets the pipeline's live state.
func (c *Client) Disconnect() {
	c.eng.Disconnect()
	c.pipe.MarkDisconnected()
}

// Update drains the pipeline, publishes the newest Frame, and fires
// onFrameUpdate if one was published this tick (§4.5 "update"). The
// periodic handshake keepalive runs on the engine's own background
// goroutine rather than being driven from here, so that network I/O never
// runs on the consumer thread (§5).
func (c *Client) Update() {
	f, isNew := c.pipe.Drain(time.Now())

	c.tickMu.Lock()
	c.newThisTick = isNew
	c.tickMu.Unlock()

	if isNew && f != nil {
		c.handlersMu.RLock()
		cb := c.onFrameUpdate
		c.handlersMu.RUnlock()
		if cb != nil {
			cb(*f)
		}
	}
}

// GetFrame returns the currently-published newest Frame, if any (§4.5).
func (c *Client) GetFrame() (natnet.Frame, bool) {
	f, ok := c.pipe.Latest()
	if !ok {
		return natnet.Frame{}, false
	}
	return *f, true
}

// IsFrameNew reports whether the most recent Update call published a new
// Frame (§4.5).
func (c *Client) IsFrameNew() bool {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()
	return c.newThisTick
}

// IsConnected reports handshake success plus recent data arrival (§4.4).
func (c *Client) IsConnected() bool {
	return c.pipe.IsConnected(time.Now())
}

// FPS returns the data-rate EMA (§4.4).
func (c *Client) FPS() float64 {
	return c.pipe.FPS()
}

// ConnectionHealth reports the finer-grained alive/suspect/dead liveness
// diagnostic backing a Supervisor's restart decisions, additive to the
// plain IsConnected boolean.
func (c *Client) ConnectionHealth() pipeline.HealthState {
	return c.pipe.ConnectionHealth(time.Now())
}

// SetTransform configures the coordinate transform applied to subsequently
// decoded Frames (§4.5).
func (c *Client) SetTransform(t natnet.Transform) {
	c.cfgMu.Lock()
	c.transform = t
	c.cfgMu.Unlock()
}

// SetScale is shorthand for SetTransform(natnet.Scale(s)) (§4.5).
func (c *Client) SetScale(s float32) {
	c.SetTransform(natnet.Scale(s))
}

// SetBufferTime configures the Delivery Pipeline's fixed-latency mode (§4.5).
func (c *Client) SetBufferTime(d time.Duration) {
	c.pipe.SetBufferTime(d)
}

// SetTimeout configures the liveness timeout (§4.5).
func (c *Client) SetTimeout(d time.Duration) {
	c.pipe.SetTimeout(d)
}

// SetDuplicatedPointRemovalDistance configures the Frame Assembler's
// duplicate-marker filter distance (§4.5).
func (c *Client) SetDuplicatedPointRemovalDistance(d float32) {
	c.cfgMu.Lock()
	c.filterDist = d
	c.cfgMu.Unlock()
}

// SendPing fire-and-forget sends a PING (§4.5).
func (c *Client) SendPing() error { return c.eng.SendPing() }

// SendRequestModelDef fire-and-forget sends a REQUEST_MODELDEF (§4.5).
func (c *Client) SendRequestModelDef() error { return c.eng.SendRequestModelDef() }

// ModelDefinitions returns the most recently published description tables
// (§4.5 "Accessors for ModelDefinitions snapshots").
func (c *Client) ModelDefinitions() *natnet.ModelDefinitions {
	return c.defs.Load()
}

// OnFrameUpdate registers the callback fired on the consumer goroutine
// during Update, whenever a new Frame is published (§4.5).
func (c *Client) OnFrameUpdate(fn func(natnet.Frame)) {
	c.handlersMu.Lock()
	c.onFrameUpdate = fn
	c.handlersMu.Unlock()
}

// OnFrameReceive registers the callback fired on the Network Engine's data
// receiver goroutine immediately on decode; the callback must be
// re-entrancy-safe (§4.5).
func (c *Client) OnFrameReceive(fn func(natnet.Frame)) {
	c.handlersMu.Lock()
	c.onFrameReceive = fn
	c.handlersMu.Unlock()
}

// Version returns the latched NatNet protocol version, zero before connect.
func (c *Client) Version() wire.Version { return c.eng.Version() }

// LastError returns the most recently observed engine-level error, if any.
func (c *Client) LastError() error { return c.eng.LastError() }

func (c *Client) handleFrame(fod wire.FrameOfData, arrival time.Time) {
	c.cfgMu.RLock()
	t := c.transform
	dist := c.filterDist
	c.cfgMu.RUnlock()

	f := c.asm.Assemble(fod, t, c.defs.Load(), dist, arrival)
	c.pipe.Push(f)

	c.handlersMu.RLock()
	cb := c.onFrameReceive
	c.handlersMu.RUnlock()
	if cb != nil {
		cb(f)
	}
}

func (c *Client) handleModelDef(md wire.ModelDef) {
	defs := natnet.NewModelDefinitions()
	for _, ms := range md.MarkerSets {
		defs.MarkerSets[ms.Name] = natnet.MarkerSetDescription{Name: ms.Name, MarkerNames: ms.MarkerNames}
	}
	for _, rb := range md.RigidBodies {
		defs.RigidBodies[rb.ID] = natnet.RigidBodyDescription{
			Name:     rb.Name,
			ID:       rb.ID,
			ParentID: rb.ParentID,
			Offset:   natnet.Vec3{X: rb.OffsetX, Y: rb.OffsetY, Z: rb.OffsetZ},
		}
	}
	for _, sk := range md.Skeletons {
		joints := make([]natnet.RigidBodyDescription, len(sk.Joints))
		for i, j := range sk.Joints {
			joints[i] = natnet.RigidBodyDescription{
				Name:     j.Name,
				ID:       j.ID,
				ParentID: j.ParentID,
				Offset:   natnet.Vec3{X: j.OffsetX, Y: j.OffsetY, Z: j.OffsetZ},
			}
		}
		defs.Skeletons[sk.ID] = natnet.SkeletonDescription{Name: sk.Name, ID: sk.ID, Joints: joints}
	}
	c.defs.Publish(defs)
}
