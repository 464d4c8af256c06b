package pipeline

import (
	"testing"
	"time"

	"github.com/mocapstream/natnet/pkg/natnet"
)

func TestImmediateModeDeliversEveryFrame(t *testing.T) {
	p := New() // bufferTime 0
	p.MarkHandshook()

	now := time.Now()
	p.Push(natnet.Frame{FrameNumber: 1, Timestamp: now})

	f, isNew := p.Drain(now)
	if !isNew || f.FrameNumber != 1 {
		t.Fatalf("Drain = %+v, %v", f, isNew)
	}
}

func TestBufferedModeDelaysDelivery(t *testing.T) {
	p := New()
	p.SetBufferTime(50 * time.Millisecond)
	p.MarkHandshook()

	now := time.Now()
	p.Push(natnet.Frame{FrameNumber: 1, Timestamp: now})

	if _, isNew := p.Drain(now); isNew {
		t.Fatal("frame should not be released before bufferTime elapses")
	}

	later := now.Add(60 * time.Millisecond)
	f, isNew := p.Drain(later)
	if !isNew || f.FrameNumber != 1 {
		t.Fatalf("Drain(later) = %+v, %v", f, isNew)
	}
}

func TestQueueBoundDropsOldest(t *testing.T) {
	p := New()
	p.SetBufferTime(time.Hour) // nothing released, so queue length is observable
	base := time.Now()

	for i := 0; i < 150; i++ {
		p.Push(natnet.Frame{FrameNumber: int32(i), Timestamp: base.Add(time.Duration(i) * time.Millisecond)})
	}

	p.mu.Lock()
	got := len(p.queue)
	oldest := p.queue[0].FrameNumber
	p.mu.Unlock()

	if got != queueBound {
		t.Errorf("queue length = %d, want %d", got, queueBound)
	}
	if oldest != 50 {
		t.Errorf("oldest surviving frame = %d, want 50 (0..49 dropped)", oldest)
	}
}

func TestIsConnectedRequiresHandshakeAndRecentArrival(t *testing.T) {
	p := New()
	p.SetTimeout(10 * time.Millisecond)
	now := time.Now()

	if p.IsConnected(now) {
		t.Fatal("should not be connected before handshake")
	}

	p.MarkHandshook()
	if p.IsConnected(now) {
		t.Fatal("should not be connected before any packet arrival")
	}

	p.Push(natnet.Frame{Timestamp: now})
	if !p.IsConnected(now) {
		t.Fatal("should be connected immediately after a fresh packet")
	}
	if p.IsConnected(now.Add(20 * time.Millisecond)) {
		t.Fatal("should lose liveness after the timeout elapses")
	}
}

func TestConnectionHealthTransitions(t *testing.T) {
	p := New()
	p.SetTimeout(10 * time.Millisecond)
	now := time.Now()

	if got := p.ConnectionHealth(now); got != HealthDead {
		t.Fatalf("ConnectionHealth before handshake = %v, want dead", got)
	}

	p.MarkHandshook()
	p.Push(natnet.Frame{Timestamp: now})

	if got := p.ConnectionHealth(now); got != HealthAlive {
		t.Errorf("ConnectionHealth just after arrival = %v, want alive", got)
	}
	if got := p.ConnectionHealth(now.Add(15 * time.Millisecond)); got != HealthSuspect {
		t.Errorf("ConnectionHealth after one missed timeout = %v, want suspect", got)
	}
	if got := p.ConnectionHealth(now.Add(35 * time.Millisecond)); got != HealthDead {
		t.Errorf("ConnectionHealth after three missed timeouts = %v, want dead", got)
	}
}

func TestFPSEMAConverges(t *testing.T) {
	p := New()
	base := time.Now()
	for i := 0; i < 50; i++ {
		p.Push(natnet.Frame{Timestamp: base.Add(time.Duration(i) * 10 * time.Millisecond)})
	}
	fps := p.FPS()
	if fps < 90 || fps > 110 {
		t.Errorf("FPS = %v, want close to 100 (10ms spacing)", fps)
	}
}
