package client

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SupervisorConfig configures restart behavior for a supervised Client.
type SupervisorConfig struct {
	MaxRetries          int
	RetryDelay          time.Duration
	HealthCheckInterval time.Duration
}

// DefaultSupervisorConfig allows a handful of retries with a short backoff,
// checked every 10 seconds.
func DefaultSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		MaxRetries:          3,
		RetryDelay:          5 * time.Second,
		HealthCheckInterval: 10 * time.Second,
	}
}

// Supervisor restarts a Client's connection if liveness is lost, up to
// MaxRetries. It is optional: most consumers drive Client directly and
// handle reconnect themselves.
type Supervisor struct {
	mu     sync.Mutex
	client *Client
	config SupervisorConfig

	cancel     context.CancelFunc
	done       chan struct{}
	running    bool
	retryCount int
}

// NewSupervisor returns a Supervisor with DefaultSupervisorConfig.
func NewSupervisor(c *Client) *Supervisor {
	return NewSupervisorWithConfig(c, DefaultSupervisorConfig())
}

// NewSupervisorWithConfig returns a Supervisor using config.
func NewSupervisorWithConfig(c *Client, config SupervisorConfig) *Supervisor {
	return &Supervisor{client: c, config: config}
}

// Start connects the client and begins health-checking it.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("supervisor already running")
	}

	if err := s.client.Connect(ctx); err != nil {
		return fmt.Errorf("initial connect: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	s.retryCount = 0

	go s.supervise(runCtx)
	return nil
}

// Stop disconnects the client and halts health-checking.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.client.Disconnect()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// RetryCount returns the number of restart attempts made so far.
func (s *Supervisor) RetryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retryCount
}

func (s *Supervisor) supervise(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkHealth(ctx)
		}
	}
}

func (s *Supervisor) checkHealth(ctx context.Context) {
	if s.client.IsConnected() {
		s.mu.Lock()
		s.retryCount = 0
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	if s.retryCount >= s.config.MaxRetries {
		s.mu.Unlock()
		return
	}
	s.retryCount++
	s.mu.Unlock()

	s.client.Disconnect()

	select {
	case <-ctx.Done():
		return
	case <-time.After(s.config.RetryDelay):
	}

	_ = s.client.Connect(ctx)
}
