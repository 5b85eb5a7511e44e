// Package shutdown runs registered cleanup steps in reverse order once the
// serving context ends.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

type step struct {
	name string
	fn   func(context.Context) error
}

type Manager struct {
	timeout time.Duration
	log     *zap.Logger

	mu    sync.Mutex
	steps []step
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Manager{timeout: timeout, log: logger}
}

// Add registers fn. Steps run last-added first.
func (m *Manager) Add(name string, fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, step{name: name, fn: fn})
}

// Wait blocks until ctx is done, then calls Shutdown.
func (m *Manager) Wait(ctx context.Context) error {
	<-ctx.Done()
	m.log.Info("shutdown signal received")
	return m.Shutdown()
}

// Shutdown runs every step, each under its own timeout, and joins their
// errors.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	steps := make([]step, len(m.steps))
	copy(steps, m.steps)
	m.steps = nil
	m.mu.Unlock()

	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		start := time.Now()
		err := s.fn(ctx)
		cancel()

		if err != nil {
			m.log.Error("shutdown step failed", zap.String("name", s.name), zap.Error(err), zap.Duration("elapsed", time.Since(start)))
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		m.log.Info("shutdown step completed", zap.String("name", s.name), zap.Duration("elapsed", time.Since(start)))
	}
	return errors.Join(errs...)
}

// HTTPServer adapts anything with Shutdown(ctx), such as *http.Server.
func HTTPServer(srv interface {
	Shutdown(context.Context) error
}) func(context.Context) error {
	return srv.Shutdown
}

// Mongo adapts a client with Disconnect(ctx).
func Mongo(client interface {
	Disconnect(context.Context) error
}) func(context.Context) error {
	return client.Disconnect
}

// Closer adapts an io.Closer-like client, such as a redis client.
func Closer(c interface{ Close() error }) func(context.Context) error {
	return func(context.Context) error { return c.Close() }
}
