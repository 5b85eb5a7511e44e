package lock

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Locker. It only excludes holders in the same
// process.
type Memory struct {
	mu    sync.Mutex
	held  map[string]lease
	now   func() time.Time
	token uint64
}

type lease struct {
	token    uint64
	deadline time.Time
}

func NewMemory() *Memory {
	return &Memory{held: make(map[string]lease), now: time.Now}
}

func (m *Memory) Acquire(ctx context.Context, key string, ttl time.Duration) (Unlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if l, ok := m.held[key]; ok && now.Before(l.deadline) {
		return nil, ErrHeld
	}
	m.token++
	token := m.token
	m.held[key] = lease{token: token, deadline: now.Add(ttl)}

	return func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if l, ok := m.held[key]; ok && l.token == token {
			delete(m.held, key)
		}
		return nil
	}, nil
}
