// Package lock provides short-lived exclusive leases on string keys. The
// purchase flow takes one per domain so two concurrent purchases cannot both
// charge for the same name.
package lock

import (
	"context"
	"errors"
	"time"
)

const DefaultTTL = 2 * time.Minute

// ErrHeld is returned by Acquire when another holder has the key.
var ErrHeld = errors.New("lock held")

// Unlock releases a lease. Releasing an expired or stolen lease is a no-op.
type Unlock func(ctx context.Context) error

type Locker interface {
	// Acquire claims key for at most ttl. It never blocks waiting for the
	// current holder.
	Acquire(ctx context.Context, key string, ttl time.Duration) (Unlock, error)
}
