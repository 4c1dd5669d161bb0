// Package limiter throttles failed login attempts per (username, client IP).
//
// An attempt is keyed by the username being tried together with a hash of the
// caller's IP, so a burst of bad passwords locks out that one client without
// blocking the account's real owner on another address.
package limiter

import (
	"context"
	"time"
)

// Limiter gates login attempts and places temporary lockouts.
type Limiter interface {
	// Allow reports whether a login may proceed. When it may not, the
	// returned duration says how long until the lock expires.
	Allow(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error)

	// Success clears the failure counter after a correct password.
	Success(ctx context.Context, username string, ipHash []byte) error

	// Failure records a wrong password. When the counter crosses the
	// threshold a lock is placed; the bool reports that, the duration its
	// length.
	Failure(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error)
}
