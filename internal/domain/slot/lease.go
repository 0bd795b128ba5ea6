package slot

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const DefaultLeaseTTL = 5 * time.Minute

var ErrInvalidLeaseTTL = errors.New("lease ttl must be positive")

// Lease is a short-lived soft hold. Whoever holds Token may extend or release it;
// it never blocks a competing commit.
type Lease struct {
	token     uuid.UUID
	expiresAt time.Time
}

func NewLease(now time.Time, ttl time.Duration) (Lease, error) {
	return NewLeaseWithToken(uuid.New(), now, ttl)
}

func NewLeaseWithToken(token uuid.UUID, now time.Time, ttl time.Duration) (Lease, error) {
	if ttl <= 0 {
		return Lease{}, ErrInvalidLeaseTTL
	}
	return Lease{token: token, expiresAt: now.Add(ttl)}, nil
}

func ReconstructLease(token uuid.UUID, expiresAt time.Time) Lease {
	return Lease{token: token, expiresAt: expiresAt}
}

func (l Lease) Token() uuid.UUID     { return l.token }
func (l Lease) ExpiresAt() time.Time { return l.expiresAt }

// ActiveAt is strict: at exactly expiresAt the lease has lapsed.
func (l Lease) ActiveAt(now time.Time) bool {
	return now.Before(l.expiresAt)
}

func (l Lease) Extend(now time.Time, ttl time.Duration) (Lease, error) {
	return NewLeaseWithToken(l.token, now, ttl)
}
