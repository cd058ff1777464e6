package reservation

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrRateLimited     = errors.New("rate limited")
)

// RateLimitedError carries how long the caller should wait before booking
// again.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter)
}

func (e RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
