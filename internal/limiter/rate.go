package limiter

import (
	"context"
	"sync"
	"time"
)

// Giới hạn số lượng request trong 1 giây
type RateLimiter struct {
	requestTimes []time.Time
	maxRequests  int
	mu           sync.Mutex
}

func NewRateLimiter(maxRequests int) *RateLimiter {
	return &RateLimiter{
		requestTimes: make([]time.Time, 0, maxRequests),
		maxRequests:  maxRequests,
	}
}

// Allow kiểm tra xem có thể thực hiện request mới hay không
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxRequests <= 0 {
		return true
	}

	now := time.Now()
	oneSecondAgo := now.Add(-1 * time.Second)

	// Loại bỏ các request cũ hơn 1 giây
	validTimes := make([]time.Time, 0, len(r.requestTimes))
	for _, t := range r.requestTimes {
		if t.After(oneSecondAgo) {
			validTimes = append(validTimes, t)
		}
	}
	r.requestTimes = validTimes

	if len(r.requestTimes) < r.maxRequests {
		r.requestTimes = append(r.requestTimes, now)
		return true
	}

	return false
}

// Wait chặn cho đến khi được phép thực hiện request mới,
// thử lại sau mỗi retryDelay
func (r *RateLimiter) Wait(ctx context.Context, retryDelay time.Duration) error {
	if retryDelay <= 0 {
		retryDelay = 50 * time.Millisecond
	}

	for !r.Allow() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return nil
}
