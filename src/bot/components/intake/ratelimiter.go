package intake

import (
	"sync"
	"time"
)

// RateLimiter enforces a per-user cooldown between submissions.
type RateLimiter struct {
	users    map[string]time.Time
	mu       sync.Mutex
	cooldown time.Duration
}

func NewRateLimiter(cooldown time.Duration) *RateLimiter {
	return &RateLimiter{
		users:    make(map[string]time.Time),
		cooldown: cooldown,
	}
}

func (rl *RateLimiter) CanUse(userID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	last, exists := rl.users[userID]
	if !exists || time.Since(last) >= rl.cooldown {
		rl.users[userID] = time.Now()
		return true
	}
	return false
}

func (rl *RateLimiter) TimeUntilNext(userID string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	last, exists := rl.users[userID]
	if !exists {
		return 0
	}
	elapsed := time.Since(last)
	if elapsed >= rl.cooldown {
		return 0
	}
	return rl.cooldown - elapsed
}

func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for userID, last := range rl.users {
		if now.Sub(last) > rl.cooldown*2 {
			delete(rl.users, userID)
		}
	}
}

func (rl *RateLimiter) StartCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			rl.Cleanup()
		}
	}()
}
