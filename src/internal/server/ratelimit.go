// FILE: logport/src/internal/server/ratelimit.go
package server

import (
	"sync"
	"time"

	"github.com/lixenwraith/log"
	"golang.org/x/time/rate"
)

const limiterCleanupInterval = 3 * time.Minute

// RateLimiter provides per-client rate limiting for the read endpoint.
type RateLimiter struct {
	clients           sync.Map // map[string]*clientLimiter
	requestsPerSecond float64
	burstSize         int
	done              chan struct{}
	logger            *log.Logger
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter and starts its cleanup routine.
func NewRateLimiter(requestsPerSecond float64, burstSize int, logger *log.Logger) *RateLimiter {
	rl := &RateLimiter{
		requestsPerSecond: requestsPerSecond,
		burstSize:         burstSize,
		done:              make(chan struct{}),
		logger:            logger,
	}

	go rl.cleanup()

	return rl
}

// Allow reports whether the client may issue another request now.
func (rl *RateLimiter) Allow(clientIP string) bool {
	return rl.getLimiter(clientIP).Allow()
}

func (rl *RateLimiter) getLimiter(clientIP string) *rate.Limiter {
	if val, ok := rl.clients.Load(clientIP); ok {
		client := val.(*clientLimiter)
		client.lastSeen = time.Now()
		return client.limiter
	}

	client := &clientLimiter{
		limiter:  rate.NewLimiter(rate.Limit(rl.requestsPerSecond), rl.burstSize),
		lastSeen: time.Now(),
	}

	rl.clients.Store(clientIP, client)
	return client.limiter
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.removeStaleClients()
		}
	}
}

func (rl *RateLimiter) removeStaleClients() {
	threshold := time.Now().Add(-2 * limiterCleanupInterval)

	rl.clients.Range(func(key, value any) bool {
		client := value.(*clientLimiter)
		if client.lastSeen.Before(threshold) {
			rl.clients.Delete(key)
		}
		return true
	})
}

// Stop shuts down the cleanup routine.
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

// GetStats returns current limiter statistics.
func (rl *RateLimiter) GetStats() map[string]any {
	count := 0
	rl.clients.Range(func(_, _ any) bool {
		count++
		return true
	})

	return map[string]any{
		"enabled":             true,
		"requests_per_second": rl.requestsPerSecond,
		"burst_size":          rl.burstSize,
		"active_clients":      count,
	}
}
