package web

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// rateLimiter allows rate requests per client IP in each fixed window.
// Windows start at a client's first request; idle clients are swept.
type rateLimiter struct {
	rate   int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*clientWindow

	done chan struct{}
	once sync.Once
}

type clientWindow struct {
	start time.Time
	count int
}

// newRateLimiter creates a rate limiter that is stopped on Shutdown.
func (s *Server) newRateLimiter(rate int, period time.Duration) *rateLimiter {
	rl := newRateLimiter(rate, period)
	s.limiters = append(s.limiters, rl)
	return rl
}

func newRateLimiter(rate int, period time.Duration) *rateLimiter {
	rl := &rateLimiter{
		rate:    rate,
		window:  period,
		now:     time.Now,
		clients: make(map[string]*clientWindow),
		done:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// sweep drops clients idle for two windows until stopped.
func (rl *rateLimiter) sweep() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := rl.now().Add(-2 * rl.window)
			for ip, w := range rl.clients {
				if w.start.Before(cutoff) {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}

// take counts a request from ip. When the window is used up it returns
// false and how long until the window resets.
func (rl *rateLimiter) take(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[ip]
	if !ok || now.Sub(w.start) >= rl.window {
		rl.clients[ip] = &clientWindow{start: now, count: 1}
		return true, 0
	}
	if w.count >= rl.rate {
		return false, w.start.Add(rl.window).Sub(now)
	}
	w.count++
	return true, 0
}

// middleware rejects requests over the limit with 429 and Retry-After.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.take(clientIP(r))
		if !ok {
			secs := int(wait.Round(time.Second) / time.Second)
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			respondError(w, r, errRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}
