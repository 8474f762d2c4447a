// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Counter is a fixed-window request counter keyed by an arbitrary string.
// Limiter keeps counts in process; RedisLimiter shares them across instances.
type Counter interface {
	// Allow counts one attempt for key and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (bool, error)
	// Reset forgets the attempts recorded for key.
	Reset(ctx context.Context, key string) error
}

// Limiter is an in-memory Counter. It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	now      func() time.Time
	stop     chan struct{}
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a Limiter allowing limit attempts per duration and starts its
// janitor. Call Close to stop the janitor.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop(duration * 2)
	return l
}

func (l *Limiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true, nil
	}
	if w.count >= l.limit {
		return false, nil
	}
	w.count++
	return true, nil
}

func (l *Limiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}

// Close stops the janitor goroutine.
func (l *Limiter) Close() {
	select {
	case <-l.stop:
	default:
		close(l.stop)
	}
}

func (l *Limiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for key, w := range l.windows {
				if now.After(w.expiresAt) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// ClientIP extracts the client IP, preferring X-Forwarded-For and X-Real-IP
// (set by the reverse proxy) over RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// MsgTooManyAttempts is returned to clients that hit either login limit.
const MsgTooManyAttempts = "Too many login attempts"

// LoginLimiter limits login attempts per client IP and per account email,
// covering both spraying from one address and targeting one account.
type LoginLimiter struct {
	ip    Counter
	email Counter
}

// NewLoginLimiter combines an IP counter and an email counter.
func NewLoginLimiter(ip, email Counter) *LoginLimiter {
	return &LoginLimiter{ip: ip, email: email}
}

// NewMemoryLoginLimiter uses in-memory counters: ipLimit per window per IP and
// half of that (at least 1) per email, per five windows.
func NewMemoryLoginLimiter(ipLimit int, window time.Duration) *LoginLimiter {
	return NewLoginLimiter(New(ipLimit, window), New(emailLimit(ipLimit), 5*window))
}

func emailLimit(ipLimit int) int {
	if n := ipLimit / 2; n > 0 {
		return n
	}
	return 1
}

// Check counts one login attempt. allowed is false when either limit is hit.
// Backend errors fail open; the error is returned for logging.
func (ll *LoginLimiter) Check(r *http.Request, email string) (allowed bool, err error) {
	ctx := r.Context()
	ok, err := ll.ip.Allow(ctx, "ip:"+ClientIP(r))
	if err != nil {
		return true, err
	}
	if !ok {
		return false, nil
	}
	if key := emailKey(email); key != "" {
		ok, err = ll.email.Allow(ctx, "email:"+key)
		if err != nil {
			return true, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// ResetEmail clears the per-email count after a successful login.
func (ll *LoginLimiter) ResetEmail(ctx context.Context, email string) error {
	if key := emailKey(email); key != "" {
		return ll.email.Reset(ctx, "email:"+key)
	}
	return nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
