package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	apperrors "confreg/pkg/errors"
	httputil "confreg/pkg/http"
	"confreg/pkg/logger"
)

type KeyExtractor func(r *http.Request) string

// IPRateLimiter allows at most limit requests per key in any sliding window.
// Keys expire from the cache once they have been idle for a full window.
type IPRateLimiter struct {
	mu           sync.Mutex
	hits         *cache.Cache
	limit        int
	window       time.Duration
	keyExtractor KeyExtractor
	now          func() time.Time
	log          *logger.Logger
}

func NewIPRateLimiter(limit int, window time.Duration, extractor KeyExtractor, log *logger.Logger) *IPRateLimiter {
	if extractor == nil {
		extractor = ClientIP
	}
	return &IPRateLimiter{
		hits:         cache.New(window, 2*window),
		limit:        limit,
		window:       window,
		keyExtractor: extractor,
		now:          time.Now,
		log:          log,
	}
}

// Allow records an attempt for key and reports whether it is within the
// limit. Rejected attempts are not recorded.
func (rl *IPRateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	var timestamps []time.Time
	if v, ok := rl.hits.Get(key); ok {
		timestamps = v.([]time.Time)
	}

	valid := make([]time.Time, 0, len(timestamps)+1)
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.hits.Set(key, valid, rl.window)
		return false, rl.window - now.Sub(valid[0])
	}

	valid = append(valid, now)
	rl.hits.Set(key, valid, rl.window)
	return true, 0
}

func RateLimit(limiter *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.keyExtractor(r)

			if allowed, retryAfter := limiter.Allow(key); !allowed {
				rejectRateLimited(w, limiter, r, key, retryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP is the host part of RemoteAddr. Behind a proxy it relies on
// chi's RealIP having rewritten RemoteAddr first.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func rejectRateLimited(w http.ResponseWriter, limiter *IPRateLimiter, r *http.Request, key string, retryAfter time.Duration) {
	limiter.log.Warn("Rate limit exceeded",
		"request_id", RequestIDFromContext(r.Context()),
		"client", key,
		"path", r.URL.Path,
	)

	w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
	_ = httputil.WriteError(w, apperrors.RateLimited(
		fmt.Sprintf("Rate limit exceeded: %d per %s", limiter.limit, describeWindow(limiter.window)),
	))
}

func describeWindow(d time.Duration) string {
	switch d {
	case time.Second:
		return "1 second"
	case time.Minute:
		return "1 minute"
	case time.Hour:
		return "1 hour"
	}
	return d.String()
}
