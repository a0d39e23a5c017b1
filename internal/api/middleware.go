package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// withRequestID tags every request with a request ID, echoed in the
// response and attached to log lines.
func (s *HTTPServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		r.Header.Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// withRateLimit applies a token bucket per remote IP. Buckets idle for
// an hour are dropped.
func (s *HTTPServer) withRateLimit(next http.Handler, rps float64, burst int) http.Handler {
	type bucket struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
	)

	get := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		b, ok := buckets[ip]
		if !ok {
			b = &bucket{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			buckets[ip] = b
		}
		b.lastSeen = time.Now()
		if len(buckets) > 1024 {
			cutoff := time.Now().Add(-time.Hour)
			for k, v := range buckets {
				if v.lastSeen.Before(cutoff) {
					delete(buckets, k)
				}
			}
		}
		return b.limiter
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !get(ip).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
