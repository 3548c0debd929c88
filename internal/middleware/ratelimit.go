package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit caps requests per client IP using token buckets. Stale buckets
// are dropped opportunistically so the map does not grow without bound.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	var mu sync.Mutex
	limiters := make(map[string]*clientLimiter)
	limit := rate.Limit(float64(perMinute) / 60.0)
	lastSweep := time.Now()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIPForRateLimit(r)
			now := time.Now()

			mu.Lock()
			if now.Sub(lastSweep) > 5*time.Minute {
				for key, cl := range limiters {
					if now.Sub(cl.lastSeen) > 10*time.Minute {
						delete(limiters, key)
					}
				}
				lastSweep = now
			}
			cl, ok := limiters[ip]
			if !ok {
				cl = &clientLimiter{limiter: rate.NewLimiter(limit, perMinute)}
				limiters[ip] = cl
			}
			cl.lastSeen = now
			allowed := cl.limiter.Allow()
			mu.Unlock()

			if !allowed {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
