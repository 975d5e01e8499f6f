package api

import (
	"net"
	"net/http"
	"strings"
	"time"

	cache "github.com/go-pkgz/expirable-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ipLimiter hands out one token bucket per client IP. Idle buckets expire.
type ipLimiter struct {
	limit  rate.Limit
	burst  int
	ips    cache.Cache
	header string
}

// newIPLimiter keys buckets by the last address in header, or by the remote
// address when header is empty.
func newIPLimiter(perSecond float64, burst int, header string) (*ipLimiter, error) {
	ips, err := cache.NewCache(cache.MaxKeys(10000), cache.TTL(5*time.Minute))
	if err != nil {
		return nil, err
	}
	return &ipLimiter{
		limit:  rate.Limit(perSecond),
		burst:  max(burst, 1),
		ips:    ips,
		header: header,
	}, nil
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	if v, ok := l.ips.Get(ip); ok {
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.ips.Set(ip, limiter, 0)
	return limiter
}

// clientIP takes the last proxy-appended address from the configured
// header, falling back to the connection's remote address.
func (l *ipLimiter) clientIP(r *http.Request) (string, error) {
	if l.header == "" {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		return ip, err
	}
	if fwd := r.Header.Get(l.header); fwd != "" {
		v := strings.Split(fwd, ",")
		return strings.TrimSpace(v[len(v)-1]), nil
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	return ip, err
}

func (l *ipLimiter) middleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, err := l.clientIP(r)
			if err != nil {
				log.Error("rate limiter", zap.Error(err))
				writeError(w, http.StatusBadRequest, "invalid_request", "")
				return
			}
			if !l.get(ip).Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate_limited", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
