package middleware

import (
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/liber-hq/liber/config"
	"github.com/liber-hq/liber/http/request"
	"github.com/liber-hq/liber/log"
	"github.com/liber-hq/liber/store"
)

type Middleware struct {
	store *store.Store

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewMiddleware(store *store.Store) *Middleware {
	return &Middleware{
		store:    store,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (m *Middleware) HandleCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "X-Auth-Token, Authorization, Content-Type, Accept")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Max-Age", "7200")
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) LoggingRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t1 := time.Now()
		defer func() {
			log.Debug("Incoming request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("proto", r.Proto),
				zap.String("client_ip", request.ClientIP(r)),
				zap.Duration("duration", time.Since(t1)))
		}()

		next.ServeHTTP(w, r)
	})
}

// RateLimit rejects clients exceeding the configured request rate with a
// 429. One token bucket per client IP.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := request.ClientIP(r)
		if clientIP == "" {
			clientIP = request.FindClientIP(r)
		}

		if !m.limiter(clientIP).Allow() {
			log.Warn("Rate limit exceeded", zap.String("client_ip", clientIP))
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) limiter(clientIP string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	limiter, ok := m.limiters[clientIP]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(config.Opts.RateLimit), config.Opts.RateBurst)
		m.limiters[clientIP] = limiter
	}
	return limiter
}
