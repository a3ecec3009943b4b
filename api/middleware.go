package api

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// requestLogger emits one structured log line per request.
func (server *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		server.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// limiterRegistry keeps one rate limiter per client.
type limiterRegistry struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newLimiterRegistry() *limiterRegistry {
	return &limiterRegistry{limiters: make(map[string]*rate.Limiter)}
}

func (r *limiterRegistry) get(client string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	limiter, ok := r.limiters[client]
	if !ok {
		// Calibrations are CPU bound, so keep the refill slow.
		limiter = rate.NewLimiter(rate.Every(time.Second), 5)
		r.limiters[client] = limiter
	}
	return limiter
}

// rateLimit throttles calibration traffic per client IP.
func (server *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := server.limiters.get(c.ClientIP())

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse(errors.New("too many requests")))
			return
		}
		c.Next()
	}
}
