package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prism-worklet/prism-api/pkg/logger"
	"github.com/prism-worklet/prism-api/pkg/metrics"
)

// WindowLimiter decides whether a client may pass within a window.
type WindowLimiter interface {
	Allow(ctx context.Context, clientIP, path string, window time.Duration, limit int) (bool, error)
}

// SlidingWindowRateLimit enforces a shared Redis-backed rate limit per
// client IP and route. The limit survives process restarts and is
// shared across replicas. If the store is unreachable the request is
// allowed through; availability wins over throttling accuracy.
func SlidingWindowRateLimit(limiter WindowLimiter, window time.Duration, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP(), route, window, limit)
		if err != nil {
			metrics.RateLimitFailOpen.Inc()
			logger.Warn("Rate limit store unavailable, allowing request",
				zap.String("route", route),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			metrics.RateLimitRejections.WithLabelValues(route).Inc()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
