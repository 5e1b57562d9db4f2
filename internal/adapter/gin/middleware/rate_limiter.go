package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-service/internal/adapter/gin/handler"
	grpcmiddleware "user-service/internal/adapter/grpc/middleware"
	apperrors "user-service/pkg/errors"
)

// RateLimiter returns a Gin middleware backed by the same Redis token bucket as the gRPC interceptor.
// Buckets are keyed by method, route and client IP. Rejections go through the translator's 429 envelope.
func RateLimiter(limiter *grpcmiddleware.RateLimiter, translator *handler.ErrorTranslator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Enabled() {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		key := fmt.Sprintf("%s:%s:%s", c.Request.Method, path, c.ClientIP())

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("rate limiter redis error, allowing request", zap.String("key", key), zap.Error(err))
		}

		if !allowed {
			cfg := limiter.Config()
			translator.Abort(c, apperrors.NewRateLimitError(cfg.RequestsPerSecond, cfg.BurstCapacity))
			return
		}

		c.Next()
	}
}
