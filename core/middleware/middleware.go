package middleware

import (
	"court-reservation-api/core/config"
	"court-reservation-api/core/metrics"
)

type Middleware struct {
	jwtSecret string
	metrics   *metrics.Metrics
	limiter   *RateLimiter
}

func NewMiddleware(jwtSecret string, m *metrics.Metrics, rl config.RateLimitConfig) *Middleware {
	return &Middleware{
		jwtSecret: jwtSecret,
		metrics:   m,
		limiter:   NewRateLimiter(rl.RequestsPerSecond, rl.Burst),
	}
}
