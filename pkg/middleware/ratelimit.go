package middleware

import (
	"net/http"
	"time"

	"vacation-rental/pkg/utils"

	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// RateLimit caps requests per client IP within window.
func RateLimit(requests int, window time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("Rate limit exceeded",
				zap.String("path", r.URL.Path),
				zap.String("ip", r.RemoteAddr),
			)
			utils.ResponseTooManyRequests(w, "Too many requests, please try again later")
		}),
	)
}
