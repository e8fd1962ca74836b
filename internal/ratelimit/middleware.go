package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tienda/internal/common"
)

// Config describes how to derive a rate limit key and its thresholds.
type Config struct {
	Key    func(*http.Request) string
	Window time.Duration
	Max    int
}

// KeyByClientIP keys the limit on the caller's resolved IP address.
func KeyByClientIP(r *http.Request) string {
	return common.ClientIP(r)
}

// Middleware enforces the limit before delegating to the next handler.
// Redis failures fail open: pricing endpoints should degrade, not 500,
// when the limiter backend is away.
func Middleware(limiter Limiter, cfg Config, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Key == nil || cfg.Max <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			decision, err := limiter.Allow(r.Context(), cfg.Key(r), cfg.Window, cfg.Max)
			if err != nil {
				log.Warn().Err(err).Msg("rate limiter unavailable, failing open")
				next.ServeHTTP(w, r)
				return
			}

			headers := w.Header()
			headers.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
			headers.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

			if !decision.Allowed {
				retryAfter := int(time.Until(decision.ResetAt).Seconds())
				if retryAfter < 0 {
					retryAfter = 0
				}
				headers.Set("Retry-After", strconv.Itoa(retryAfter))
				common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
