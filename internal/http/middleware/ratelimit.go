package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mirocommunity/submit-service/internal/ratelimit"
	"github.com/mirocommunity/submit-service/internal/utils/response"
)

// RateLimitSubmissions throttles submission attempts per session with a
// Redis token bucket. Only POSTs consume tokens; rendering the forms is free.
func RateLimitSubmissions(bucket *ratelimit.TokenBucket, limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			sessionID, ok := GetSessionIDFromContext(r.Context())
			if !ok {
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(
					errors.New("no session on request")))
				return
			}

			allowed, err := bucket.Allow(r.Context(), sessionID, "submit")
			if err != nil {
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(
					fmt.Errorf("rate limit check failed: %w", err)))
				return
			}

			remaining, _ := bucket.GetRemaining(r.Context(), sessionID, "submit")
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", "60")

			if !allowed {
				response.WriteJSON(w, http.StatusTooManyRequests, response.GeneralError(
					errors.New("rate limit exceeded")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
