package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RateLimit caps POST requests per client IP and path to maxRequests per
// window, counting in redis. A nil client disables limiting. When redis
// fails the request is let through and the error logged.
func RateLimit(client *redis.Client, maxRequests int, window time.Duration, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if client == nil || maxRequests <= 0 || window <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			key := "ratelimit:" + r.URL.Path + ":" + clientIP(r)
			ctx := r.Context()

			pipe := client.Pipeline()
			incr := pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, window)
			if _, err := pipe.Exec(ctx); err != nil {
				log.WithError(err).WithField("key", key).Error("rate limit check failed")
				next.ServeHTTP(w, r)
				return
			}

			if incr.Val() > int64(maxRequests) {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"error": "Too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP is the socket peer, or the forwarded client when chi's RealIP
// runs first.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
