// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const rateKeyPrefix = "ratelimit:"

// RateLimiter throttles credential submissions per client IP and path with
// a sliding window kept in a Valkey sorted set, so every console replica
// sees the same counts. The console puts it in front of sign-in, sign-up,
// verification and 2FA.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter creates a rate limiter that allows limit requests per window.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window, now: time.Now}
}

// allow records a request for key. When the key is over the limit the
// request is not counted and allow returns false with the time until the
// oldest request leaves the window.
func (rl *RateLimiter) allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := rl.now()
	cutoff := now.Add(-rl.window)
	k := rateKeyPrefix + key
	member := uuid.NewString()

	pipe := rl.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "-inf", strconv.FormatInt(cutoff.UnixMicro(), 10))
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(now.UnixMicro()), Member: member})
	count := pipe.ZCard(ctx, k)
	oldest := pipe.ZRangeWithScores(ctx, k, 0, 0)
	pipe.PExpire(ctx, k, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, err
	}

	if count.Val() <= int64(rl.limit) {
		return true, 0, nil
	}
	if err := rl.client.ZRem(ctx, k, member).Err(); err != nil {
		slog.Warn("rate limit entry removal failed", "key", k, "error", err)
	}
	var wait time.Duration
	if first := oldest.Val(); len(first) > 0 {
		wait = time.UnixMicro(int64(first[0].Score)).Add(rl.window).Sub(now)
	}
	return false, wait, nil
}

// Middleware rate-limits by client IP. Only state-changing requests count;
// rendering the sign-in form is never limited. Valkey failures let the
// request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if safeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		ok, wait, err := rl.allow(r.Context(), clientIP(r)+r.URL.Path)
		if err != nil {
			slog.Warn("rate limit check failed", "path", r.URL.Path, "error", err)
		}
		if !ok {
			secs := int(math.Ceil(wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client's IP address, checking X-Forwarded-For
// and X-Real-IP headers for proxied requests.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
