package api

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// limitImports is a huma middleware that rate limits imports by client IP.
// Returns 429 Too Many Requests with Retry-After when the limit is exceeded.
func (s *Server) limitImports(ctx huma.Context, next func(huma.Context)) {
	limiter := s.opts.ImportLimiter
	if limiter == nil {
		next(ctx)
		return
	}

	key := clientIP(ctx.RemoteAddr())
	if !limiter.Allow(key) {
		retry := limiter.RetryAfter(key)
		s.logger.Warn("Rate limit exceeded",
			"ip", key,
			"path", ctx.URL().Path,
			"retry_after", retry,
		)
		ctx.SetHeader("Retry-After", strconv.Itoa(max(1, int(math.Ceil(retry.Seconds())))))
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "Too many imports. Please try again later.")
		return
	}

	next(ctx)
}

// clientIP strips the port from a remote address. The RealIP middleware has
// already replaced it with X-Forwarded-For or X-Real-IP when present.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
