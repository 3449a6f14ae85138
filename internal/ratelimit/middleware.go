// Package ratelimit protects the quote endpoint with a Redis-backed
// per-client limit.
package ratelimit

import (
	"fmt"
	"net/http"

	libredis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// Middleware builds a chi-compatible rate limiting middleware from an
// ulule formatted rate such as "300-M".
func Middleware(client *libredis.Client, rate string) (func(http.Handler) http.Handler, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", rate, err)
	}
	store, err := redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: "gropos:ratelimit",
	})
	if err != nil {
		return nil, fmt.Errorf("create limiter store: %w", err)
	}
	mw := stdlibmw.NewMiddleware(limiter.New(store, parsed))
	return mw.Handler, nil
}
