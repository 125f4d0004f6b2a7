package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/midpay/midpay/common"
)

var rateLimiters = common.NewGoCache(10*time.Minute, 5*time.Minute)
var lock sync.Mutex

func GetLimiter(key string, limit float64, burst int) *rate.Limiter {
	lock.Lock()
	defer lock.Unlock()

	if limiter, ok := rateLimiters.Get([]byte(key)); ok {
		return limiter.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(rate.Limit(limit), burst)
	rateLimiters.Set([]byte(key), limiter)

	return limiter
}
