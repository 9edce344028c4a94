package middlewares

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/fsdevblog/urlkeeper/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter ограничивает число запросов с одного IP фиксированным окном.
// Устаревшие окна удаляются по ходу проверки, фоновых горутин нет.
type RateLimiter struct {
	requests  map[string]*clientBucket
	mutex     sync.Mutex
	rate      int
	window    time.Duration
	nextSweep time.Time
	now       func() time.Time
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

type clientBucket struct {
	count     int
	resetTime time.Time
}

func NewRateLimiter(requestsPerWindow int, window time.Duration, logger *zap.Logger, m *metrics.Metrics) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		requests: make(map[string]*clientBucket),
		rate:     requestsPerWindow,
		window:   window,
		now:      time.Now,
		logger:   logger,
		metrics:  m,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if !rl.allow(clientIP) {
			rl.logger.Warn("Rate limit exceeded",
				zap.String("ip", clientIP),
				zap.String("path", c.Request.URL.Path),
			)
			rl.metrics.RateLimited(c.FullPath())

			c.Header("X-RateLimit-Limit", strconv.Itoa(rl.rate))
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
				"code":  "RATE_LIMIT_EXCEEDED",
			})
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) allow(clientIP string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	rl.sweep(now)

	bucket, exists := rl.requests[clientIP]
	if !exists || now.After(bucket.resetTime) {
		rl.requests[clientIP] = &clientBucket{
			count:     1,
			resetTime: now.Add(rl.window),
		}
		return true
	}

	if bucket.count >= rl.rate {
		return false
	}

	bucket.count++
	return true
}

// sweep вызывается под мьютексом не чаще раза в окно.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Before(rl.nextSweep) {
		return
	}
	for ip, bucket := range rl.requests {
		if now.After(bucket.resetTime) {
			delete(rl.requests, ip)
		}
	}
	rl.nextSweep = now.Add(rl.window)
}
