package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/config"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

// RateLimitMiddleware holds the limiters for dashboard and widget
// traffic.
type RateLimitMiddleware struct {
	cfg *config.Config
}

func NewRateLimitMiddleware(cfg *config.Config) *RateLimitMiddleware {
	return &RateLimitMiddleware{cfg: cfg}
}

// RateLimit limits authenticated dashboard requests per user, falling
// back to the client IP for anonymous requests.
func (m *RateLimitMiddleware) RateLimit() gin.HandlerFunc {
	if !m.cfg.RateLimit.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	rate := limiter.Rate{
		Period: time.Minute,
		Limit:  int64(m.cfg.RateLimit.RequestsPerMinute),
	}
	store := memory.NewStore()
	rateLimiter := limiter.New(store, rate)

	return ginlimiter.NewMiddleware(rateLimiter,
		ginlimiter.WithKeyGetter(clientKey),
		ginlimiter.WithLimitReachedHandler(limitReached),
	)
}

// WidgetRateLimit limits widget session creation per client IP so one
// visitor cannot mint tokens in a loop.
func (m *RateLimitMiddleware) WidgetRateLimit() gin.HandlerFunc {
	if !m.cfg.RateLimit.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	perMinute := m.cfg.Widget.SessionsPerMinute
	if perMinute <= 0 {
		perMinute = 10
	}

	rate := limiter.Rate{
		Period: time.Minute,
		Limit:  int64(perMinute),
	}
	store := memory.NewStore()
	rateLimiter := limiter.New(store, rate)

	return ginlimiter.NewMiddleware(rateLimiter,
		ginlimiter.WithLimitReachedHandler(limitReached),
	)
}

func clientKey(c *gin.Context) string {
	if userID := GetUserID(c); userID != 0 {
		return fmt.Sprintf("user:%d", userID)
	}
	return fmt.Sprintf("ip:%s", c.ClientIP())
}

func limitReached(c *gin.Context) {
	utils.TooManyRequests(c, "too many requests, please try again later")
	c.Abort()
}
