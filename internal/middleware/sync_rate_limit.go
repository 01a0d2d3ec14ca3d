package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 手动同步限频 ====================

// syncRateLimiter 按店铺限制手动同步触发频率（进程内）
// 分布式互斥由 Redis 锁保证，这里只挡住前端连点
type syncRateLimiter struct {
	interval time.Duration
	last     sync.Map // shop_id(string) -> time.Time
}

// SyncRateLimit 手动同步限频中间件，interval 内同一店铺只放行一次
func SyncRateLimit(interval time.Duration) gin.HandlerFunc {
	limiter := &syncRateLimiter{interval: interval}
	return func(ctx *gin.Context) {
		shopID := ctx.Param("shop_id")
		if shopID == "" {
			ctx.Next()
			return
		}

		now := time.Now()
		if v, ok := limiter.last.Load(shopID); ok {
			if now.Sub(v.(time.Time)) < limiter.interval {
				ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error": "操作过于频繁，请稍后再试",
				})
				return
			}
		}
		limiter.last.Store(shopID, now)
		ctx.Next()
	}
}
