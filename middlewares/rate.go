// file: middlewares/rate.go
package middlewares

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"skoljka/utils"
)

var limiters sync.Map

// RateLimitMiddleware 按客户端 IP 限流，目前只挂在提交答案的接口上
func RateLimitMiddleware(r rate.Limit, b int) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		key := fmt.Sprintf("%s|%v|%d", ip, r, b)
		limiter, ok := limiters.Load(key)
		if !ok {
			limiter = rate.NewLimiter(r, b)
			limiters.Store(key, limiter)
		}
		if !limiter.(*rate.Limiter).Allow() {
			utils.Error(c, 4029, "请求过于频繁")
			c.Abort()
			return
		}
		c.Next()
	}
}
