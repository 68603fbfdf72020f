package admin

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey 请求 ID 在 gin.Context 和响应头中的键
const RequestIDKey = "X-Request-ID"

// requestID 请求 ID 中间件：透传调用方的 ID，缺失时生成一个
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDKey)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDKey, id)
		c.Next()
	}
}
