package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"unit-one/backend/pkg/response"
)

// BodyLimit 请求体大小限制中间件
// 日志写入请求体很小，超过 maxBytes 的请求在绑定阶段失败并返回 413
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil && maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.Writer.Written() {
			return
		}
		for _, err := range c.Errors {
			var tooLarge *http.MaxBytesError
			if errors.As(err.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
				return
			}
		}
	}
}
