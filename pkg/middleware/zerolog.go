package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/artvault/pkg/log"
)

// GinLoggerMiddleware 使用 zerolog 记录 Gin 请求日志的中间件.
// 响应字节数对上传/下载服务是一等信息，和状态码一起记录；
// 4xx 记 warn、5xx 记 error，便于按级别筛选.
func GinLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery
		method := c.Request.Method
		clientIP := c.ClientIP()

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		var errorMsg string
		if len(c.Errors) > 0 {
			errorMsg = c.Errors.String()
		}

		logger := log.Logger()

		var event *zerolog.Event

		switch {
		case statusCode >= 500:
			event = logger.Error()
		case statusCode >= 400:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		event = event.
			Int("status", statusCode).
			Dur("latency", latency).
			Str("method", method).
			Str("path", path).
			Str("client_ip", clientIP).
			Int("bytes_out", c.Writer.Size()).
			Int64("bytes_in", c.Request.ContentLength)

		if owner, ok := c.Get(OwnerKey); ok {
			if s, sok := owner.(string); sok && s != "" {
				event = event.Str("owner", s)
			}
		}

		if errorMsg != "" {
			event = event.Str("error", errorMsg)
		}

		event.Msg("HTTP request")
	}
}
