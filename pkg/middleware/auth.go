// Package middleware 提供中间件
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/artvault/pkg/configs"
)

// OwnerKey 是认证通过后写入 gin context 的身份键，供 handler 与访问日志使用.
const OwnerKey = "owner"

// ResolveIdentity 解析请求身份，全链路唯一的解析入口：
//   - 中间件已解析过的身份（OwnerKey）直接复用
//   - 其次取 oauth2-proxy 注入的可信请求头
//   - ?user= query 与配置的默认身份是开发便利，release 模式下一律不信
//
// 解析不出身份时返回空串，未认证请求在任何制品 id 被解析之前就会被拒绝.
func ResolveIdentity(c *gin.Context, conf configs.AuthConfig) string {
	if v, ok := c.Get(OwnerKey); ok {
		if s, sok := v.(string); sok && s != "" {
			return s
		}
	}

	id := strings.TrimSpace(c.GetHeader("X-Auth-Request-Email"))
	if id == "" {
		id = strings.TrimSpace(c.GetHeader("X-Forwarded-Email"))
	}

	if id == "" && gin.Mode() != gin.ReleaseMode {
		if conf.DevAllowQuery {
			id = strings.TrimSpace(c.Query("user"))
		}

		if id == "" {
			id = conf.DevDefaultUser
		}
	}

	return id
}

// AuthMiddleware 基于 oauth2-proxy 注入的请求头做统一身份认证校验。
//   - 优先要求存在 X-Auth-Request-Email 或 X-Forwarded-Email
//   - 支持通过配置跳过某些路径（如 /metrics, /health）
//   - 非 release 模式可允许 query user 兜底（由 configs.auth.dev_allow_query 控制）.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !conf.Enabled || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		id := ResolveIdentity(c, conf)
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

			return
		}

		c.Set(OwnerKey, id)
		c.Next()
	}
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
