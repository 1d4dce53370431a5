package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/artvault/pkg/context"
	"github.com/yeisme/artvault/pkg/internal/storage"
)

// StorageMiddleware 将存储管理器注入请求上下文，供 service 层获取 DB 与 Vault 客户端.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithStorageManager(c.Request.Context(), manager)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
