package handle

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	artctx "github.com/yeisme/artvault/pkg/context"
)

// Health 检查数据库连接与存储根目录是否可用.
func Health(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{"db": "ok", "vault": "ok"}

	manager := artctx.GetManager(c.Request.Context())
	if manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": "storage not initialized"})

		return
	}

	sqlDB, err := manager.DB.DB.DB()
	if err != nil {
		checks["db"] = err.Error()
		status = http.StatusServiceUnavailable
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		checks["db"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	if fi, err := os.Stat(manager.Vault.Root()); err != nil || !fi.IsDir() {
		checks["vault"] = "root unavailable"
		status = http.StatusServiceUnavailable
	}

	result := "up"
	if status != http.StatusOK {
		result = "down"
	}

	c.JSON(status, gin.H{"status": result, "checks": checks})
}
