package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/artvault/pkg/configs"
)

// CORSMiddleware CORS中间件.
// 浏览器端下载需要读到文件名与范围相关的响应头，这里显式暴露.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}

	config.AllowFiles = true
	config.ExposeHeaders = []string{
		"Content-Disposition",
		"Content-Range",
		"Accept-Ranges",
		"ETag",
	}

	if cfg.Debug {
		config.AllowAllOrigins = true
		config.AllowOrigins = nil
	}

	return cors.New(config)
}
