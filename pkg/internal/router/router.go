// Package router 管理路由配置，负责把路径绑定到 pkg/internal/handle 中的处理器.
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAll 在传入的路由组上注册全部业务路由.
func RegisterAll(g *gin.RouterGroup) {
	RegisterArtifactsRoutes(g)
	RegisterHealthCheckRoute(g)
	RegisterSchedulerRoutes(g)
}
