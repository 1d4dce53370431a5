// Package api 注册 HTTP 接口路由.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/artvault/pkg/internal/router"
)

// BasePath API 路由前缀.
const BasePath = "/api/v1"

// RegisterGroup 把全部业务路由注册到传入的 gin 引擎，
// 附加的中间件只作用于该路由组.
func RegisterGroup(e *gin.Engine, mws ...gin.HandlerFunc) *gin.Engine {
	g := e.Group(BasePath, mws...)
	router.RegisterAll(g)

	return e
}
