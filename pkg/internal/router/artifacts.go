package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/artvault/pkg/internal/handle"
)

// RegisterArtifactsRoutes 注册制品相关路由.
//
//	POST   /artifacts               -> 上传（multipart，支持一次多个文件）
//	GET    /artifacts               -> 按创建时间升序分页列表
//	GET    /artifacts/:id           -> 流式返回原始内容（支持 Range）
//	GET    /artifacts/:id/thumbnail -> 流式返回缩略图（缺失时回退原始内容）
//	DELETE /artifacts/:id           -> 删除（记录先行，文件尽力而为）
func RegisterArtifactsRoutes(g *gin.RouterGroup) {
	artifactsRoutes := g.Group("/artifacts")
	{
		artifactsRoutes.POST("", handle.UploadArtifacts)
		artifactsRoutes.GET("", handle.ListArtifacts)

		singleGroup := artifactsRoutes.Group("/:id")
		{
			singleGroup.GET("", handle.StreamArtifact)
			singleGroup.GET("/thumbnail", handle.ThumbnailArtifact)
			singleGroup.DELETE("", handle.DeleteArtifact)
		}
	}
}
