package handle

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/artvault/pkg/configs"
	"github.com/yeisme/artvault/pkg/internal/model"
	"github.com/yeisme/artvault/pkg/internal/service"
	"github.com/yeisme/artvault/pkg/log"
)

// artifactView 列表/上传响应中的单个制品.
type artifactView struct {
	ArtifactID   string    `json:"artifact_id"`
	DownloadName string    `json:"download_name"`
	FormFileName string    `json:"form_file_name,omitempty"`
	DisplayName  string    `json:"display_name,omitempty"`
	Description  string    `json:"description,omitempty"`
	ContentType  string    `json:"content_type,omitempty"`
	CreationTime time.Time `json:"creation_time"`
}

func toView(a *model.Artifact) artifactView {
	return artifactView{
		ArtifactID:   a.ArtifactID,
		DownloadName: a.DownloadName(),
		FormFileName: a.FormFileName,
		DisplayName:  a.DisplayName,
		Description:  a.Description,
		ContentType:  a.ContentType,
		CreationTime: a.CreationTime,
	}
}

// UploadArtifacts 处理 multipart 流式上传.
func UploadArtifacts(c *gin.Context) {
	l := log.Component("handle.upload")

	user, err := checkUser(c)
	if err != nil {
		l.Warn().Err(err).Msg("missing or invalid user")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

		return
	}

	svc := service.NewArtifactService(c.Request.Context())

	res, err := svc.Ingest(c.Request.Context(), user, c.Request.Body, c.GetHeader("Content-Type"))
	if err != nil {
		abortServiceError(c, &l, err)

		return
	}

	views := make([]artifactView, 0, len(res.Artifacts))
	for i := range res.Artifacts {
		views = append(views, toView(&res.Artifacts[i]))
	}

	c.JSON(http.StatusOK, gin.H{"artifacts": views})
}

// ListArtifacts 按创建时间升序分页返回当前用户的制品.
func ListArtifacts(c *gin.Context) {
	l := log.Component("handle.list")

	user, err := checkUser(c)
	if err != nil {
		l.Warn().Err(err).Msg("missing or invalid user")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

		return
	}

	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})

		return
	}

	count, err := intQuery(c, "count", configs.DefaultListCount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid count"})

		return
	}

	svc := service.NewArtifactService(c.Request.Context())

	items, err := svc.List(c.Request.Context(), user, offset, count)
	if err != nil {
		abortServiceError(c, &l, err)

		return
	}

	views := make([]artifactView, 0, len(items))
	for i := range items {
		views = append(views, toView(&items[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"offset": offset,
		"count":  count,
		"items":  views,
	})
}

// StreamArtifact 流式返回制品原始内容，支持 Range 请求.
// 响应禁止任何缓存：访问控制逐请求生效.
func StreamArtifact(c *gin.Context) {
	l := log.Component("handle.stream")

	user, err := checkUser(c)
	if err != nil {
		l.Warn().Err(err).Msg("missing or invalid user")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

		return
	}

	svc := service.NewArtifactService(c.Request.Context())

	res, err := svc.ResolveUpload(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		abortServiceError(c, &l, err)

		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{
		"filename": res.DownloadName,
	}))

	serveResolved(c, &l, res)
}

// ThumbnailArtifact 流式返回缩略图，缺失时回退原始内容.
// 缩略图一经生成不会变化，响应允许共享缓存长期保存.
func ThumbnailArtifact(c *gin.Context) {
	l := log.Component("handle.thumbnail")

	user, err := checkUser(c)
	if err != nil {
		l.Warn().Err(err).Msg("missing or invalid user")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

		return
	}

	svc := service.NewArtifactService(c.Request.Context())

	res, err := svc.ResolveThumbnail(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		abortServiceError(c, &l, err)

		return
	}

	cacheSeconds := configs.GetConfig().Vault.ThumbnailCacheSeconds
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", cacheSeconds))

	serveResolved(c, &l, res)
}

// DeleteArtifact 删除制品，成功后重定向回列表.
func DeleteArtifact(c *gin.Context) {
	l := log.Component("handle.delete")

	user, err := checkUser(c)
	if err != nil {
		l.Warn().Err(err).Msg("missing or invalid user")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

		return
	}

	svc := service.NewArtifactService(c.Request.Context())

	if err := svc.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		abortServiceError(c, &l, err)

		return
	}

	c.Redirect(http.StatusSeeOther, "/api/v1/artifacts")
}

// serveResolved 打开已解析的后备文件并交给 http.ServeContent 处理
// Range、If-None-Match 与条件请求；原始字节原样下发，不做任何转换.
func serveResolved(c *gin.Context, l *zerolog.Logger, res *service.ResolvedArtifact) {
	f, err := os.Open(res.Path)
	if err != nil {
		l.Error().Err(err).Str("path", res.Path).Msg("open backing file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})

		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		l.Error().Err(err).Str("path", res.Path).Msg("stat backing file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})

		return
	}

	c.Header("Content-Type", res.ContentType)
	c.Header("ETag", weakETag(res.Path, fi))

	http.ServeContent(c.Writer, c.Request, "", res.LastModified, f)
}

// weakETag 基于文件名、大小与修改时间的弱 ETag.
func weakETag(path string, fi os.FileInfo) string {
	h := xxhash.New()
	_, _ = h.WriteString(path)
	_, _ = fmt.Fprintf(h, "|%d|%d", fi.Size(), fi.ModTime().UnixNano())

	return fmt.Sprintf(`W/"%x"`, h.Sum64())
}

// intQuery 解析非负整型 query 参数，缺省使用默认值.
func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}

	return strconv.Atoi(raw)
}
