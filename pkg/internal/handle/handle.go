// Package handle 提供HTTP请求处理器的实现.
package handle

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/artvault/pkg/configs"
	"github.com/yeisme/artvault/pkg/internal/mpart"
	"github.com/yeisme/artvault/pkg/internal/service"
	"github.com/yeisme/artvault/pkg/middleware"
	"github.com/yeisme/artvault/pkg/rule"
)

// checkUser 获取已认证的所有者身份.
// 身份解析只有一个入口（middleware.ResolveIdentity），这里只做格式校验；
// 取不到有效身份一律视为未认证，任何制品 id 都不会在此之前被解析.
func checkUser(c *gin.Context) (string, error) {
	user := middleware.ResolveIdentity(c, configs.GetConfig().Auth)

	// 使用 validator 验证用户名格式为 email
	if err := rule.ValidateVar(user, "required,email"); err != nil {
		return "", err
	}

	return user, nil
}

// abortServiceError 将 service 层错误映射为HTTP响应.
// 取消属于良性失败：回滚已经发生，对仍在线的调用方只回一个通用错误，
// 不把取消当成崩溃向上传播.
func abortServiceError(c *gin.Context, l *zerolog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, mpart.ErrTooLarge):
		l.Warn().Err(err).Msg("upload body exceeds limit")
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload body exceeds size limit"})
	case errors.Is(err, mpart.ErrMalformed), errors.Is(err, service.ErrInvalidInput):
		l.Warn().Err(err).Msg("invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidPage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		l.Info().Err(err).Msg("request canceled")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
	default:
		l.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
	}
}
