package service

import (
	"os"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/drive-backend/internal/pkg/errors"
	"github.com/lk2023060901/drive-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// ServeLocal 提供本地兜底存储的文件内容，需携带签名 token
// GET /uploads/:key?token=
func (s *DriveService) ServeLocal(c *gin.Context) {
	key := c.Param("key")
	signed, err := s.files.LocalBlobKey(c.Query("token"))
	if err != nil || signed != key {
		response.ErrorWithCode(c, apperrors.ErrDriveInvalidToken)
		return
	}

	path, err := s.local.Path(key)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrDriveItemNotFound)
		return
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		s.logger.WithContext(c.Request.Context()).Warn("local blob missing", zap.String("key", key), zap.Error(err))
		response.ErrorWithCode(c, apperrors.ErrDriveItemNotFound)
		return
	}
	s.logger.WithContext(c.Request.Context()).Debug("serving local blob", zap.String("key", key))
	c.File(path)
}
