package service

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lk2023060901/drive-backend/internal/drive/biz"
	apperrors "github.com/lk2023060901/drive-backend/internal/pkg/errors"
	"github.com/lk2023060901/drive-backend/internal/pkg/minio"
	"github.com/lk2023060901/drive-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// RenameRequest 重命名请求，兼容 newName 字段
type RenameRequest struct {
	Name    string `json:"name"`
	NewName string `json:"newName"`
}

func (r RenameRequest) value() string {
	if strings.TrimSpace(r.Name) != "" {
		return r.Name
	}
	return r.NewName
}

// Upload 上传文件（multipart 字段 file，可选 folder_id）
// POST /api/files
func (s *DriveService) Upload(c *gin.Context) {
	userID := currentUser(c)
	if s.opts.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		response.ErrorWithCode(c, apperrors.ErrDriveNoFile)
		return
	}

	var folderID *string
	if v := strings.TrimSpace(c.PostForm("folder_id")); v != "" {
		if _, err := uuid.Parse(v); err != nil {
			response.ErrorWithCode(c, apperrors.ErrDriveInvalidParent)
			return
		}
		folderID = &v
	}

	content, err := header.Open()
	if err != nil {
		s.logger.WithContext(c.Request.Context()).Error("open multipart file failed", zap.Error(err))
		response.ErrorWithCode(c, apperrors.ErrInternalServer)
		return
	}
	defer content.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = minio.DetectContentType(header.Filename)
	}

	file, err := s.files.Upload(c.Request.Context(), biz.StoreRequest{
		OwnerID:      userID,
		FolderID:     folderID,
		OriginalName: header.Filename,
		MimeType:     mimeType,
		SizeBytes:    header.Size,
		Content:      content,
	})
	if err != nil {
		s.handleError(c, err, "upload file failed")
		return
	}

	response.Success(c, gin.H{
		"message": "File uploaded successfully",
		"file":    toFileResponse(file),
	})
}

// ListFiles 当前用户未删除的文件
// GET /api/files
func (s *DriveService) ListFiles(c *gin.Context) {
	files, err := s.files.List(c.Request.Context(), currentUser(c))
	if err != nil {
		s.handleError(c, err, "list files failed")
		return
	}
	response.Success(c, gin.H{"files": toFileResponses(files)})
}

// GetFile 文件详情，需要 viewer 权限
// GET /api/files/:id
func (s *DriveService) GetFile(c *gin.Context) {
	id, ok := pathID(c, "id", apperrors.ErrDriveItemNotFound)
	if !ok {
		return
	}
	file, err := s.files.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		s.handleError(c, err, "get file failed")
		return
	}
	response.Success(c, gin.H{"file": toFileResponse(file)})
}

// Download 生成下载地址
// GET /api/files/:id/download
func (s *DriveService) Download(c *gin.Context) {
	id, ok := pathID(c, "id", apperrors.ErrDriveItemNotFound)
	if !ok {
		return
	}
	url, err := s.files.DownloadURL(c.Request.Context(), currentUser(c), id)
	if err != nil {
		s.handleError(c, err, "resolve download url failed")
		return
	}
	response.Success(c, gin.H{"url": url})
}

// RenameFile 重命名文件，需要 editor 权限
// PATCH /api/files/:id
func (s *DriveService) RenameFile(c *gin.Context) {
	id, ok := pathID(c, "id", apperrors.ErrDriveItemNotFound)
	if !ok {
		return
	}
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, err.Error())
		return
	}
	file, err := s.files.Rename(c.Request.Context(), currentUser(c), id, req.value())
	if err != nil {
		s.handleError(c, err, "rename file failed")
		return
	}
	response.Success(c, gin.H{
		"message": "File renamed",
		"file":    toFileResponse(file),
	})
}

// TrashFile 移入回收站
// DELETE /api/files/:id
func (s *DriveService) TrashFile(c *gin.Context) {
	id, ok := pathID(c, "id", apperrors.ErrDriveItemNotFound)
	if !ok {
		return
	}
	file, err := s.files.Trash(c.Request.Context(), currentUser(c), id)
	if err != nil {
		s.handleError(c, err, "trash file failed")
		return
	}
	response.Success(c, gin.H{
		"message": "File moved to trash",
		"file":    toFileResponse(file),
	})
}

// RestoreFile 从回收站恢复
// PATCH /api/files/restore/:id
func (s *DriveService) RestoreFile(c *gin.Context) {
	id, ok := pathID(c, "id", apperrors.ErrDriveItemNotFound)
	if !ok {
		return
	}
	file, err := s.files.Restore(c.Request.Context(), currentUser(c), id)
	if err != nil {
		s.handleError(c, err, "restore file failed")
		return
	}
	response.Success(c, gin.H{
		"message": "File restored",
		"file":    toFileResponse(file),
	})
}
