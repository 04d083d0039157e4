package service

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/lk2023060901/drive-backend/internal/pkg/errors"
	"github.com/lk2023060901/drive-backend/internal/pkg/response"
)

// CreateFolderRequest 创建文件夹请求
type CreateFolderRequest struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parent_id"`
}

// CreateFolder 创建文件夹
// POST /api/folders
func (s *DriveService) CreateFolder(c *gin.Context) {
	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, "name is required")
		return
	}
	if req.ParentID != nil {
		if p := strings.TrimSpace(*req.ParentID); p != "" {
			if _, err := uuid.Parse(p); err != nil {
				response.ErrorWithCode(c, apperrors.ErrDriveInvalidParent)
				return
			}
		}
	}

	folder, err := s.folders.Create(c.Request.Context(), currentUser(c), req.Name, req.ParentID)
	if err != nil {
		s.handleError(c, err, "create folder failed")
		return
	}
	response.Created(c, gin.H{
		"message": "Folder created",
		"folder":  toFolderResponse(folder),
	})
}

// ListFolders 当前用户未删除的文件夹
// GET /api/folders
func (s *DriveService) ListFolders(c *gin.Context) {
	folders, err := s.folders.List(c.Request.Context(), currentUser(c))
	if err != nil {
		s.handleError(c, err, "list folders failed")
		return
	}
	response.Success(c, gin.H{"folders": toFolderResponses(folders)})
}

// RootContents 根目录下的文件夹与文件
// GET /api/folders/root
func (s *DriveService) RootContents(c *gin.Context) {
	folders, files, err := s.folders.Root(c.Request.Context(), currentUser(c))
	if err != nil {
		s.handleError(c, err, "list root failed")
		return
	}
	response.Success(c, gin.H{
		"folders": toFolderResponses(folders),
		"files":   toFileResponses(files),
	})
}

// FolderContents 文件夹内容，需要 viewer 权限
// GET /api/folders/:id/contents
func (s *DriveService) FolderContents(c *gin.Context) {
	id, ok := pathID(c, "id", apperrors.ErrDriveItemNotFound)
	if !ok {
		return
	}
	contents, err := s.folders.Contents(c.Request.Context(), currentUser(c), id)
	if err != nil {
		s.handleError(c, err, "list folder contents failed")
		return
	}
	response.Success(c, gin.H{
		"folder":     toFolderResponse(contents.Folder),
		"subfolders": toFolderResponses(contents.Subfolders),
		"files":      toFileResponses(contents.Files),
	})
}

// RenameFolder 重命名文件夹，需要 editor 权限
// PATCH /api/folders/:id
func (s *DriveService) RenameFolder(c *gin.Context) {
	id, ok := pathID(c, "id", apperrors.ErrDriveItemNotFound)
	if !ok {
		return
	}
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, err.Error())
		return
	}
	folder, err := s.folders.Rename(c.Request.Context(), currentUser(c), id, req.value())
	if err != nil {
		s.handleError(c, err, "rename folder failed")
		return
	}
	response.Success(c, gin.H{
		"message": "Folder renamed",
		"folder":  toFolderResponse(folder),
	})
}

// TrashFolder 移入回收站
// DELETE /api/folders/:id
func (s *DriveService) TrashFolder(c *gin.Context) {
	id, ok := pathID(c, "id", apperrors.ErrDriveItemNotFound)
	if !ok {
		return
	}
	folder, err := s.folders.Trash(c.Request.Context(), currentUser(c), id)
	if err != nil {
		s.handleError(c, err, "trash folder failed")
		return
	}
	response.Success(c, gin.H{
		"message": "Folder moved to trash",
		"folder":  toFolderResponse(folder),
	})
}

// RestoreFolder 从回收站恢复
// PATCH /api/folders/restore/:id
func (s *DriveService) RestoreFolder(c *gin.Context) {
	id, ok := pathID(c, "id", apperrors.ErrDriveItemNotFound)
	if !ok {
		return
	}
	folder, err := s.folders.Restore(c.Request.Context(), currentUser(c), id)
	if err != nil {
		s.handleError(c, err, "restore folder failed")
		return
	}
	response.Success(c, gin.H{
		"message": "Folder restored",
		"folder":  toFolderResponse(folder),
	})
}
