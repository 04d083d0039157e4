package service

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/drive-backend/internal/drive/biz"
	apperrors "github.com/lk2023060901/drive-backend/internal/pkg/errors"
	"github.com/lk2023060901/drive-backend/internal/pkg/response"
)

// RestoreRequest 回收站恢复请求
type RestoreRequest struct {
	Type string `json:"type"`
}

// ListTrash 回收站中的文件与文件夹
// GET /api/trash
func (s *DriveService) ListTrash(c *gin.Context) {
	contents, err := s.trash.List(c.Request.Context(), currentUser(c))
	if err != nil {
		s.handleError(c, err, "list trash failed")
		return
	}
	response.Success(c, gin.H{
		"files":   toFileResponses(contents.Files),
		"folders": toFolderResponses(contents.Folders),
	})
}

// RestoreFromTrash 恢复条目，body 中的 type 指定类型
// PATCH /api/trash/restore/:id
func (s *DriveService) RestoreFromTrash(c *gin.Context) {
	var req RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, err.Error())
		return
	}
	itemType, err := biz.ParseItemType(req.Type)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrDriveInvalidItemType)
		return
	}
	id, ok := pathID(c, "id", apperrors.ErrDriveItemNotFound)
	if !ok {
		return
	}

	restored, err := s.trash.Restore(c.Request.Context(), currentUser(c), itemType, id)
	if err != nil {
		s.handleError(c, err, "restore from trash failed")
		return
	}

	var body interface{}
	switch v := restored.(type) {
	case *biz.File:
		body = toFileResponse(v)
	case *biz.Folder:
		body = toFolderResponse(v)
	}
	response.Success(c, gin.H{
		"message":  "Item restored",
		"restored": body,
	})
}

// Purge 永久删除
// DELETE /api/trash/:type/:id
func (s *DriveService) Purge(c *gin.Context) {
	itemType, err := biz.ParseItemType(c.Param("type"))
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrDriveInvalidItemType)
		return
	}
	id, ok := pathID(c, "id", apperrors.ErrDriveItemNotFound)
	if !ok {
		return
	}
	if err := s.trash.Purge(c.Request.Context(), currentUser(c), itemType, id); err != nil {
		s.handleError(c, err, "purge item failed")
		return
	}

	msg := "File permanently deleted"
	if itemType == biz.ItemTypeFolder {
		msg = "Folder permanently deleted"
	}
	response.SuccessWithMessage(c, msg)
}

// EmptyTrash 清空回收站
// DELETE /api/trash
func (s *DriveService) EmptyTrash(c *gin.Context) {
	result, err := s.trash.Empty(c.Request.Context(), currentUser(c))
	if err != nil {
		s.handleError(c, err, "empty trash failed")
		return
	}
	response.Success(c, gin.H{
		"message":       "Trash emptied",
		"files":         result.Files,
		"folders":       result.Folders,
		"blob_failures": result.BlobFailures,
	})
}
