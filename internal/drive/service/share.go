package service

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lk2023060901/drive-backend/internal/drive/biz"
	apperrors "github.com/lk2023060901/drive-backend/internal/pkg/errors"
	"github.com/lk2023060901/drive-backend/internal/pkg/response"
)

// ShareRequest 授权请求，接收者可用 shared_with（用户 ID）或 email 指定
type ShareRequest struct {
	ItemType    string `json:"item_type"`
	ItemID      string `json:"item_id"`
	SharedWith  string `json:"shared_with"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AccessLevel string `json:"access_level"`
}

// Share 授权其他用户访问文件或文件夹
// POST /api/share
func (s *DriveService) Share(c *gin.Context) {
	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, err.Error())
		return
	}
	if req.ItemID != "" {
		if _, err := uuid.Parse(req.ItemID); err != nil {
			response.ErrorWithCode(c, apperrors.ErrDriveItemNotFound)
			return
		}
	}
	if req.SharedWith != "" {
		if _, err := uuid.Parse(req.SharedWith); err != nil {
			response.ErrorWithCode(c, apperrors.ErrDriveRecipientNotFound)
			return
		}
	}
	role := req.Role
	if role == "" {
		role = req.AccessLevel
	}

	grant, created, err := s.shares.Share(c.Request.Context(), currentUser(c), biz.ShareRequest{
		ItemType:   biz.ItemType(req.ItemType),
		ItemID:     req.ItemID,
		SharedWith: req.SharedWith,
		Email:      req.Email,
		Role:       biz.Role(role),
	})
	if err != nil {
		s.handleError(c, err, "share item failed")
		return
	}
	body := gin.H{"shared_item": toSharedItemResponse(grant, "")}
	if !created {
		body["message"] = "Share updated"
		response.Success(c, body)
		return
	}
	body["message"] = "Item shared successfully"
	response.Created(c, body)
}

// ListShares 我作为所有者或接收者的授权
// GET /api/share
func (s *DriveService) ListShares(c *gin.Context) {
	grants, err := s.shares.List(c.Request.Context(), currentUser(c))
	if err != nil {
		s.handleError(c, err, "list shares failed")
		return
	}
	out := make([]*SharedItemResponse, len(grants))
	for i, g := range grants {
		out[i] = toSharedItemResponse(g, "")
	}
	response.Success(c, gin.H{"shares": out})
}

// SharedWithMe 他人共享给我的条目
// GET /api/share/shared-with-me
func (s *DriveService) SharedWithMe(c *gin.Context) {
	views, err := s.shares.SharedWithMe(c.Request.Context(), currentUser(c))
	if err != nil {
		s.handleError(c, err, "list shared with me failed")
		return
	}
	response.Success(c, gin.H{"shared_with_me": toSharedViews(views)})
}

// SharedByMe 我共享给他人的条目
// GET /api/share/shared-by-me
func (s *DriveService) SharedByMe(c *gin.Context) {
	views, err := s.shares.SharedByMe(c.Request.Context(), currentUser(c))
	if err != nil {
		s.handleError(c, err, "list shared by me failed")
		return
	}
	response.Success(c, gin.H{"shared_by_me": toSharedViews(views)})
}

// RevokeShare 撤销授权，仅授权所有者可操作
// DELETE /api/share/:id
func (s *DriveService) RevokeShare(c *gin.Context) {
	id, ok := pathID(c, "id", apperrors.ErrNotFound)
	if !ok {
		return
	}
	grant, err := s.shares.Revoke(c.Request.Context(), currentUser(c), id)
	if err != nil {
		s.handleError(c, err, "revoke share failed")
		return
	}
	response.Success(c, gin.H{
		"message":     "Share revoked",
		"shared_item": toSharedItemResponse(grant, ""),
	})
}
