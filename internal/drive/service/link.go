package service

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lk2023060901/drive-backend/internal/drive/biz"
	apperrors "github.com/lk2023060901/drive-backend/internal/pkg/errors"
	"github.com/lk2023060901/drive-backend/internal/pkg/response"
)

// CreateLinkRequest 创建公开链接请求，expires_at 为 RFC3339
type CreateLinkRequest struct {
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	ExpiresAt    string `json:"expires_at"`
}

func (s *DriveService) linkURL(token string) string {
	return s.opts.PublicBaseURL + "/api/link-shares/" + token
}

// ListLinks 我创建的公开链接
// GET /api/link-shares
func (s *DriveService) ListLinks(c *gin.Context) {
	links, err := s.links.List(c.Request.Context(), currentUser(c))
	if err != nil {
		s.handleError(c, err, "list link shares failed")
		return
	}
	out := make([]*LinkShareResponse, len(links))
	for i, l := range links {
		out[i] = toLinkShareResponse(l)
	}
	response.Success(c, gin.H{"links": out})
}

// CreateLink 创建公开链接
// POST /api/link-shares
func (s *DriveService) CreateLink(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, err.Error())
		return
	}
	if req.ResourceID != "" {
		if _, err := uuid.Parse(req.ResourceID); err != nil {
			response.ErrorWithCode(c, apperrors.ErrDriveItemNotFound)
			return
		}
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			response.ErrorWithCode(c, apperrors.ErrInvalidParams, "expires_at must be RFC3339")
			return
		}
		expiresAt = &t
	}

	link, err := s.links.Create(c.Request.Context(), currentUser(c), biz.CreateLinkRequest{
		ResourceType: biz.ItemType(req.ResourceType),
		ResourceID:   req.ResourceID,
		ExpiresAt:    expiresAt,
	})
	if err != nil {
		s.handleError(c, err, "create link share failed")
		return
	}
	response.Created(c, gin.H{
		"message": "Link created",
		"link":    s.linkURL(link.Token),
		"share":   toLinkShareResponse(link),
	})
}

// RevokeLink 撤销公开链接
// DELETE /api/link-shares/:id
func (s *DriveService) RevokeLink(c *gin.Context) {
	id, ok := pathID(c, "id", apperrors.ErrDriveLinkNotFound)
	if !ok {
		return
	}
	link, err := s.links.Revoke(c.Request.Context(), currentUser(c), id)
	if err != nil {
		s.handleError(c, err, "revoke link share failed")
		return
	}
	response.Success(c, gin.H{
		"message": "Link revoked",
		"deleted": toLinkShareResponse(link),
	})
}

// ResolveLink 公开访问链接，无需认证
// GET /api/link-shares/:token
func (s *DriveService) ResolveLink(c *gin.Context) {
	link, res, err := s.links.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		s.handleError(c, err, "resolve link share failed")
		return
	}

	var resource interface{}
	switch {
	case res.File != nil:
		resource = &LinkFileResource{FileResponse: toFileResponse(res.File), SignedURL: res.SignedURL}
	case res.Folder != nil:
		resource = &LinkFolderResource{FolderResponse: toFolderResponse(res.Folder), Contents: toFileResponses(res.Contents)}
	}
	response.Success(c, gin.H{
		"link_share": toLinkShareResponse(link),
		"resource":   resource,
	})
}
