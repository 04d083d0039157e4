package service

import (
	"time"

	"github.com/lk2023060901/drive-backend/internal/drive/biz"
)

// FileResponse 文件行
type FileResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	MimeType       string    `json:"mime_type"`
	SizeBytes      int64     `json:"size_bytes"`
	StorageKey     string    `json:"storage_key"`
	StoragePath    string    `json:"storage_path"`
	StorageBackend string    `json:"storage_backend"`
	OwnerID        string    `json:"owner_id"`
	FolderID       *string   `json:"folder_id"`
	IsDeleted      bool      `json:"is_deleted"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FolderResponse 文件夹行
type FolderResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	ParentID  *string   `json:"parent_id"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SharedItemResponse 授权行
type SharedItemResponse struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"item_id"`
	ItemType   string    `json:"item_type"`
	ItemName   string    `json:"item_name,omitempty"`
	OwnerID    string    `json:"owner_id"`
	SharedWith string    `json:"shared_with"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

// LinkShareResponse 公开链接行
type LinkShareResponse struct {
	ID           string     `json:"id"`
	ResourceID   string     `json:"resource_id"`
	ResourceType string     `json:"resource_type"`
	Token        string     `json:"token"`
	OwnerID      string     `json:"owner_id"`
	ExpiresAt    *time.Time `json:"expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// LinkFileResource 链接指向的文件，附带签名地址
type LinkFileResource struct {
	*FileResponse
	SignedURL string `json:"signed_url"`
}

// LinkFolderResource 链接指向的文件夹，附带一层子文件
type LinkFolderResource struct {
	*FolderResponse
	Contents []*FileResponse `json:"contents"`
}

func toFileResponse(f *biz.File) *FileResponse {
	return &FileResponse{
		ID:             f.ID,
		Name:           f.Name,
		MimeType:       f.MimeType,
		SizeBytes:      f.SizeBytes,
		StorageKey:     f.StorageKey,
		StoragePath:    f.StoragePath,
		StorageBackend: string(f.StorageBackend),
		OwnerID:        f.OwnerID,
		FolderID:       f.FolderID,
		IsDeleted:      f.IsDeleted,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

func toFileResponses(files []*biz.File) []*FileResponse {
	out := make([]*FileResponse, len(files))
	for i, f := range files {
		out[i] = toFileResponse(f)
	}
	return out
}

func toFolderResponse(f *biz.Folder) *FolderResponse {
	return &FolderResponse{
		ID:        f.ID,
		Name:      f.Name,
		OwnerID:   f.OwnerID,
		ParentID:  f.ParentID,
		IsDeleted: f.IsDeleted,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func toFolderResponses(folders []*biz.Folder) []*FolderResponse {
	out := make([]*FolderResponse, len(folders))
	for i, f := range folders {
		out[i] = toFolderResponse(f)
	}
	return out
}

func toSharedItemResponse(s *biz.SharedItem, itemName string) *SharedItemResponse {
	return &SharedItemResponse{
		ID:         s.ID,
		ItemID:     s.ItemID,
		ItemType:   string(s.ItemType),
		ItemName:   itemName,
		OwnerID:    s.OwnerID,
		SharedWith: s.SharedWith,
		Role:       string(s.Role),
		CreatedAt:  s.CreatedAt,
	}
}

func toSharedViews(views []*biz.SharedItemView) []*SharedItemResponse {
	out := make([]*SharedItemResponse, len(views))
	for i, v := range views {
		out[i] = toSharedItemResponse(v.SharedItem, v.ItemName)
	}
	return out
}

func toLinkShareResponse(l *biz.LinkShare) *LinkShareResponse {
	return &LinkShareResponse{
		ID:           l.ID,
		ResourceID:   l.ResourceID,
		ResourceType: string(l.ResourceType),
		Token:        l.Token,
		OwnerID:      l.OwnerID,
		ExpiresAt:    l.ExpiresAt,
		CreatedAt:    l.CreatedAt,
	}
}
