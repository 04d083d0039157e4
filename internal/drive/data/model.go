package data

import (
	"time"

	"github.com/lk2023060901/drive-backend/internal/drive/biz"
)

// FilePO files 表
type FilePO struct {
	ID             string    `gorm:"type:uuid;primarykey"`
	Name           string    `gorm:"size:512;not null"`
	MimeType       string    `gorm:"size:255;not null;default:'application/octet-stream'"`
	SizeBytes      int64     `gorm:"not null;default:0"`
	StorageKey     string    `gorm:"size:1024;not null"`
	StoragePath    string    `gorm:"size:2048;not null"`
	StorageBackend string    `gorm:"size:32;not null"`
	OwnerID        string    `gorm:"type:uuid;not null;index:idx_files_owner_deleted,priority:1"`
	FolderID       *string   `gorm:"type:uuid;index"`
	IsDeleted      bool      `gorm:"not null;default:false;index:idx_files_owner_deleted,priority:2"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (FilePO) TableName() string {
	return "files"
}

// FolderPO folders 表
type FolderPO struct {
	ID        string    `gorm:"type:uuid;primarykey"`
	Name      string    `gorm:"size:255;not null"`
	OwnerID   string    `gorm:"type:uuid;not null;index:idx_folders_owner_deleted,priority:1"`
	ParentID  *string   `gorm:"type:uuid;index"`
	IsDeleted bool      `gorm:"not null;default:false;index:idx_folders_owner_deleted,priority:2"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (FolderPO) TableName() string {
	return "folders"
}

// SharedItemPO shared_items 表
type SharedItemPO struct {
	ID         string    `gorm:"type:uuid;primarykey"`
	ItemID     string    `gorm:"type:uuid;not null;index:idx_shared_items_item,priority:1"`
	ItemType   string    `gorm:"size:16;not null;index:idx_shared_items_item,priority:2"`
	OwnerID    string    `gorm:"type:uuid;not null;index"`
	SharedWith string    `gorm:"type:uuid;not null;index"`
	Role       string    `gorm:"size:16;not null"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SharedItemPO) TableName() string {
	return "shared_items"
}

// LinkSharePO link_shares 表
type LinkSharePO struct {
	ID           string     `gorm:"type:uuid;primarykey"`
	ResourceID   string     `gorm:"type:uuid;not null;index:idx_link_shares_resource,priority:1"`
	ResourceType string     `gorm:"size:16;not null;index:idx_link_shares_resource,priority:2"`
	Token        string     `gorm:"size:128;not null;uniqueIndex"`
	OwnerID      string     `gorm:"type:uuid;not null;index"`
	ExpiresAt    *time.Time `gorm:"index"`
	CreatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (LinkSharePO) TableName() string {
	return "link_shares"
}

// Models 需要自动迁移的模型
func Models() []interface{} {
	return []interface{}{&FilePO{}, &FolderPO{}, &SharedItemPO{}, &LinkSharePO{}}
}

func fileToBiz(po *FilePO) *biz.File {
	return &biz.File{
		ID:             po.ID,
		Name:           po.Name,
		MimeType:       po.MimeType,
		SizeBytes:      po.SizeBytes,
		StorageKey:     po.StorageKey,
		StoragePath:    po.StoragePath,
		StorageBackend: biz.StorageBackend(po.StorageBackend),
		OwnerID:        po.OwnerID,
		FolderID:       po.FolderID,
		IsDeleted:      po.IsDeleted,
		CreatedAt:      po.CreatedAt,
		UpdatedAt:      po.UpdatedAt,
	}
}

func fileToPO(f *biz.File) *FilePO {
	return &FilePO{
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

func filesToBiz(pos []FilePO) []*biz.File {
	out := make([]*biz.File, len(pos))
	for i := range pos {
		out[i] = fileToBiz(&pos[i])
	}
	return out
}

func folderToBiz(po *FolderPO) *biz.Folder {
	return &biz.Folder{
		ID:        po.ID,
		Name:      po.Name,
		OwnerID:   po.OwnerID,
		ParentID:  po.ParentID,
		IsDeleted: po.IsDeleted,
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}
}

func folderToPO(f *biz.Folder) *FolderPO {
	return &FolderPO{
		ID:        f.ID,
		Name:      f.Name,
		OwnerID:   f.OwnerID,
		ParentID:  f.ParentID,
		IsDeleted: f.IsDeleted,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func foldersToBiz(pos []FolderPO) []*biz.Folder {
	out := make([]*biz.Folder, len(pos))
	for i := range pos {
		out[i] = folderToBiz(&pos[i])
	}
	return out
}

func shareToBiz(po *SharedItemPO) *biz.SharedItem {
	return &biz.SharedItem{
		ID:         po.ID,
		ItemID:     po.ItemID,
		ItemType:   biz.ItemType(po.ItemType),
		OwnerID:    po.OwnerID,
		SharedWith: po.SharedWith,
		Role:       biz.Role(po.Role),
		CreatedAt:  po.CreatedAt,
	}
}

func sharesToBiz(pos []SharedItemPO) []*biz.SharedItem {
	out := make([]*biz.SharedItem, len(pos))
	for i := range pos {
		out[i] = shareToBiz(&pos[i])
	}
	return out
}

func linkToBiz(po *LinkSharePO) *biz.LinkShare {
	return &biz.LinkShare{
		ID:           po.ID,
		ResourceID:   po.ResourceID,
		ResourceType: biz.ItemType(po.ResourceType),
		Token:        po.Token,
		OwnerID:      po.OwnerID,
		ExpiresAt:    po.ExpiresAt,
		CreatedAt:    po.CreatedAt,
	}
}
