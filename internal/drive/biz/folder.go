package biz

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FolderContents 文件夹内容（仅一层）
type FolderContents struct {
	Folder     *Folder
	Subfolders []*Folder
	Files      []*File
}

// FolderUseCase 文件夹业务逻辑
type FolderUseCase struct {
	folders FolderRepo
	files   FileRepo
	access  *AccessResolver
	now     func() time.Time
}

func NewFolderUseCase(folders FolderRepo, files FileRepo, access *AccessResolver) *FolderUseCase {
	return &FolderUseCase{
		folders: folders,
		files:   files,
		access:  access,
		now:     time.Now,
	}
}

// Create 创建文件夹，parentID 为空表示根目录
func (uc *FolderUseCase) Create(ctx context.Context, ownerID, name string, parentID *string) (*Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidInput("folder name is required")
	}
	if parentID != nil && *parentID == "" {
		parentID = nil
	}
	if parentID != nil {
		if err := checkParent(ctx, uc.folders, ownerID, *parentID); err != nil {
			return nil, err
		}
	}

	now := uc.now()
	folder := &Folder{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Name:      name,
		OwnerID:   ownerID,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.folders.Create(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// List 我的全部未删除文件夹
func (uc *FolderUseCase) List(ctx context.Context, ownerID string) ([]*Folder, error) {
	return uc.folders.ListByOwner(ctx, ownerID, false)
}

// Root 根目录下的文件夹和文件
func (uc *FolderUseCase) Root(ctx context.Context, ownerID string) ([]*Folder, []*File, error) {
	folders, err := uc.folders.ListRoot(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	files, err := uc.files.ListRoot(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	return folders, files, nil
}

// Contents 文件夹直接子项，需要 viewer 权限
func (uc *FolderUseCase) Contents(ctx context.Context, requesterID, id string) (*FolderContents, error) {
	if _, err := uc.access.Resolve(ctx, requesterID, ItemTypeFolder, id, RoleViewer); err != nil {
		return nil, err
	}
	folder, err := uc.folders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	subfolders, err := uc.folders.ListChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	files, err := uc.files.ListByFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	return &FolderContents{Folder: folder, Subfolders: subfolders, Files: files}, nil
}

// Rename 重命名，需要 editor 权限
func (uc *FolderUseCase) Rename(ctx context.Context, requesterID, id, name string) (*Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidInput("name is required")
	}
	if _, err := uc.access.Resolve(ctx, requesterID, ItemTypeFolder, id, RoleEditor); err != nil {
		return nil, err
	}
	return uc.folders.Rename(ctx, id, name)
}

// Trash 移入回收站，仅所有者
func (uc *FolderUseCase) Trash(ctx context.Context, requesterID, id string) (*Folder, error) {
	if err := uc.access.RequireOwner(ctx, requesterID, ItemTypeFolder, id); err != nil {
		return nil, err
	}
	return uc.folders.SetDeleted(ctx, id, true)
}

// Restore 从回收站恢复，仅所有者
func (uc *FolderUseCase) Restore(ctx context.Context, requesterID, id string) (*Folder, error) {
	if err := uc.access.RequireOwner(ctx, requesterID, ItemTypeFolder, id); err != nil {
		return nil, err
	}
	return uc.folders.SetDeleted(ctx, id, false)
}
