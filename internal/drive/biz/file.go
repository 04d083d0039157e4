package biz

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DefaultDownloadURLTTL 所有者下载地址默认有效期
const DefaultDownloadURLTTL = 5 * time.Minute

// FileUseCase 文件业务逻辑
type FileUseCase struct {
	files       FileRepo
	folders     FolderRepo
	access      *AccessResolver
	gateway     *PersistenceGateway
	downloadTTL time.Duration
}

func NewFileUseCase(files FileRepo, folders FolderRepo, access *AccessResolver, gateway *PersistenceGateway, downloadTTL time.Duration) *FileUseCase {
	if downloadTTL <= 0 {
		downloadTTL = DefaultDownloadURLTTL
	}
	return &FileUseCase{
		files:       files,
		folders:     folders,
		access:      access,
		gateway:     gateway,
		downloadTTL: downloadTTL,
	}
}

// Upload 上传文件，folder_id 必须是本人未删除的文件夹
func (uc *FileUseCase) Upload(ctx context.Context, req StoreRequest) (*File, error) {
	if strings.TrimSpace(req.OriginalName) == "" || req.Content == nil {
		return nil, invalidInput("file is required")
	}
	if req.FolderID != nil {
		if err := checkParent(ctx, uc.folders, req.OwnerID, *req.FolderID); err != nil {
			return nil, err
		}
	}
	if req.MimeType == "" {
		req.MimeType = "application/octet-stream"
	}
	return uc.gateway.Store(ctx, req)
}

// List 我的未删除文件，按创建时间倒序
func (uc *FileUseCase) List(ctx context.Context, ownerID string) ([]*File, error) {
	return uc.files.ListByOwner(ctx, ownerID, false)
}

// Get 获取文件元数据，需要 viewer 权限
func (uc *FileUseCase) Get(ctx context.Context, requesterID, id string) (*File, error) {
	if _, err := uc.access.Resolve(ctx, requesterID, ItemTypeFile, id, RoleViewer); err != nil {
		return nil, err
	}
	return uc.files.GetByID(ctx, id)
}

// DownloadURL 签发下载地址，需要 viewer 权限
func (uc *FileUseCase) DownloadURL(ctx context.Context, requesterID, id string) (string, error) {
	if _, err := uc.access.Resolve(ctx, requesterID, ItemTypeFile, id, RoleViewer); err != nil {
		return "", err
	}
	f, err := uc.files.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return uc.gateway.DownloadURL(ctx, f, uc.downloadTTL)
}

// Rename 重命名，需要 editor 权限
func (uc *FileUseCase) Rename(ctx context.Context, requesterID, id, name string) (*File, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidInput("name is required")
	}
	if _, err := uc.access.Resolve(ctx, requesterID, ItemTypeFile, id, RoleEditor); err != nil {
		return nil, err
	}
	return uc.files.Rename(ctx, id, name)
}

// Trash 移入回收站，仅所有者
func (uc *FileUseCase) Trash(ctx context.Context, requesterID, id string) (*File, error) {
	if err := uc.access.RequireOwner(ctx, requesterID, ItemTypeFile, id); err != nil {
		return nil, err
	}
	return uc.files.SetDeleted(ctx, id, true)
}

// Restore 从回收站恢复，仅所有者；对未删除文件无状态变化
func (uc *FileUseCase) Restore(ctx context.Context, requesterID, id string) (*File, error) {
	if err := uc.access.RequireOwner(ctx, requesterID, ItemTypeFile, id); err != nil {
		return nil, err
	}
	return uc.files.SetDeleted(ctx, id, false)
}

// LocalBlobKey 校验本地下载 token，返回存储 key
func (uc *FileUseCase) LocalBlobKey(token string) (string, error) {
	return uc.gateway.VerifyLocalToken(token)
}

func checkParent(ctx context.Context, folders FolderRepo, ownerID, folderID string) error {
	parent, err := folders.GetByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return ErrInvalidParent
		}
		return err
	}
	if parent.OwnerID != ownerID || parent.IsDeleted {
		return ErrInvalidParent
	}
	return nil
}
