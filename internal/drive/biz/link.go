package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lk2023060901/drive-backend/internal/auth"
)

// linkTokenBytes 公开链接 token 的随机字节数
const linkTokenBytes = 32

// MaxLinkURLTTL 链接解析时签发的下载地址最长有效期
const MaxLinkURLTTL = time.Hour

// LinkResource 链接指向的资源
type LinkResource struct {
	File      *File
	SignedURL string
	Folder    *Folder
	Contents  []*File
}

// LinkResolver 通过公开 token 解析资源，不依赖身份认证
type LinkResolver struct {
	links   LinkRepo
	files   FileRepo
	folders FolderRepo
	gateway *PersistenceGateway
	urlTTL  time.Duration
	now     func() time.Time
}

func NewLinkResolver(links LinkRepo, files FileRepo, folders FolderRepo, gateway *PersistenceGateway, urlTTL time.Duration) *LinkResolver {
	if urlTTL <= 0 || urlTTL > MaxLinkURLTTL {
		urlTTL = MaxLinkURLTTL
	}
	return &LinkResolver{
		links:   links,
		files:   files,
		folders: folders,
		gateway: gateway,
		urlTTL:  urlTTL,
		now:     time.Now,
	}
}

// Resolve 解析 token
// 过期只在读取时判断，过期的行不会被删除
func (r *LinkResolver) Resolve(ctx context.Context, token string) (*LinkShare, *LinkResource, error) {
	if token == "" {
		return nil, nil, ErrLinkNotFound
	}
	link, err := r.links.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if link.Expired(r.now()) {
		return nil, nil, ErrLinkExpired
	}

	res, err := r.resource(ctx, link)
	if err != nil {
		return nil, nil, err
	}
	return link, res, nil
}

func (r *LinkResolver) resource(ctx context.Context, link *LinkShare) (*LinkResource, error) {
	switch link.ResourceType {
	case ItemTypeFile:
		f, err := r.files.GetByID(ctx, link.ResourceID)
		if err != nil {
			return nil, err
		}
		if f.IsDeleted {
			return nil, ErrItemNotFound
		}
		url, err := r.gateway.DownloadURL(ctx, f, r.urlTTL)
		if err != nil {
			return nil, err
		}
		return &LinkResource{File: f, SignedURL: url}, nil

	case ItemTypeFolder:
		folder, err := r.folders.GetByID(ctx, link.ResourceID)
		if err != nil {
			return nil, err
		}
		if folder.IsDeleted {
			return nil, ErrItemNotFound
		}
		// 只取直接子文件，不递归子文件夹
		contents, err := r.files.ListByFolder(ctx, folder.ID)
		if err != nil {
			return nil, err
		}
		return &LinkResource{Folder: folder, Contents: contents}, nil

	default:
		return nil, ErrInvalidItemType
	}
}

// CreateLinkRequest 创建公开链接请求
type CreateLinkRequest struct {
	ResourceType ItemType
	ResourceID   string
	ExpiresAt    *time.Time
}

// LinkUseCase 公开链接管理
type LinkUseCase struct {
	links    LinkRepo
	access   *AccessResolver
	resolver *LinkResolver
	now      func() time.Time
}

func NewLinkUseCase(links LinkRepo, access *AccessResolver, resolver *LinkResolver) *LinkUseCase {
	return &LinkUseCase{
		links:    links,
		access:   access,
		resolver: resolver,
		now:      time.Now,
	}
}

// Create 为自己的文件/文件夹创建公开链接
func (uc *LinkUseCase) Create(ctx context.Context, ownerID string, req CreateLinkRequest) (*LinkShare, error) {
	if req.ResourceID == "" {
		return nil, invalidInput("resource_id is required")
	}
	if _, err := ParseItemType(string(req.ResourceType)); err != nil {
		return nil, err
	}
	if err := uc.access.RequireOwner(ctx, ownerID, req.ResourceType, req.ResourceID); err != nil {
		return nil, err
	}

	token, err := auth.GenerateRandomToken(linkTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate link token: %w", err)
	}

	link := &LinkShare{
		ID:           uuid.Must(uuid.NewV7()).String(),
		ResourceID:   req.ResourceID,
		ResourceType: req.ResourceType,
		Token:        token,
		OwnerID:      ownerID,
		ExpiresAt:    req.ExpiresAt,
		CreatedAt:    uc.now(),
	}
	if err := uc.links.Create(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// List 列出我创建的链接
func (uc *LinkUseCase) List(ctx context.Context, ownerID string) ([]*LinkShare, error) {
	return uc.links.ListByOwner(ctx, ownerID)
}

// Revoke 撤销链接，仅创建者可操作
func (uc *LinkUseCase) Revoke(ctx context.Context, requesterID, id string) (*LinkShare, error) {
	link, err := uc.links.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if link.OwnerID != requesterID {
		return nil, ErrAccessDenied
	}
	if err := uc.links.Delete(ctx, id); err != nil {
		return nil, err
	}
	return link, nil
}

// Resolve 公开解析
func (uc *LinkUseCase) Resolve(ctx context.Context, token string) (*LinkShare, *LinkResource, error) {
	return uc.resolver.Resolve(ctx, token)
}
