package biz

import (
	"context"
	"io"
	"time"
)

// ItemType 可共享条目类型
type ItemType string

const (
	ItemTypeFile   ItemType = "file"
	ItemTypeFolder ItemType = "folder"
)

// ParseItemType 解析条目类型
func ParseItemType(s string) (ItemType, error) {
	switch ItemType(s) {
	case ItemTypeFile, ItemTypeFolder:
		return ItemType(s), nil
	default:
		return "", ErrInvalidItemType
	}
}

// Role 访问角色
type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// ParseGrantRole 解析可授予的角色（owner 不可授予）
func ParseGrantRole(s string) (Role, error) {
	switch Role(s) {
	case RoleViewer, RoleEditor:
		return Role(s), nil
	default:
		return "", ErrInvalidRole
	}
}

func (r Role) rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// StorageBackend 文件字节所在后端
type StorageBackend string

const (
	// BackendPrimary 主对象存储，沿用历史行中的取值
	BackendPrimary StorageBackend = "supabase"
	BackendLocal   StorageBackend = "local"
)

// File 文件元数据
type File struct {
	ID             string
	Name           string
	MimeType       string
	SizeBytes      int64
	StorageKey     string
	StoragePath    string
	StorageBackend StorageBackend
	OwnerID        string
	FolderID       *string
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Folder 文件夹，每个用户一棵树
type Folder struct {
	ID        string
	Name      string
	OwnerID   string
	ParentID  *string
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SharedItem 从所有者到指定用户的授权
type SharedItem struct {
	ID         string
	ItemID     string
	ItemType   ItemType
	OwnerID    string
	SharedWith string
	Role       Role
	CreatedAt  time.Time
}

// LinkShare 公开链接，持有 token 即可读取
type LinkShare struct {
	ID           string
	ResourceID   string
	ResourceType ItemType
	Token        string
	OwnerID      string
	ExpiresAt    *time.Time
	CreatedAt    time.Time
}

// Expired 判断链接在 at 时刻是否已过期，未设置过期时间的链接永不过期
func (l *LinkShare) Expired(at time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(at)
}

// FileRepo 文件仓库接口
type FileRepo interface {
	Create(ctx context.Context, f *File) error
	GetByID(ctx context.Context, id string) (*File, error)
	ListByOwner(ctx context.Context, ownerID string, deleted bool) ([]*File, error)
	ListRoot(ctx context.Context, ownerID string) ([]*File, error)
	ListByFolder(ctx context.Context, folderID string) ([]*File, error)
	SearchByName(ctx context.Context, ownerID, q string) ([]*File, error)
	SetDeleted(ctx context.Context, id string, deleted bool) (*File, error)
	Rename(ctx context.Context, id, name string) (*File, error)
	DetachFromFolder(ctx context.Context, folderID string) error
	Delete(ctx context.Context, id string) error
}

// FolderRepo 文件夹仓库接口
type FolderRepo interface {
	Create(ctx context.Context, f *Folder) error
	GetByID(ctx context.Context, id string) (*Folder, error)
	ListByOwner(ctx context.Context, ownerID string, deleted bool) ([]*Folder, error)
	ListRoot(ctx context.Context, ownerID string) ([]*Folder, error)
	ListChildren(ctx context.Context, parentID string) ([]*Folder, error)
	SearchByName(ctx context.Context, ownerID, q string) ([]*Folder, error)
	SetDeleted(ctx context.Context, id string, deleted bool) (*Folder, error)
	Rename(ctx context.Context, id, name string) (*Folder, error)
	DetachChildren(ctx context.Context, parentID string) error
	Delete(ctx context.Context, id string) error
}

// ShareRepo 授权仓库接口
type ShareRepo interface {
	Create(ctx context.Context, s *SharedItem) error
	GetByID(ctx context.Context, id string) (*SharedItem, error)
	GetByRecipient(ctx context.Context, itemType ItemType, itemID, sharedWith string) (*SharedItem, error)
	UpdateRole(ctx context.Context, id string, role Role) (*SharedItem, error)
	// FindGrants 返回条目上 owner_id 或 shared_with 为 userID 的授权
	FindGrants(ctx context.Context, itemType ItemType, itemID, userID string) ([]*SharedItem, error)
	ListForUser(ctx context.Context, userID string) ([]*SharedItem, error)
	ListSharedWith(ctx context.Context, userID string) ([]*SharedItem, error)
	ListSharedBy(ctx context.Context, userID string) ([]*SharedItem, error)
	Delete(ctx context.Context, id string) error
	DeleteByItem(ctx context.Context, itemType ItemType, itemID string) error
}

// LinkRepo 公开链接仓库接口
type LinkRepo interface {
	Create(ctx context.Context, l *LinkShare) error
	GetByID(ctx context.Context, id string) (*LinkShare, error)
	GetByToken(ctx context.Context, token string) (*LinkShare, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*LinkShare, error)
	Delete(ctx context.Context, id string) error
	DeleteByResource(ctx context.Context, resourceType ItemType, resourceID string) error
}

// Transactor 在同一事务中执行 fn，仓库通过 ctx 获取事务
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ObjectStore 主对象存储
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Remove(ctx context.Context, key string) error
}

// LocalStore 本地磁盘回退存储
type LocalStore interface {
	// Save 写入 filename 并返回绝对路径
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, filename string) error
}

// LocalURLSigner 为本地文件签发带时效的访问地址
type LocalURLSigner interface {
	SignURL(key string, ttl time.Duration) (string, error)
	Verify(token string) (string, error)
}

// TaskRunner 并发执行一组任务，返回与任务一一对应的错误
type TaskRunner interface {
	Run(ctx context.Context, tasks []func(ctx context.Context) error) []error
}

// ShareNotice 新授权通知内容
type ShareNotice struct {
	RecipientEmail string
	RecipientName  string
	OwnerName      string
	ItemType       ItemType
	ItemName       string
	Role           Role
}

// ShareNotifier 新授权通知，实现方不得阻塞调用方
type ShareNotifier interface {
	ShareCreated(ctx context.Context, notice ShareNotice)
}
