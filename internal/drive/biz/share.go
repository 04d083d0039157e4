package biz

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	userbiz "github.com/lk2023060901/drive-backend/internal/user/biz"
)

// UserLookup 查找共享对象（*userbiz.UserUseCase 满足该接口）
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*userbiz.User, error)
	GetUser(ctx context.Context, id string) (*userbiz.User, error)
}

// ShareRequest 共享请求，SharedWith 与 Email 二选一
type ShareRequest struct {
	ItemType   ItemType
	ItemID     string
	SharedWith string
	Email      string
	Role       Role
}

// SharedItemView 带条目名称的授权
type SharedItemView struct {
	*SharedItem
	ItemName string
}

// ShareUseCase 用户间共享
type ShareUseCase struct {
	shares   ShareRepo
	files    FileRepo
	folders  FolderRepo
	access   *AccessResolver
	users    UserLookup
	notifier ShareNotifier
	now      func() time.Time
}

func NewShareUseCase(shares ShareRepo, files FileRepo, folders FolderRepo, access *AccessResolver, users UserLookup) *ShareUseCase {
	return &ShareUseCase{
		shares:  shares,
		files:   files,
		folders: folders,
		access:  access,
		users:   users,
		now:     time.Now,
	}
}

// SetNotifier 设置新授权通知，nil 表示不通知
func (uc *ShareUseCase) SetNotifier(n ShareNotifier) {
	uc.notifier = n
}

// Share 所有者向指定用户授权；同一接收者重复授权时更新角色
// created 为 false 表示更新了已有授权
func (uc *ShareUseCase) Share(ctx context.Context, ownerID string, req ShareRequest) (grant *SharedItem, created bool, err error) {
	if req.ItemID == "" || (req.SharedWith == "" && strings.TrimSpace(req.Email) == "") {
		return nil, false, invalidInput("item_type, item_id and shared_with or email are required")
	}
	if _, err := ParseItemType(string(req.ItemType)); err != nil {
		return nil, false, err
	}
	if req.Role == "" {
		req.Role = RoleViewer
	}
	if _, err := ParseGrantRole(string(req.Role)); err != nil {
		return nil, false, err
	}

	// 所有权校验先于接收者查询
	if err := uc.access.RequireOwner(ctx, ownerID, req.ItemType, req.ItemID); err != nil {
		return nil, false, err
	}

	recipient, err := uc.recipient(ctx, req)
	if err != nil {
		return nil, false, err
	}
	recipientID := recipient.ID
	if recipientID == ownerID {
		return nil, false, invalidInput("cannot share an item with yourself")
	}

	existing, err := uc.shares.GetByRecipient(ctx, req.ItemType, req.ItemID, recipientID)
	switch {
	case err == nil:
		updated, err := uc.shares.UpdateRole(ctx, existing.ID, req.Role)
		return updated, false, err
	case !errors.Is(err, ErrShareNotFound):
		return nil, false, err
	}

	grant = &SharedItem{
		ID:         uuid.Must(uuid.NewV7()).String(),
		ItemID:     req.ItemID,
		ItemType:   req.ItemType,
		OwnerID:    ownerID,
		SharedWith: recipientID,
		Role:       req.Role,
		CreatedAt:  uc.now(),
	}
	if err := uc.shares.Create(ctx, grant); err != nil {
		return nil, false, err
	}
	uc.notify(ctx, ownerID, recipient, grant)
	return grant, true, nil
}

// notify 仅对新授权发送通知，失败不影响授权结果
func (uc *ShareUseCase) notify(ctx context.Context, ownerID string, recipient *userbiz.User, grant *SharedItem) {
	if uc.notifier == nil || recipient.Email == "" {
		return
	}
	name, _, err := uc.itemName(ctx, grant.ItemType, grant.ItemID)
	if err != nil {
		return
	}
	notice := ShareNotice{
		RecipientEmail: recipient.Email,
		RecipientName:  recipient.Name,
		OwnerName:      ownerID,
		ItemType:       grant.ItemType,
		ItemName:       name,
		Role:           grant.Role,
	}
	if owner, err := uc.users.GetUser(ctx, ownerID); err == nil {
		notice.OwnerName = owner.Email
		if owner.Name != "" {
			notice.OwnerName = owner.Name
		}
	}
	uc.notifier.ShareCreated(ctx, notice)
}

func (uc *ShareUseCase) recipient(ctx context.Context, req ShareRequest) (*userbiz.User, error) {
	var (
		u   *userbiz.User
		err error
	)
	if req.SharedWith != "" {
		u, err = uc.users.GetUser(ctx, req.SharedWith)
	} else {
		u, err = uc.users.FindByEmail(ctx, req.Email)
	}
	if err != nil {
		if errors.Is(err, userbiz.ErrUserNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}
	return u, nil
}

// List 我作为所有者或接收者可见的授权
func (uc *ShareUseCase) List(ctx context.Context, userID string) ([]*SharedItem, error) {
	return uc.shares.ListForUser(ctx, userID)
}

// SharedWithMe 别人共享给我的条目
func (uc *ShareUseCase) SharedWithMe(ctx context.Context, userID string) ([]*SharedItemView, error) {
	grants, err := uc.shares.ListSharedWith(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.withNames(ctx, grants)
}

// SharedByMe 我共享出去的条目
func (uc *ShareUseCase) SharedByMe(ctx context.Context, userID string) ([]*SharedItemView, error) {
	grants, err := uc.shares.ListSharedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.withNames(ctx, grants)
}

// withNames 附加条目名称，已删除或已清除的条目不返回
func (uc *ShareUseCase) withNames(ctx context.Context, grants []*SharedItem) ([]*SharedItemView, error) {
	views := make([]*SharedItemView, 0, len(grants))
	for _, g := range grants {
		name, active, err := uc.itemName(ctx, g.ItemType, g.ItemID)
		if err != nil {
			return nil, err
		}
		if !active {
			continue
		}
		views = append(views, &SharedItemView{SharedItem: g, ItemName: name})
	}
	return views, nil
}

func (uc *ShareUseCase) itemName(ctx context.Context, itemType ItemType, id string) (string, bool, error) {
	var (
		name    string
		deleted bool
		err     error
	)
	switch itemType {
	case ItemTypeFile:
		var f *File
		if f, err = uc.files.GetByID(ctx, id); err == nil {
			name, deleted = f.Name, f.IsDeleted
		}
	case ItemTypeFolder:
		var f *Folder
		if f, err = uc.folders.GetByID(ctx, id); err == nil {
			name, deleted = f.Name, f.IsDeleted
		}
	default:
		return "", false, nil
	}
	if errors.Is(err, ErrItemNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return name, !deleted, nil
}

// Revoke 撤销授权，仅授权所有者
func (uc *ShareUseCase) Revoke(ctx context.Context, requesterID, id string) (*SharedItem, error) {
	grant, err := uc.shares.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if grant.OwnerID != requesterID {
		return nil, ErrAccessDenied
	}
	if err := uc.shares.Delete(ctx, id); err != nil {
		return nil, err
	}
	return grant, nil
}
