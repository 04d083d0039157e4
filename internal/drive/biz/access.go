package biz

import (
	"context"
)

// Access 访问判定结果
type Access struct {
	Role Role
}

// AccessResolver 判定请求者对文件/文件夹的访问权限
type AccessResolver struct {
	files   FileRepo
	folders FolderRepo
	shares  ShareRepo
}

func NewAccessResolver(files FileRepo, folders FolderRepo, shares ShareRepo) *AccessResolver {
	return &AccessResolver{files: files, folders: folders, shares: shares}
}

// Resolve 判定 requesterID 能否以 required 角色访问条目
//
// 所有者总是获得 owner（包括回收站中的条目）。非所有者依赖授权行：
// 无授权返回 ErrAccessDenied，需要 editor 而授权不足返回 ErrInsufficientRole。
// 存储错误原样返回，不会被当作拒绝。
func (r *AccessResolver) Resolve(ctx context.Context, requesterID string, itemType ItemType, itemID string, required Role) (*Access, error) {
	ownerID, deleted, err := r.ownerOf(ctx, itemType, itemID)
	if err != nil {
		return nil, err
	}
	if ownerID == requesterID {
		return &Access{Role: RoleOwner}, nil
	}
	if deleted {
		return nil, ErrAccessDenied
	}

	grants, err := r.shares.FindGrants(ctx, itemType, itemID, requesterID)
	if err != nil {
		return nil, err
	}
	if len(grants) == 0 {
		return nil, ErrAccessDenied
	}

	best := grants[0]
	for _, g := range grants[1:] {
		if grantRank(g, requesterID) > grantRank(best, requesterID) {
			best = g
		}
	}

	if required == RoleEditor {
		if best.Role == RoleEditor || best.OwnerID == requesterID {
			return &Access{Role: RoleEditor}, nil
		}
		return nil, ErrInsufficientRole
	}
	return &Access{Role: best.Role}, nil
}

// RequireOwner 仅允许所有者操作，返回条目所有者校验结果
func (r *AccessResolver) RequireOwner(ctx context.Context, requesterID string, itemType ItemType, itemID string) error {
	ownerID, _, err := r.ownerOf(ctx, itemType, itemID)
	if err != nil {
		return err
	}
	if ownerID != requesterID {
		return ErrAccessDenied
	}
	return nil
}

func (r *AccessResolver) ownerOf(ctx context.Context, itemType ItemType, itemID string) (string, bool, error) {
	switch itemType {
	case ItemTypeFile:
		f, err := r.files.GetByID(ctx, itemID)
		if err != nil {
			return "", false, err
		}
		return f.OwnerID, f.IsDeleted, nil
	case ItemTypeFolder:
		f, err := r.folders.GetByID(ctx, itemID)
		if err != nil {
			return "", false, err
		}
		return f.OwnerID, f.IsDeleted, nil
	default:
		return "", false, ErrInvalidItemType
	}
}

func grantRank(g *SharedItem, requesterID string) int {
	if g.OwnerID == requesterID {
		return RoleEditor.rank() + 1
	}
	return g.Role.rank()
}
