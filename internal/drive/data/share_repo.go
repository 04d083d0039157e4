package data

import (
	"context"

	"github.com/lk2023060901/drive-backend/internal/drive/biz"
	"github.com/lk2023060901/drive-backend/internal/pkg/database"
	apperrors "github.com/lk2023060901/drive-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

// ShareRepo implements biz.ShareRepo
type ShareRepo struct {
	db *database.DB
}

func NewShareRepo(db *database.DB) biz.ShareRepo {
	return &ShareRepo{db: db}
}

func (r *ShareRepo) conn(ctx context.Context) *gorm.DB {
	return r.db.GetDBFromContext(ctx).Model(&SharedItemPO{})
}

func (r *ShareRepo) Create(ctx context.Context, s *biz.SharedItem) error {
	po := &SharedItemPO{
		ID:         s.ID,
		ItemID:     s.ItemID,
		ItemType:   string(s.ItemType),
		OwnerID:    s.OwnerID,
		SharedWith: s.SharedWith,
		Role:       string(s.Role),
		CreatedAt:  s.CreatedAt,
	}
	if err := r.db.GetDBFromContext(ctx).Create(po).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer, "create share")
	}
	return nil
}

func (r *ShareRepo) first(ctx context.Context, op string, query string, args ...interface{}) (*biz.SharedItem, error) {
	var po SharedItemPO
	if err := r.conn(ctx).Where(query, args...).Order("created_at ASC").First(&po).Error; err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrShareNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, op)
	}
	return shareToBiz(&po), nil
}

func (r *ShareRepo) GetByID(ctx context.Context, id string) (*biz.SharedItem, error) {
	return r.first(ctx, "get share", "id = ?", id)
}

func (r *ShareRepo) GetByRecipient(ctx context.Context, itemType biz.ItemType, itemID, sharedWith string) (*biz.SharedItem, error) {
	return r.first(ctx, "get share by recipient",
		"item_type = ? AND item_id = ? AND shared_with = ?", string(itemType), itemID, sharedWith)
}

func (r *ShareRepo) UpdateRole(ctx context.Context, id string, role biz.Role) (*biz.SharedItem, error) {
	result := r.conn(ctx).Where("id = ?", id).Update("role", string(role))
	if result.Error != nil {
		return nil, apperrors.Wrap(result.Error, apperrors.ErrInternalServer, "update share role")
	}
	if result.RowsAffected == 0 {
		return nil, biz.ErrShareNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *ShareRepo) find(ctx context.Context, op string, query string, args ...interface{}) ([]*biz.SharedItem, error) {
	var pos []SharedItemPO
	if err := r.conn(ctx).Where(query, args...).Order("created_at DESC").Find(&pos).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, op)
	}
	return sharesToBiz(pos), nil
}

// FindGrants 单条 OR 查询，授权行对所有者与接收者均可见
func (r *ShareRepo) FindGrants(ctx context.Context, itemType biz.ItemType, itemID, userID string) ([]*biz.SharedItem, error) {
	return r.find(ctx, "find grants",
		"item_id = ? AND item_type = ? AND (owner_id = ? OR shared_with = ?)", itemID, string(itemType), userID, userID)
}

func (r *ShareRepo) ListForUser(ctx context.Context, userID string) ([]*biz.SharedItem, error) {
	return r.find(ctx, "list shares", "owner_id = ? OR shared_with = ?", userID, userID)
}

func (r *ShareRepo) ListSharedWith(ctx context.Context, userID string) ([]*biz.SharedItem, error) {
	return r.find(ctx, "list shared with me", "shared_with = ?", userID)
}

func (r *ShareRepo) ListSharedBy(ctx context.Context, userID string) ([]*biz.SharedItem, error) {
	return r.find(ctx, "list shared by me", "owner_id = ?", userID)
}

func (r *ShareRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.GetDBFromContext(ctx).Where("id = ?", id).Delete(&SharedItemPO{}).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer, "delete share")
	}
	return nil
}

func (r *ShareRepo) DeleteByItem(ctx context.Context, itemType biz.ItemType, itemID string) error {
	err := r.db.GetDBFromContext(ctx).
		Where("item_type = ? AND item_id = ?", string(itemType), itemID).
		Delete(&SharedItemPO{}).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer, "delete item shares")
	}
	return nil
}
