package data

import (
	"context"
	"time"

	"github.com/lk2023060901/drive-backend/internal/drive/biz"
	"github.com/lk2023060901/drive-backend/internal/pkg/database"
	apperrors "github.com/lk2023060901/drive-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

// FolderRepo implements biz.FolderRepo
type FolderRepo struct {
	db *database.DB
}

func NewFolderRepo(db *database.DB) biz.FolderRepo {
	return &FolderRepo{db: db}
}

func (r *FolderRepo) conn(ctx context.Context) *gorm.DB {
	return r.db.GetDBFromContext(ctx).Model(&FolderPO{})
}

func (r *FolderRepo) Create(ctx context.Context, f *biz.Folder) error {
	if err := r.db.GetDBFromContext(ctx).Create(folderToPO(f)).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer, "create folder")
	}
	return nil
}

func (r *FolderRepo) GetByID(ctx context.Context, id string) (*biz.Folder, error) {
	var po FolderPO
	if err := r.conn(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrItemNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, "get folder")
	}
	return folderToBiz(&po), nil
}

func (r *FolderRepo) find(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]*biz.Folder, error) {
	var pos []FolderPO
	if err := r.conn(ctx).Scopes(scope).Order("created_at DESC").Find(&pos).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, op)
	}
	return foldersToBiz(pos), nil
}

func (r *FolderRepo) ListByOwner(ctx context.Context, ownerID string, deleted bool) ([]*biz.Folder, error) {
	return r.find(ctx, "list folders", func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ? AND is_deleted = ?", ownerID, deleted)
	})
}

func (r *FolderRepo) ListRoot(ctx context.Context, ownerID string) ([]*biz.Folder, error) {
	return r.find(ctx, "list root folders", func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ? AND parent_id IS NULL AND is_deleted = ?", ownerID, false)
	})
}

func (r *FolderRepo) ListChildren(ctx context.Context, parentID string) ([]*biz.Folder, error) {
	return r.find(ctx, "list subfolders", func(db *gorm.DB) *gorm.DB {
		return db.Where("parent_id = ? AND is_deleted = ?", parentID, false)
	})
}

func (r *FolderRepo) SearchByName(ctx context.Context, ownerID, q string) ([]*biz.Folder, error) {
	return r.find(ctx, "search folders", func(db *gorm.DB) *gorm.DB {
		return db.Scopes(database.NameContains(q)).Where("owner_id = ? AND is_deleted = ?", ownerID, false)
	})
}

func (r *FolderRepo) update(ctx context.Context, id, op string, values map[string]interface{}) (*biz.Folder, error) {
	values["updated_at"] = time.Now()
	result := r.conn(ctx).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return nil, apperrors.Wrap(result.Error, apperrors.ErrInternalServer, op)
	}
	if result.RowsAffected == 0 {
		return nil, biz.ErrItemNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *FolderRepo) SetDeleted(ctx context.Context, id string, deleted bool) (*biz.Folder, error) {
	return r.update(ctx, id, "set folder deleted", map[string]interface{}{"is_deleted": deleted})
}

func (r *FolderRepo) Rename(ctx context.Context, id, name string) (*biz.Folder, error) {
	return r.update(ctx, id, "rename folder", map[string]interface{}{"name": name})
}

func (r *FolderRepo) DetachChildren(ctx context.Context, parentID string) error {
	err := r.conn(ctx).Where("parent_id = ?", parentID).
		Updates(map[string]interface{}{"parent_id": nil, "updated_at": time.Now()}).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer, "detach subfolders")
	}
	return nil
}

func (r *FolderRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.GetDBFromContext(ctx).Where("id = ?", id).Delete(&FolderPO{}).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer, "delete folder")
	}
	return nil
}
