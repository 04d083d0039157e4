package data

import (
	"context"
	"time"

	"github.com/lk2023060901/drive-backend/internal/drive/biz"
	"github.com/lk2023060901/drive-backend/internal/pkg/database"
	apperrors "github.com/lk2023060901/drive-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

// FileRepo implements biz.FileRepo
type FileRepo struct {
	db *database.DB
}

func NewFileRepo(db *database.DB) biz.FileRepo {
	return &FileRepo{db: db}
}

func (r *FileRepo) conn(ctx context.Context) *gorm.DB {
	return r.db.GetDBFromContext(ctx).Model(&FilePO{})
}

func (r *FileRepo) Create(ctx context.Context, f *biz.File) error {
	if err := r.db.GetDBFromContext(ctx).Create(fileToPO(f)).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer, "create file")
	}
	return nil
}

func (r *FileRepo) GetByID(ctx context.Context, id string) (*biz.File, error) {
	var po FilePO
	if err := r.conn(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrItemNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, "get file")
	}
	return fileToBiz(&po), nil
}

func (r *FileRepo) find(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]*biz.File, error) {
	var pos []FilePO
	if err := r.conn(ctx).Scopes(scope).Order("created_at DESC").Find(&pos).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, op)
	}
	return filesToBiz(pos), nil
}

func (r *FileRepo) ListByOwner(ctx context.Context, ownerID string, deleted bool) ([]*biz.File, error) {
	return r.find(ctx, "list files", func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ? AND is_deleted = ?", ownerID, deleted)
	})
}

func (r *FileRepo) ListRoot(ctx context.Context, ownerID string) ([]*biz.File, error) {
	return r.find(ctx, "list root files", func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ? AND folder_id IS NULL AND is_deleted = ?", ownerID, false)
	})
}

func (r *FileRepo) ListByFolder(ctx context.Context, folderID string) ([]*biz.File, error) {
	return r.find(ctx, "list folder files", func(db *gorm.DB) *gorm.DB {
		return db.Where("folder_id = ? AND is_deleted = ?", folderID, false)
	})
}

func (r *FileRepo) SearchByName(ctx context.Context, ownerID, q string) ([]*biz.File, error) {
	return r.find(ctx, "search files", func(db *gorm.DB) *gorm.DB {
		return db.Scopes(database.NameContains(q)).Where("owner_id = ? AND is_deleted = ?", ownerID, false)
	})
}

func (r *FileRepo) update(ctx context.Context, id, op string, values map[string]interface{}) (*biz.File, error) {
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

func (r *FileRepo) SetDeleted(ctx context.Context, id string, deleted bool) (*biz.File, error) {
	return r.update(ctx, id, "set file deleted", map[string]interface{}{"is_deleted": deleted})
}

func (r *FileRepo) Rename(ctx context.Context, id, name string) (*biz.File, error) {
	return r.update(ctx, id, "rename file", map[string]interface{}{"name": name})
}

func (r *FileRepo) DetachFromFolder(ctx context.Context, folderID string) error {
	err := r.conn(ctx).Where("folder_id = ?", folderID).
		Updates(map[string]interface{}{"folder_id": nil, "updated_at": time.Now()}).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer, "detach files from folder")
	}
	return nil
}

func (r *FileRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.GetDBFromContext(ctx).Where("id = ?", id).Delete(&FilePO{}).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer, "delete file")
	}
	return nil
}
