package data

import (
	"context"
	"time"

	"github.com/lk2023060901/drive-backend/internal/pkg/database"
	apperrors "github.com/lk2023060901/drive-backend/internal/pkg/errors"
	"github.com/lk2023060901/drive-backend/internal/user/biz"
)

// UserPO users 表的持久化模型，认证模块共用
type UserPO struct {
	ID           string    `gorm:"type:uuid;primarykey"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:idx_users_email"`
	PasswordHash string    `gorm:"size:255;not null"`
	Name         string    `gorm:"size:100;not null;default:''"`
	ImageURL     string    `gorm:"size:1024;not null;default:''"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (UserPO) TableName() string {
	return "users"
}

// UserRepo implements biz.UserRepo
type UserRepo struct {
	db *database.DB
}

func NewUserRepo(db *database.DB) biz.UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) List(ctx context.Context) ([]*biz.User, error) {
	var pos []UserPO
	if err := r.db.GetDBFromContext(ctx).Order("created_at ASC").Find(&pos).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, "list users")
	}

	users := make([]*biz.User, len(pos))
	for i := range pos {
		users[i] = toUser(&pos[i])
	}
	return users, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*biz.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*biz.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id string, update biz.ProfileUpdate) (*biz.User, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.ImageURL != nil {
		updates["image_url"] = *update.ImageURL
	}

	result := r.db.GetDBFromContext(ctx).Model(&UserPO{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, apperrors.Wrap(result.Error, apperrors.ErrInternalServer, "update user profile")
	}
	if result.RowsAffected == 0 {
		return nil, biz.ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepo) first(ctx context.Context, query string, arg interface{}) (*biz.User, error) {
	var po UserPO
	if err := r.db.GetDBFromContext(ctx).Where(query, arg).First(&po).Error; err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, "get user")
	}
	return toUser(&po), nil
}

func toUser(po *UserPO) *biz.User {
	return &biz.User{
		ID:        po.ID,
		Email:     po.Email,
		Name:      po.Name,
		ImageURL:  po.ImageURL,
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}
}
