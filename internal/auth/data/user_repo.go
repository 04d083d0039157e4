package data

import (
	"context"

	"github.com/lk2023060901/drive-backend/internal/auth/biz"
	"github.com/lk2023060901/drive-backend/internal/pkg/database"
	apperrors "github.com/lk2023060901/drive-backend/internal/pkg/errors"
	userdata "github.com/lk2023060901/drive-backend/internal/user/data"
)

// AuthUserRepo 认证用户仓库实现，与用户模块共用 users 表
type AuthUserRepo struct {
	db *database.DB
}

// NewAuthUserRepo 创建认证用户仓库
func NewAuthUserRepo(db *database.DB) biz.UserRepo {
	return &AuthUserRepo{db: db}
}

// Create 创建用户，唯一索引冲突映射为邮箱已存在
func (r *AuthUserRepo) Create(ctx context.Context, user *biz.User) error {
	po := toPO(user)
	if err := r.db.GetDBFromContext(ctx).Create(po).Error; err != nil {
		if database.IsDuplicateKeyError(err) {
			return biz.ErrEmailAlreadyExists
		}
		return apperrors.Wrap(err, apperrors.ErrInternalServer, "create user")
	}
	return nil
}

// GetByEmail 通过邮箱获取用户
func (r *AuthUserRepo) GetByEmail(ctx context.Context, email string) (*biz.User, error) {
	var po userdata.UserPO
	if err := r.db.GetDBFromContext(ctx).Where("email = ?", email).First(&po).Error; err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, "get user by email")
	}
	return toBiz(&po), nil
}

func toBiz(po *userdata.UserPO) *biz.User {
	return &biz.User{
		ID:           po.ID,
		Email:        po.Email,
		Name:         po.Name,
		PasswordHash: po.PasswordHash,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
}

func toPO(u *biz.User) *userdata.UserPO {
	return &userdata.UserPO{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
