package biz

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmptyProfile   = errors.New("no profile fields to update")
	ErrInvalidProfile = errors.New("name must not be blank")
)

// User 用户领域模型（不含认证信息）
type User struct {
	ID        string
	Email     string
	Name      string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileUpdate 可修改的资料字段，nil 表示不修改
type ProfileUpdate struct {
	Name     *string
	ImageURL *string
}

// UserRepo 用户仓库接口
type UserRepo interface {
	List(ctx context.Context) ([]*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error)
}

// UserUseCase 用户业务逻辑
type UserUseCase struct {
	repo UserRepo
}

func NewUserUseCase(repo UserRepo) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// ListUsers 按创建时间升序列出全部用户
func (uc *UserUseCase) ListUsers(ctx context.Context) ([]*User, error) {
	return uc.repo.List(ctx)
}

func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*User, error) {
	return uc.repo.GetByID(ctx, id)
}

// FindByEmail 按邮箱查找用户（邮箱不区分大小写）
func (uc *UserUseCase) FindByEmail(ctx context.Context, email string) (*User, error) {
	return uc.repo.GetByEmail(ctx, NormalizeEmail(email))
}

// UpdateProfile 更新当前用户资料
func (uc *UserUseCase) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error) {
	if update.Name == nil && update.ImageURL == nil {
		return nil, ErrEmptyProfile
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, ErrInvalidProfile
		}
		update.Name = &name
	}
	if update.ImageURL != nil {
		imageURL := strings.TrimSpace(*update.ImageURL)
		update.ImageURL = &imageURL
	}
	return uc.repo.UpdateProfile(ctx, id, update)
}

// NormalizeEmail 统一邮箱格式：去空白、转小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
