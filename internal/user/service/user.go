package service

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/drive-backend/internal/auth/middleware"
	apperrors "github.com/lk2023060901/drive-backend/internal/pkg/errors"
	"github.com/lk2023060901/drive-backend/internal/pkg/logger"
	"github.com/lk2023060901/drive-backend/internal/pkg/response"
	"github.com/lk2023060901/drive-backend/internal/user/biz"
	"go.uber.org/zap"
)

// UserService 用户服务
type UserService struct {
	uc     *biz.UserUseCase
	logger *logger.Logger
}

func NewUserService(uc *biz.UserUseCase, log *logger.Logger) *UserService {
	return &UserService{
		uc:     uc,
		logger: log,
	}
}

// UpdateProfileRequest 修改资料请求
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	ImageURL *string `json:"image_url"`
}

// UserResponse 用户公开信息
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// ListUsers 列出全部用户
// @Summary 用户列表
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]UserResponse
// @Router /api/users [get]
func (s *UserService) ListUsers(c *gin.Context) {
	users, err := s.uc.ListUsers(c.Request.Context())
	if err != nil {
		s.handleError(c, err, "failed to list users")
		return
	}

	out := make([]*UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	response.Success(c, gin.H{"users": out})
}

// GetMe 获取当前用户
// @Summary 当前用户信息
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]UserResponse
// @Router /api/users/me [get]
func (s *UserService) GetMe(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	user, err := s.uc.GetUser(c.Request.Context(), userID)
	if err != nil {
		s.handleError(c, err, "failed to get current user")
		return
	}
	response.Success(c, gin.H{"user": ToUserResponse(user)})
}

// UpdateMe 修改当前用户资料
// @Summary 修改资料
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "资料字段"
// @Success 200 {object} map[string]UserResponse
// @Router /api/users/me [patch]
func (s *UserService) UpdateMe(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	user, err := s.uc.UpdateProfile(c.Request.Context(), userID, biz.ProfileUpdate{
		Name:     req.Name,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		s.handleError(c, err, "failed to update profile")
		return
	}
	response.Success(c, gin.H{"message": "Profile updated", "user": ToUserResponse(user)})
}

func (s *UserService) handleError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, biz.ErrUserNotFound):
		response.ErrorWithCode(c, apperrors.ErrUserNotFound)
	case errors.Is(err, biz.ErrEmptyProfile), errors.Is(err, biz.ErrInvalidProfile):
		response.ErrorWithCode(c, apperrors.ErrUserInvalidInput, err.Error())
	default:
		s.logger.WithContext(c.Request.Context()).Error(msg, zap.Error(err))
		response.HandleError(c, err)
	}
}

// ToUserResponse 转换为公开的用户信息
func ToUserResponse(u *biz.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		ImageURL:  u.ImageURL,
		CreatedAt: u.CreatedAt,
	}
}

// RegisterRoutes 注册用户路由（需要认证的路由组）
func (s *UserService) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("", s.ListUsers)
		users.GET("/me", s.GetMe)
		users.PATCH("/me", s.UpdateMe)
	}
}
