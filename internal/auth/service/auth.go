package service

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/drive-backend/internal/auth/biz"
	apperrors "github.com/lk2023060901/drive-backend/internal/pkg/errors"
	"github.com/lk2023060901/drive-backend/internal/pkg/logger"
	"github.com/lk2023060901/drive-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// AuthService 认证服务
type AuthService struct {
	authUC *biz.AuthUseCase
	logger *logger.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(authUC *biz.AuthUseCase, log *logger.Logger) *AuthService {
	return &AuthService{
		authUC: authUC,
		logger: log,
	}
}

// SignupRequest 注册请求
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=72"`
	Name     string `json:"name" binding:"max=100"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthUser 令牌中携带的用户信息
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	Token string    `json:"token"`
	User  *AuthUser `json:"user"`
}

// Signup 用户注册
// @Summary 用户注册
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "注册信息"
// @Success 201 {object} AuthResponse
// @Router /api/auth/signup [post]
func (s *AuthService) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, "email and password are required")
		return
	}

	result, err := s.authUC.Signup(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.handleError(c, err, "failed to sign up", req.Email)
		return
	}

	response.Created(c, toAuthResponse(result))
}

// Login 用户登录
// @Summary 用户登录
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} AuthResponse
// @Router /api/auth/login [post]
func (s *AuthService) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, "email and password are required")
		return
	}

	result, err := s.authUC.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.handleError(c, err, "failed to log in", req.Email)
		return
	}

	response.Success(c, toAuthResponse(result))
}

func (s *AuthService) handleError(c *gin.Context, err error, msg, email string) {
	switch {
	case errors.Is(err, biz.ErrEmailAlreadyExists):
		response.ErrorWithCode(c, apperrors.ErrAuthEmailExists)
	case errors.Is(err, biz.ErrInvalidCredentials):
		response.ErrorWithCode(c, apperrors.ErrAuthInvalidCredentials)
	case errors.Is(err, biz.ErrMissingCredentials):
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, err.Error())
	default:
		s.logger.WithContext(c.Request.Context()).Error(msg, zap.Error(err), zap.String("email", email))
		response.HandleError(c, err)
	}
}

func toAuthResponse(r *biz.AuthResult) *AuthResponse {
	return &AuthResponse{
		Token: r.Token,
		User: &AuthUser{
			ID:    r.User.ID,
			Email: r.User.Email,
			Name:  r.User.Name,
		},
	}
}

// RegisterRoutes 注册认证路由（公开）
// 可选的 handlers 按顺序作用于 signup / login，用于挂载限流中间件
func (s *AuthService) RegisterRoutes(r *gin.RouterGroup, signupLimiter, loginLimiter gin.HandlerFunc) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", withOptional(signupLimiter, s.Signup)...)
		authGroup.POST("/login", withOptional(loginLimiter, s.Login)...)
	}
}

func withOptional(mw gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if mw == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{mw, h}
}
