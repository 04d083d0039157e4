package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/drive-backend/internal/pkg/errors"
)

// ErrorBody 统一错误响应结构
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody 仅包含提示信息的响应
type MessageBody struct {
	Message string `json:"message"`
}

// Success 成功响应（200），直接返回数据本身
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusOK, data)
}

// SuccessWithMessage 仅返回提示信息的成功响应（200）
func SuccessWithMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageBody{Message: message})
}

// Created 创建资源成功（201）
func Created(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusCreated, data)
}

// Error 错误响应
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorBody{Error: message})
}

// BadRequest 400 错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401 错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// HandleError 统一错误处理（使用AppError）
// 5xx 错误只返回错误码对应的消息，不暴露底层错误
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := apperrors.ExtractCode(err)
	if apperrors.IsServerError(code) {
		ErrorWithCode(c, code)
		return
	}

	var details string
	if appErr, ok := err.(*apperrors.AppError); ok {
		details = appErr.Details
	}
	ErrorWithCode(c, code, details)
}

// ErrorWithCode 使用错误码的错误响应
func ErrorWithCode(c *gin.Context, code int, details ...string) {
	Error(c, apperrors.GetHTTPStatus(code), apperrors.FormatError(code, details...))
}
