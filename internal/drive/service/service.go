package service

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lk2023060901/drive-backend/internal/auth/middleware"
	"github.com/lk2023060901/drive-backend/internal/drive/biz"
	apperrors "github.com/lk2023060901/drive-backend/internal/pkg/errors"
	"github.com/lk2023060901/drive-backend/internal/pkg/logger"
	"github.com/lk2023060901/drive-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// LocalFiles 将本地存储 key 解析为磁盘路径
type LocalFiles interface {
	Path(filename string) (string, error)
}

// Options 服务参数
type Options struct {
	// MaxUploadBytes 单次上传上限，<=0 不限制
	MaxUploadBytes int64
	// PublicBaseURL 对外地址，用于拼接公开链接
	PublicBaseURL string
}

// DriveService 文件、文件夹、共享、公开链接、回收站与搜索接口
type DriveService struct {
	files   *biz.FileUseCase
	folders *biz.FolderUseCase
	shares  *biz.ShareUseCase
	links   *biz.LinkUseCase
	trash   *biz.TrashUseCase
	search  *biz.SearchUseCase
	local   LocalFiles
	opts    Options
	logger  *logger.Logger
}

func NewDriveService(
	files *biz.FileUseCase,
	folders *biz.FolderUseCase,
	shares *biz.ShareUseCase,
	links *biz.LinkUseCase,
	trash *biz.TrashUseCase,
	search *biz.SearchUseCase,
	local LocalFiles,
	opts Options,
	log *logger.Logger,
) *DriveService {
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &DriveService{
		files:   files,
		folders: folders,
		shares:  shares,
		links:   links,
		trash:   trash,
		search:  search,
		local:   local,
		opts:    opts,
		logger:  log.Named("drive"),
	}
}

// RegisterRoutes 注册需要认证的路由
func (s *DriveService) RegisterRoutes(r *gin.RouterGroup) {
	files := r.Group("/files")
	{
		files.POST("", s.Upload)
		files.GET("", s.ListFiles)
		files.GET("/:id", s.GetFile)
		files.GET("/:id/download", s.Download)
		files.PATCH("/:id", s.RenameFile)
		files.DELETE("/:id", s.TrashFile)
		files.PATCH("/restore/:id", s.RestoreFile)
	}

	folders := r.Group("/folders")
	{
		folders.POST("", s.CreateFolder)
		folders.GET("", s.ListFolders)
		folders.GET("/root", s.RootContents)
		folders.GET("/:id/contents", s.FolderContents)
		folders.PATCH("/:id", s.RenameFolder)
		folders.DELETE("/:id", s.TrashFolder)
		folders.PATCH("/restore/:id", s.RestoreFolder)
	}

	share := r.Group("/share")
	{
		share.POST("", s.Share)
		share.GET("", s.ListShares)
		share.GET("/shared-with-me", s.SharedWithMe)
		share.GET("/shared-by-me", s.SharedByMe)
		share.DELETE("/:id", s.RevokeShare)
	}

	links := r.Group("/link-shares")
	{
		links.GET("", s.ListLinks)
		links.POST("", s.CreateLink)
		links.DELETE("/:id", s.RevokeLink)
	}

	trash := r.Group("/trash")
	{
		trash.GET("", s.ListTrash)
		trash.PATCH("/restore/:id", s.RestoreFromTrash)
		trash.DELETE("/:type/:id", s.Purge)
		trash.DELETE("", s.EmptyTrash)
	}

	r.GET("/search", s.Search)
}

// RegisterPublicRoutes 注册无需认证的路由，api 为 /api 分组，root 为根路由
func (s *DriveService) RegisterPublicRoutes(api *gin.RouterGroup, root gin.IRoutes) {
	api.GET("/link-shares/:token", s.ResolveLink)
	root.GET("/uploads/:key", s.ServeLocal)
}

func currentUser(c *gin.Context) string {
	userID, _ := middleware.GetUserID(c)
	return userID
}

// pathID 读取 UUID 路径参数，格式错误视为不存在
func pathID(c *gin.Context, name string, notFound int) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		response.ErrorWithCode(c, notFound)
		return "", false
	}
	return id, true
}

var errorCodes = []struct {
	err  error
	code int
}{
	{biz.ErrItemNotFound, apperrors.ErrDriveItemNotFound},
	{biz.ErrAccessDenied, apperrors.ErrDriveAccessDenied},
	{biz.ErrInsufficientRole, apperrors.ErrDriveInsufficientRole},
	{biz.ErrLinkNotFound, apperrors.ErrDriveLinkNotFound},
	{biz.ErrLinkExpired, apperrors.ErrDriveLinkExpired},
	{biz.ErrOrphanedBlob, apperrors.ErrDriveOrphanedBlob},
	{biz.ErrPersistenceFailed, apperrors.ErrDrivePersistenceFailed},
	{biz.ErrUnknownBackend, apperrors.ErrDriveUnknownBackend},
	{biz.ErrInvalidItemType, apperrors.ErrDriveInvalidItemType},
	{biz.ErrInvalidRole, apperrors.ErrDriveInvalidRole},
	{biz.ErrInvalidParent, apperrors.ErrDriveInvalidParent},
	{biz.ErrNotInTrash, apperrors.ErrDriveNotInTrash},
	{biz.ErrRecipientNotFound, apperrors.ErrDriveRecipientNotFound},
	{biz.ErrShareNotFound, apperrors.ErrNotFound},
}

// handleError 将业务错误映射为错误码，5xx 记录日志
func (s *DriveService) handleError(c *gin.Context, err error, msg string) {
	if errors.Is(err, biz.ErrInvalidInput) {
		detail := strings.TrimPrefix(err.Error(), biz.ErrInvalidInput.Error()+": ")
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, detail)
		return
	}

	code := apperrors.ErrInternalServer
	matched := false
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			code, matched = ec.code, true
			break
		}
	}

	if !matched || apperrors.IsServerError(code) {
		s.logger.WithContext(c.Request.Context()).Error(msg, zap.Error(err))
	}
	if !matched {
		response.HandleError(c, err)
		return
	}
	response.ErrorWithCode(c, code)
}
