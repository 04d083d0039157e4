package biz

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lk2023060901/drive-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// StoreRequest 上传请求
type StoreRequest struct {
	OwnerID      string
	FolderID     *string
	OriginalName string
	MimeType     string
	SizeBytes    int64
	// Content 需可回绕，主存储失败后从头写入本地
	Content io.ReadSeeker
}

// PersistenceGateway 主对象存储写入，失败时回退到本地磁盘，并记录字节所在后端
type PersistenceGateway struct {
	files   FileRepo
	objects ObjectStore
	local   LocalStore
	signer  LocalURLSigner
	logger  *logger.Logger
	now     func() time.Time
}

func NewPersistenceGateway(files FileRepo, objects ObjectStore, local LocalStore, signer LocalURLSigner, log *logger.Logger) *PersistenceGateway {
	return &PersistenceGateway{
		files:   files,
		objects: objects,
		local:   local,
		signer:  signer,
		logger:  log.Named("persistence"),
		now:     time.Now,
	}
}

// Store 写入文件字节并插入元数据行
// 两个后端都失败返回 ErrPersistenceFailed；字节写入成功但行插入失败返回 *OrphanError
func (g *PersistenceGateway) Store(ctx context.Context, req StoreRequest) (*File, error) {
	log := g.logger.WithContext(ctx)
	name := sanitizeName(req.OriginalName)
	stamp := strconv.FormatInt(g.now().UnixMilli(), 10)

	now := g.now()
	file := &File{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Name:      req.OriginalName,
		MimeType:  req.MimeType,
		SizeBytes: req.SizeBytes,
		OwnerID:   req.OwnerID,
		FolderID:  req.FolderID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	storageKey := req.OwnerID + "/" + stamp + "_" + name
	primaryErr := g.objects.Put(ctx, storageKey, req.Content, req.SizeBytes, req.MimeType)
	if primaryErr == nil {
		file.StorageBackend = BackendPrimary
		file.StorageKey = storageKey
		file.StoragePath = storageKey
	} else {
		log.Warn("object storage upload failed, falling back to local disk",
			zap.String("key", storageKey), zap.Error(primaryErr))

		// 本地目录为所有用户共享，文件名带 owner 前缀
		localName := req.OwnerID + "_" + stamp + "_" + name
		absPath, localErr := g.saveLocal(ctx, localName, req.Content)
		if localErr != nil {
			log.Error("local fallback upload failed",
				zap.String("filename", localName), zap.Error(localErr))
			return nil, fmt.Errorf("%w: primary: %v; local: %w", ErrPersistenceFailed, primaryErr, localErr)
		}
		file.StorageBackend = BackendLocal
		file.StorageKey = localName
		file.StoragePath = absPath
	}

	if err := g.files.Create(ctx, file); err != nil {
		log.Error("file record insert failed after blob write",
			zap.String("backend", string(file.StorageBackend)),
			zap.String("key", file.StorageKey),
			zap.Error(err))
		return nil, &OrphanError{
			Backend: file.StorageBackend,
			Key:     file.StorageKey,
			Path:    file.StoragePath,
			Err:     err,
		}
	}

	log.Info("file stored",
		zap.String("file_id", file.ID),
		zap.String("backend", string(file.StorageBackend)),
		zap.Int64("size", file.SizeBytes))
	return file, nil
}

func (g *PersistenceGateway) saveLocal(ctx context.Context, filename string, content io.ReadSeeker) (string, error) {
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	return g.local.Save(ctx, filename, content)
}

// DownloadURL 按后端签发带时效的下载地址
func (g *PersistenceGateway) DownloadURL(ctx context.Context, f *File, ttl time.Duration) (string, error) {
	switch f.StorageBackend {
	case BackendPrimary:
		return g.objects.SignedURL(ctx, f.StoragePath, ttl)
	case BackendLocal:
		return g.signer.SignURL(f.StorageKey, ttl)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, f.StorageBackend)
	}
}

// RemoveBlob 从持有字节的后端删除文件
func (g *PersistenceGateway) RemoveBlob(ctx context.Context, f *File) error {
	switch f.StorageBackend {
	case BackendPrimary:
		return g.objects.Remove(ctx, f.StorageKey)
	case BackendLocal:
		return g.local.Remove(ctx, f.StorageKey)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, f.StorageBackend)
	}
}

// VerifyLocalToken 校验本地下载 token，返回存储 key
func (g *PersistenceGateway) VerifyLocalToken(token string) (string, error) {
	return g.signer.Verify(token)
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
