package biz

import (
	"context"
	"errors"

	"github.com/lk2023060901/drive-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// TrashContents 回收站内容
type TrashContents struct {
	Files   []*File
	Folders []*Folder
}

// EmptyResult 清空回收站结果
type EmptyResult struct {
	Files        int
	Folders      int
	BlobFailures int
}

// TrashUseCase 回收站：恢复与永久删除
type TrashUseCase struct {
	files   FileRepo
	folders FolderRepo
	shares  ShareRepo
	links   LinkRepo
	access  *AccessResolver
	gateway *PersistenceGateway
	tx      Transactor
	runner  TaskRunner
	logger  *logger.Logger
}

func NewTrashUseCase(files FileRepo, folders FolderRepo, shares ShareRepo, links LinkRepo, access *AccessResolver,
	gateway *PersistenceGateway, tx Transactor, runner TaskRunner, log *logger.Logger) *TrashUseCase {
	return &TrashUseCase{
		files:   files,
		folders: folders,
		shares:  shares,
		links:   links,
		access:  access,
		gateway: gateway,
		tx:      tx,
		runner:  runner,
		logger:  log.Named("trash"),
	}
}

// List 我的回收站
func (uc *TrashUseCase) List(ctx context.Context, ownerID string) (*TrashContents, error) {
	files, err := uc.files.ListByOwner(ctx, ownerID, true)
	if err != nil {
		return nil, err
	}
	folders, err := uc.folders.ListByOwner(ctx, ownerID, true)
	if err != nil {
		return nil, err
	}
	return &TrashContents{Files: files, Folders: folders}, nil
}

// Restore 恢复文件或文件夹，返回恢复后的行
func (uc *TrashUseCase) Restore(ctx context.Context, ownerID string, itemType ItemType, id string) (interface{}, error) {
	if err := uc.access.RequireOwner(ctx, ownerID, itemType, id); err != nil {
		return nil, err
	}
	if itemType == ItemTypeFile {
		return uc.files.SetDeleted(ctx, id, false)
	}
	return uc.folders.SetDeleted(ctx, id, false)
}

// Purge 永久删除回收站中的条目
// 元数据（含授权与公开链接）在同一事务中删除，提交后再删除字节
func (uc *TrashUseCase) Purge(ctx context.Context, ownerID string, itemType ItemType, id string) error {
	if _, err := ParseItemType(string(itemType)); err != nil {
		return err
	}
	if err := uc.access.RequireOwner(ctx, ownerID, itemType, id); err != nil {
		return err
	}

	switch itemType {
	case ItemTypeFile:
		f, err := uc.files.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !f.IsDeleted {
			return ErrNotInTrash
		}
		if err := uc.purgeFileRow(ctx, f); err != nil {
			return err
		}
		if err := uc.gateway.RemoveBlob(ctx, f); err != nil {
			uc.logBlobFailure(ctx, f, err)
		}
		return nil

	default:
		folder, err := uc.folders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !folder.IsDeleted {
			return ErrNotInTrash
		}
		return uc.purgeFolderRow(ctx, folder)
	}
}

// Empty 清空回收站，字节删除交给 runner 并发执行
func (uc *TrashUseCase) Empty(ctx context.Context, ownerID string) (*EmptyResult, error) {
	trash, err := uc.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := &EmptyResult{}
	purged := make([]*File, 0, len(trash.Files))
	for _, f := range trash.Files {
		if err := uc.purgeFileRow(ctx, f); err != nil {
			return result, err
		}
		purged = append(purged, f)
		result.Files++
	}
	for _, folder := range trash.Folders {
		if err := uc.purgeFolderRow(ctx, folder); err != nil {
			return result, err
		}
		result.Folders++
	}

	tasks := make([]func(ctx context.Context) error, len(purged))
	for i, f := range purged {
		tasks[i] = func(ctx context.Context) error {
			return uc.gateway.RemoveBlob(ctx, f)
		}
	}
	for i, err := range uc.runner.Run(ctx, tasks) {
		if err != nil {
			result.BlobFailures++
			uc.logBlobFailure(ctx, purged[i], err)
		}
	}

	uc.logger.WithContext(ctx).Info("trash emptied",
		zap.Int("files", result.Files),
		zap.Int("folders", result.Folders),
		zap.Int("blob_failures", result.BlobFailures))
	return result, nil
}

func (uc *TrashUseCase) purgeFileRow(ctx context.Context, f *File) error {
	return uc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := uc.deleteGrants(ctx, ItemTypeFile, f.ID); err != nil {
			return err
		}
		return uc.files.Delete(ctx, f.ID)
	})
}

// purgeFolderRow 删除文件夹行，直接子项移到根目录
func (uc *TrashUseCase) purgeFolderRow(ctx context.Context, folder *Folder) error {
	return uc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := uc.deleteGrants(ctx, ItemTypeFolder, folder.ID); err != nil {
			return err
		}
		if err := uc.files.DetachFromFolder(ctx, folder.ID); err != nil {
			return err
		}
		if err := uc.folders.DetachChildren(ctx, folder.ID); err != nil {
			return err
		}
		return uc.folders.Delete(ctx, folder.ID)
	})
}

func (uc *TrashUseCase) deleteGrants(ctx context.Context, itemType ItemType, id string) error {
	if err := uc.shares.DeleteByItem(ctx, itemType, id); err != nil {
		return err
	}
	return uc.links.DeleteByResource(ctx, itemType, id)
}

func (uc *TrashUseCase) logBlobFailure(ctx context.Context, f *File, err error) {
	level := uc.logger.WithContext(ctx).Warn
	if errors.Is(err, ErrUnknownBackend) {
		level = uc.logger.WithContext(ctx).Error
	}
	level("blob removal failed after purge",
		zap.String("file_id", f.ID),
		zap.String("backend", string(f.StorageBackend)),
		zap.String("key", f.StorageKey),
		zap.Error(err))
}
