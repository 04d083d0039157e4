package biz

import (
	"context"
	"strings"
)

// SearchResult 搜索结果
type SearchResult struct {
	Folders []*Folder
	Files   []*File
}

// SearchUseCase 按名称搜索我的未删除条目（不区分大小写）
type SearchUseCase struct {
	files   FileRepo
	folders FolderRepo
}

func NewSearchUseCase(files FileRepo, folders FolderRepo) *SearchUseCase {
	return &SearchUseCase{files: files, folders: folders}
}

func (uc *SearchUseCase) Search(ctx context.Context, ownerID, q string) (*SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalidInput("query parameter q is required")
	}

	folders, err := uc.folders.SearchByName(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}
	files, err := uc.files.SearchByName(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Folders: folders, Files: files}, nil
}
