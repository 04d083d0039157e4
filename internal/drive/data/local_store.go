package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lk2023060901/drive-backend/internal/drive/biz"
)

// ErrInvalidFilename 文件名包含路径成分
var ErrInvalidFilename = errors.New("invalid local filename")

// LocalStore 本地上传目录
type LocalStore struct {
	dir string
}

// NewLocalStore 创建上传目录（不存在时）并返回本地存储
func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve uploads dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalStore{dir: abs}, nil
}

var _ biz.LocalStore = (*LocalStore)(nil)

// Dir 上传目录绝对路径
func (s *LocalStore) Dir() string {
	return s.dir
}

// Path 返回 filename 的绝对路径
func (s *LocalStore) Path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.ContainsAny(filename, `/\`) || filename == "." || filename == ".." {
		return "", ErrInvalidFilename
	}
	return filepath.Join(s.dir, filename), nil
}

func (s *LocalStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	path, err := s.Path(filename)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create local file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write local file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close local file: %w", err)
	}
	return path, nil
}

func (s *LocalStore) Remove(_ context.Context, filename string) error {
	path, err := s.Path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove local file: %w", err)
	}
	return nil
}
