package biz

import (
	"errors"
	"fmt"
)

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrInsufficientRole  = errors.New("insufficient role")
	ErrLinkNotFound      = errors.New("link not found")
	ErrLinkExpired       = errors.New("link expired")
	ErrPersistenceFailed = errors.New("object storage and local fallback both failed")
	ErrOrphanedBlob      = errors.New("blob stored without metadata row")
	ErrUnknownBackend    = errors.New("unknown storage backend")
	ErrInvalidItemType   = errors.New("invalid item type")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidParent     = errors.New("invalid parent folder")
	ErrNotInTrash        = errors.New("item is not in trash")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrShareNotFound     = errors.New("share not found")
	ErrInvalidInput      = errors.New("invalid input")
)

// invalidInput 附带字段说明的 ErrInvalidInput
func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// OrphanError 字节已写入但元数据插入失败
type OrphanError struct {
	Backend StorageBackend
	Key     string
	Path    string
	Err     error
}

func (e *OrphanError) Error() string {
	return fmt.Sprintf("orphaned blob on %s backend (key=%s): %v", e.Backend, e.Key, e.Err)
}

func (e *OrphanError) Unwrap() error {
	return e.Err
}

func (e *OrphanError) Is(target error) bool {
	return target == ErrOrphanedBlob
}
