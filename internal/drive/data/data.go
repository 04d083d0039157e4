package data

import (
	"context"

	"github.com/lk2023060901/drive-backend/internal/drive/biz"
	"github.com/lk2023060901/drive-backend/internal/pkg/database"
	"gorm.io/gorm"
)

// Transactor 基于 gorm 事务实现 biz.Transactor
type Transactor struct {
	db *database.DB
}

func NewTransactor(db *database.DB) biz.Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.db.Transaction(ctx, func(ctx context.Context, _ *gorm.DB) error {
		return fn(ctx)
	})
}
