package data

import (
	"context"

	"github.com/lk2023060901/drive-backend/internal/drive/biz"
	"github.com/lk2023060901/drive-backend/internal/pkg/database"
	apperrors "github.com/lk2023060901/drive-backend/internal/pkg/errors"
)

// LinkRepo implements biz.LinkRepo
type LinkRepo struct {
	db *database.DB
}

func NewLinkRepo(db *database.DB) biz.LinkRepo {
	return &LinkRepo{db: db}
}

func (r *LinkRepo) Create(ctx context.Context, l *biz.LinkShare) error {
	po := &LinkSharePO{
		ID:           l.ID,
		ResourceID:   l.ResourceID,
		ResourceType: string(l.ResourceType),
		Token:        l.Token,
		OwnerID:      l.OwnerID,
		ExpiresAt:    l.ExpiresAt,
		CreatedAt:    l.CreatedAt,
	}
	if err := r.db.GetDBFromContext(ctx).Create(po).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer, "create link share")
	}
	return nil
}

func (r *LinkRepo) first(ctx context.Context, op, query string, arg interface{}) (*biz.LinkShare, error) {
	var po LinkSharePO
	if err := r.db.GetDBFromContext(ctx).Where(query, arg).First(&po).Error; err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrLinkNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, op)
	}
	return linkToBiz(&po), nil
}

func (r *LinkRepo) GetByID(ctx context.Context, id string) (*biz.LinkShare, error) {
	return r.first(ctx, "get link share", "id = ?", id)
}

func (r *LinkRepo) GetByToken(ctx context.Context, token string) (*biz.LinkShare, error) {
	return r.first(ctx, "get link share by token", "token = ?", token)
}

func (r *LinkRepo) ListByOwner(ctx context.Context, ownerID string) ([]*biz.LinkShare, error) {
	var pos []LinkSharePO
	if err := r.db.GetDBFromContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&pos).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, "list link shares")
	}
	out := make([]*biz.LinkShare, len(pos))
	for i := range pos {
		out[i] = linkToBiz(&pos[i])
	}
	return out, nil
}

func (r *LinkRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.GetDBFromContext(ctx).Where("id = ?", id).Delete(&LinkSharePO{}).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer, "delete link share")
	}
	return nil
}

func (r *LinkRepo) DeleteByResource(ctx context.Context, resourceType biz.ItemType, resourceID string) error {
	err := r.db.GetDBFromContext(ctx).
		Where("resource_type = ? AND resource_id = ?", string(resourceType), resourceID).
		Delete(&LinkSharePO{}).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer, "delete resource link shares")
	}
	return nil
}
