package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/quillboard/quillboard-backend/internal/domain"
	"github.com/quillboard/quillboard-backend/internal/platform/logger"
)

// ContentVersionRepo is the append-only version log keyed by content
// identity. It has no update or delete method; rows are immutable once
// written.
type ContentVersionRepo interface {
	Create(ctx context.Context, v *domain.ContentVersion) error
	ListByContentID(ctx context.Context, contentID string) ([]*domain.ContentVersion, error)
	GetLatest(ctx context.Context, contentID string) (*domain.ContentVersion, error)
}

type contentVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentVersionRepo(db *gorm.DB, baseLog *logger.Logger) ContentVersionRepo {
	return &contentVersionRepo{
		db:  db,
		log: baseLog.With("repo", "ContentVersionRepo"),
	}
}

func (r *contentVersionRepo) Create(ctx context.Context, v *domain.ContentVersion) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *contentVersionRepo) ListByContentID(ctx context.Context, contentID string) ([]*domain.ContentVersion, error) {
	var out []*domain.ContentVersion
	if contentID == "" {
		return out, nil
	}
	if err := r.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("seq ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetLatest returns nil for an unknown identity; absence is not an error for
// the version log.
func (r *contentVersionRepo) GetLatest(ctx context.Context, contentID string) (*domain.ContentVersion, error) {
	if contentID == "" {
		return nil, nil
	}
	var rows []*domain.ContentVersion
	if err := r.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("seq DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
