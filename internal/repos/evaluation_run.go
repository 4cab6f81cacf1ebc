package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/quillboard/quillboard-backend/internal/domain"
	"github.com/quillboard/quillboard-backend/internal/platform/logger"
)

type EvaluationRunRepo interface {
	Create(ctx context.Context, run *domain.EvaluationRun) error
	ListByContentID(ctx context.Context, contentID string, limit int) ([]*domain.EvaluationRun, error)
}

type evaluationRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEvaluationRunRepo(db *gorm.DB, baseLog *logger.Logger) EvaluationRunRepo {
	return &evaluationRunRepo{
		db:  db,
		log: baseLog.With("repo", "EvaluationRunRepo"),
	}
}

func (r *evaluationRunRepo) Create(ctx context.Context, run *domain.EvaluationRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *evaluationRunRepo) ListByContentID(ctx context.Context, contentID string, limit int) ([]*domain.EvaluationRun, error) {
	var out []*domain.EvaluationRun
	if contentID == "" {
		return out, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if err := r.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
