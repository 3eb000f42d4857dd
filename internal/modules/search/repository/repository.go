package repository

import (
	"context"

	"forumcore/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SearchIndexRepository interface {
	InsertBatch(ctx context.Context, rows []entity.SearchIndex) error
	Clear(ctx context.Context) error
	CountAll(ctx context.Context) (int64, error)
	FindByThreadIDs(ctx context.Context, threadIDs []string) ([]entity.SearchIndex, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

type searchIndexRepository struct {
	db *gorm.DB
}

func NewSearchIndexRepository(db *gorm.DB) SearchIndexRepository {
	return &searchIndexRepository{db: db}
}

func (r *searchIndexRepository) InsertBatch(ctx context.Context, rows []entity.SearchIndex) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *searchIndexRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&entity.SearchIndex{}).Error
}

func (r *searchIndexRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.SearchIndex{}).Count(&count).Error
	return count, err
}

func (r *searchIndexRepository) FindByThreadIDs(ctx context.Context, threadIDs []string) ([]entity.SearchIndex, error) {
	var rows []entity.SearchIndex
	err := r.db.WithContext(ctx).
		Where("thread_id IN ?", threadIDs).
		Find(&rows).Error
	return rows, err
}

func (r *searchIndexRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&entity.SearchIndex{}).Error
}
