package repository

import (
	"context"

	"forumcore/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LikeRepository interface {
	FindByPostAndLiker(ctx context.Context, postID, likerID uuid.UUID) (*entity.PostLike, error)
	Create(ctx context.Context, like *entity.PostLike) error
	DeleteByPostAndLiker(ctx context.Context, postID, likerID uuid.UUID) (int64, error)
	CountByPost(ctx context.Context, postID uuid.UUID) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) FindByPostAndLiker(ctx context.Context, postID, likerID uuid.UUID) (*entity.PostLike, error) {
	var likes []entity.PostLike
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND liker_id = ?", postID, likerID).
		Limit(1).
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	if len(likes) == 0 {
		return nil, nil
	}
	return &likes[0], nil
}

func (r *likeRepository) Create(ctx context.Context, like *entity.PostLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// DeleteByPostAndLiker removes every matching row and reports how many were
// deleted. Zero is not an error.
func (r *likeRepository) DeleteByPostAndLiker(ctx context.Context, postID, likerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND liker_id = ?", postID, likerID).
		Delete(&entity.PostLike{})
	return res.RowsAffected, res.Error
}

func (r *likeRepository) CountByPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.PostLike{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
