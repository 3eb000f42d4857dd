package repository

import (
	"context"

	"forumcore/internal/cache"
	"forumcore/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	FindAll(ctx context.Context) ([]entity.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, category *entity.Category) error
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
}

type categoryRepository struct {
	db    *gorm.DB
	cache cache.QueryCache
}

func NewCategoryRepository(db *gorm.DB, queryCache cache.QueryCache) CategoryRepository {
	return &categoryRepository{db: db, cache: queryCache}
}

func (r *categoryRepository) FindAll(ctx context.Context) ([]entity.Category, error) {
	sig := cache.Signature{
		Table: entity.TableCategories,
		Parts: []string{"list", "order=weight"},
	}

	categories := []entity.Category{}
	err := r.cache.Fetch(ctx, sig, &categories, func() error {
		return r.db.WithContext(ctx).
			Scopes(entity.NotDeleted(entity.TableCategories)).
			Order("weight ASC, id ASC").
			Find(&categories).Error
	})
	return categories, err
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var categories []entity.Category
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		Limit(1).
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, nil
	}
	return &categories[0], nil
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *categoryRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	return entity.SoftDelete(ctx, r.db, entity.TableCategories, id)
}
