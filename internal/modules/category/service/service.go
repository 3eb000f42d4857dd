package service

import (
	"context"
	"fmt"

	"forumcore/internal/cache"
	"forumcore/internal/decorator"
	"forumcore/internal/entity"
	repo "forumcore/internal/modules/category/repository"
	"forumcore/pkg/apperror"
	"github.com/google/uuid"
)

type CategoryService interface {
	GetCategories(ctx context.Context) ([]entity.DecoratedCategory, error)
	CreateCategory(ctx context.Context, title, slug, description string, weight int) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	categoryRepo repo.CategoryRepository
	decorator    *decorator.CategoryDecorator
	cache        cache.QueryCache
}

func NewCategoryService(categoryRepo repo.CategoryRepository, categoryDecorator *decorator.CategoryDecorator, queryCache cache.QueryCache) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		decorator:    categoryDecorator,
		cache:        queryCache,
	}
}

// GetCategories lists live categories ordered by weight, decorated with their
// discussion aggregates.
func (s *categoryService) GetCategories(ctx context.Context) ([]entity.DecoratedCategory, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	decorated := make([]entity.DecoratedCategory, len(categories))
	for i, c := range categories {
		decorated[i] = entity.DecoratedCategory{Category: c}
	}

	if err := s.decorator.Decorate(ctx, decorated); err != nil {
		return nil, err
	}
	return decorated, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, title, slug, description string, weight int) (*entity.Category, error) {
	if title == "" {
		return nil, fmt.Errorf("title must not be empty: %w", apperror.ErrValidation)
	}

	category := &entity.Category{
		Title:       title,
		Slug:        slug,
		Description: description,
		Weight:      weight,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, entity.TableCategories); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.categoryRepo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return nil
	}
	return s.cache.Invalidate(ctx, entity.TableCategories)
}
