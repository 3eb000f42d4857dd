package service

import (
	"context"
	"fmt"
	"time"

	"forumcore/internal/cache"
	"forumcore/internal/entity"
	likeRepo "forumcore/internal/modules/like/repository"
	postRepo "forumcore/internal/modules/post/repository"
	"forumcore/pkg/apperror"
	"github.com/google/uuid"
)

type LikeService interface {
	Like(ctx context.Context, postID, likerID uuid.UUID) (*entity.PostLike, int64, error)
	Unlike(ctx context.Context, postID, likerID uuid.UUID) (int64, error)
}

type likeService struct {
	likeRepo likeRepo.LikeRepository
	postRepo postRepo.PostRepository
	cache    cache.QueryCache
}

func NewLikeService(likes likeRepo.LikeRepository, posts postRepo.PostRepository, queryCache cache.QueryCache) LikeService {
	return &likeService{likeRepo: likes, postRepo: posts, cache: queryCache}
}

// Like records that a user liked a post and returns the post's resulting like
// count. Liking a post the user already likes returns the existing row
// unchanged, so repeated calls never produce a second row.
func (s *likeService) Like(ctx context.Context, postID, likerID uuid.UUID) (*entity.PostLike, int64, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, 0, err
	}
	if post == nil {
		return nil, 0, fmt.Errorf("post not found: %w", apperror.ErrNotFound)
	}

	existing, err := s.likeRepo.FindByPostAndLiker(ctx, postID, likerID)
	if err != nil {
		return nil, 0, err
	}
	if existing != nil {
		count, err := s.likeRepo.CountByPost(ctx, postID)
		return existing, count, err
	}

	like := &entity.PostLike{
		PostID:  postID,
		LikerID: likerID,
		LikedOn: time.Now().UTC(),
	}
	if err := s.likeRepo.Create(ctx, like); err != nil {
		return nil, 0, err
	}

	if err := s.cache.Invalidate(ctx, entity.TablePostLikes, entity.TablePosts); err != nil {
		return nil, 0, err
	}
	count, err := s.likeRepo.CountByPost(ctx, postID)
	return like, count, err
}

// Unlike removes the user's like rows for a post and returns the post's
// remaining like count. Unliking a post the user never liked is a no-op.
func (s *likeService) Unlike(ctx context.Context, postID, likerID uuid.UUID) (int64, error) {
	deleted, err := s.likeRepo.DeleteByPostAndLiker(ctx, postID, likerID)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		if err := s.cache.Invalidate(ctx, entity.TablePostLikes, entity.TablePosts); err != nil {
			return 0, err
		}
	}
	return s.likeRepo.CountByPost(ctx, postID)
}
