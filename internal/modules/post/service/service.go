package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"forumcore/internal/cache"
	"forumcore/internal/decorator"
	"forumcore/internal/entity"
	postDto "forumcore/internal/modules/post/dto"
	postRepo "forumcore/internal/modules/post/repository"
	threadRepo "forumcore/internal/modules/thread/repository"
	"forumcore/pkg/apperror"
	commonDto "forumcore/pkg/dto"
	"forumcore/pkg/sanitizer"

	"github.com/google/uuid"
)

type PostService interface {
	GetPosts(ctx context.Context, viewerID, threadID uuid.UUID, filter postDto.PostFilter) (*postDto.PaginatedPostResponse, error)
	GetPost(ctx context.Context, id uuid.UUID) (*entity.Post, error)
	CreatePost(ctx context.Context, actorID uuid.UUID, req postDto.CreatePostRequest) (*entity.Post, error)
	UpdatePostContent(ctx context.Context, id uuid.UUID, content string) (*entity.Post, error)
	UpdatePromptingPost(ctx context.Context, id uuid.UUID, promptingPostID *uuid.UUID) (*entity.Post, error)
	DestroyPost(ctx context.Context, id uuid.UUID) (bool, error)
}

type postService struct {
	postRepo   postRepo.PostRepository
	threadRepo threadRepo.ThreadRepository
	decorator  *decorator.PostDecorator
	sanitizer  sanitizer.Sanitizer
	cache      cache.QueryCache
	pageSize   int
}

func NewPostService(posts postRepo.PostRepository, threads threadRepo.ThreadRepository, postDecorator *decorator.PostDecorator, clean sanitizer.Sanitizer, queryCache cache.QueryCache, pageSize int) PostService {
	return &postService{
		postRepo:   posts,
		threadRepo: threads,
		decorator:  postDecorator,
		sanitizer:  clean,
		cache:      queryCache,
		pageSize:   pageSize,
	}
}

func (s *postService) GetPosts(ctx context.Context, viewerID, threadID uuid.UUID, filter postDto.PostFilter) (*postDto.PaginatedPostResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = s.pageSize
	}

	posts, err := s.postRepo.FindAllDecorated(ctx, viewerID, threadID, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}

	if err := s.decorator.Decorate(ctx, posts); err != nil {
		return nil, err
	}

	total, err := s.postRepo.CountByThread(ctx, threadID)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	return &postDto.PaginatedPostResponse{
		Data: posts,
		Meta: commonDto.PaginationMeta{
			CurrentPage: filter.Page,
			TotalPages:  totalPages,
			TotalItems:  total,
			Limit:       filter.Limit,
		},
	}, nil
}

func (s *postService) GetPost(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	return s.postRepo.FindByID(ctx, id)
}

func (s *postService) CreatePost(ctx context.Context, actorID uuid.UUID, req postDto.CreatePostRequest) (*entity.Post, error) {
	content := s.sanitizer.Clean(req.Content)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("post content must not be empty: %w", apperror.ErrValidation)
	}

	threadID, err := uuid.Parse(req.ThreadID)
	if err != nil {
		return nil, fmt.Errorf("invalid thread id: %w", apperror.ErrValidation)
	}

	thread, err := s.threadRepo.FindByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, fmt.Errorf("thread not found: %w", apperror.ErrValidation)
	}

	var promptingPostID *uuid.UUID
	if req.PromptingPostID != "" {
		pid, err := uuid.Parse(req.PromptingPostID)
		if err != nil {
			return nil, fmt.Errorf("invalid prompting post id: %w", apperror.ErrValidation)
		}
		prompting, err := s.postRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, err
		}
		if prompting == nil || prompting.ThreadID != threadID {
			return nil, fmt.Errorf("prompting post must belong to the same thread: %w", apperror.ErrValidation)
		}
		promptingPostID = &pid
	}

	post := &entity.Post{
		ThreadID:        threadID,
		AuthorID:        actorID,
		Content:         content,
		PromptingPostID: promptingPostID,
		State:           entity.StatePublished,
		PublishedOn:     time.Now().UTC(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	// A new post moves the thread's derived last-post columns, so the thread
	// listings go stale too.
	if err := s.cache.Invalidate(ctx, entity.TablePosts, entity.TableThreads); err != nil {
		return nil, err
	}

	return post, nil
}

// UpdatePostContent replaces a post's content. A missing or deleted id is a
// silent miss: nil post, nil error.
func (s *postService) UpdatePostContent(ctx context.Context, id uuid.UUID, content string) (*entity.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, nil
	}

	now := time.Now().UTC()
	post.Content = s.sanitizer.Clean(content)
	post.EditedOn = &now

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, entity.TablePosts); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) UpdatePromptingPost(ctx context.Context, id uuid.UUID, promptingPostID *uuid.UUID) (*entity.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, nil
	}

	if promptingPostID != nil {
		prompting, err := s.postRepo.FindByID(ctx, *promptingPostID)
		if err != nil {
			return nil, err
		}
		if prompting == nil || prompting.ThreadID != post.ThreadID {
			return nil, fmt.Errorf("prompting post must belong to the same thread: %w", apperror.ErrValidation)
		}
	}

	now := time.Now().UTC()
	post.PromptingPostID = promptingPostID
	post.EditedOn = &now

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, entity.TablePosts); err != nil {
		return nil, err
	}
	return post, nil
}

// DestroyPost soft-deletes a post. Returns false without error when the id
// does not match a live post. Thread caches invalidate as well because the
// deleted post may have been the thread's latest.
func (s *postService) DestroyPost(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.postRepo.SoftDelete(ctx, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}

	if err := s.cache.Invalidate(ctx, entity.TablePosts, entity.TableThreads); err != nil {
		return false, err
	}
	return true, nil
}
