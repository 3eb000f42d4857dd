package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"forumcore/internal/cache"
	"forumcore/internal/decorator"
	"forumcore/internal/entity"
	"forumcore/internal/event"
	categoryRepo "forumcore/internal/modules/category/repository"
	postRepo "forumcore/internal/modules/post/repository"
	searchService "forumcore/internal/modules/search/service"
	"forumcore/internal/modules/thread/dto"
	"forumcore/internal/modules/thread/repository"
	"forumcore/pkg/apperror"
	commonDto "forumcore/pkg/dto"
	"forumcore/pkg/sanitizer"

	"github.com/google/uuid"
)

type ThreadService interface {
	GetThreads(ctx context.Context, viewerID uuid.UUID, filter dto.ThreadFilter) (*dto.PaginatedThreadResponse, error)
	GetThread(ctx context.Context, viewerID, threadID uuid.UUID) (*entity.DecoratedThread, error)
	CreateThread(ctx context.Context, actorID uuid.UUID, req dto.CreateThreadRequest) (*entity.Thread, error)
	UpdateThread(ctx context.Context, actorID, threadID uuid.UUID, req dto.UpdateThreadRequest) (*entity.Thread, error)
	SetState(ctx context.Context, actorID, threadID uuid.UUID, state string) (bool, error)
	DestroyThread(ctx context.Context, actorID, threadID uuid.UUID) (bool, error)
	MarkRead(ctx context.Context, threadID, readerID uuid.UUID, readOn *time.Time) error
	Follow(ctx context.Context, threadID, followerID uuid.UUID) error
	Unfollow(ctx context.Context, threadID, followerID uuid.UUID) error
}

type service struct {
	threadRepo   repository.ThreadRepository
	categoryRepo categoryRepo.CategoryRepository
	postRepo     postRepo.PostRepository
	decorator    *decorator.ThreadDecorator
	sanitizer    sanitizer.Sanitizer
	cache        cache.QueryCache
	events       event.Publisher
	meili        searchService.MeiliService
	indexer      searchService.IndexerService
	pageSize     int
}

func NewThreadService(
	threads repository.ThreadRepository,
	categories categoryRepo.CategoryRepository,
	posts postRepo.PostRepository,
	threadDecorator *decorator.ThreadDecorator,
	clean sanitizer.Sanitizer,
	queryCache cache.QueryCache,
	events event.Publisher,
	meili searchService.MeiliService,
	indexer searchService.IndexerService,
	pageSize int,
) ThreadService {
	return &service{
		threadRepo:   threads,
		categoryRepo: categories,
		postRepo:     posts,
		decorator:    threadDecorator,
		sanitizer:    clean,
		cache:        queryCache,
		events:       events,
		meili:        meili,
		indexer:      indexer,
		pageSize:     pageSize,
	}
}

func (s *service) GetThreads(ctx context.Context, viewerID uuid.UUID, filter dto.ThreadFilter) (*dto.PaginatedThreadResponse, error) {
	categoryIDs, err := parseCategoryIDs(filter.CategoryIDs)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperror.ErrBadRequest)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = s.pageSize
	}

	f := repository.Filter{
		CategoryIDs: categoryIDs,
		Pinned:      filter.Pinned,
		Followed:    filter.Followed,
		Page:        filter.Page,
		PageSize:    filter.Limit,
	}

	threads, err := s.threadRepo.FindAllDecorated(ctx, viewerID, f)
	if err != nil {
		return nil, err
	}
	if err := s.decorator.Decorate(ctx, threads); err != nil {
		return nil, err
	}

	total, err := s.threadRepo.CountAll(ctx, viewerID, f)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	return &dto.PaginatedThreadResponse{
		Data: threads,
		Meta: commonDto.PaginationMeta{
			CurrentPage: filter.Page,
			TotalPages:  totalPages,
			TotalItems:  total,
			Limit:       filter.Limit,
		},
	}, nil
}

func (s *service) GetThread(ctx context.Context, viewerID, threadID uuid.UUID) (*entity.DecoratedThread, error) {
	threads, err := s.threadRepo.FindDecoratedByIDs(ctx, viewerID, []uuid.UUID{threadID})
	if err != nil {
		return nil, err
	}
	if len(threads) == 0 {
		return nil, fmt.Errorf("thread not found: %w", apperror.ErrNotFound)
	}
	if err := s.decorator.Decorate(ctx, threads); err != nil {
		return nil, err
	}
	return &threads[0], nil
}

// CreateThread creates a thread together with its seed post. The seed post
// carries the thread's opening content; a thread never exists without one.
func (s *service) CreateThread(ctx context.Context, actorID uuid.UUID, req dto.CreateThreadRequest) (*entity.Thread, error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("invalid category id format: %w", apperror.ErrBadRequest)
	}

	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("invalid category id: %w", apperror.ErrBadRequest)
	}

	content := s.sanitizer.Clean(req.FirstPost)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("first post must not be empty: %w", apperror.ErrValidation)
	}

	slug := s.generateUniqueSlug(ctx, req.Title)

	thread := &entity.Thread{
		CategoryID: categoryID,
		AuthorID:   actorID,
		Title:      req.Title,
		Slug:       slug,
		State:      entity.StatePublished,
		Pinned:     req.Pinned,
	}
	if err := s.threadRepo.Create(ctx, thread); err != nil {
		return nil, err
	}

	seed := &entity.Post{
		ThreadID:    thread.ID,
		AuthorID:    actorID,
		Content:     content,
		State:       entity.StatePublished,
		PublishedOn: time.Now().UTC(),
	}
	if err := s.postRepo.Create(ctx, seed); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, entity.TableThreads, entity.TablePosts); err != nil {
		return nil, err
	}

	s.events.Publish(event.ThreadCreated{ThreadID: thread.ID, ActorID: actorID})
	s.syncSearch(ctx, actorID, thread.ID)

	return thread, nil
}

// UpdateThread retitles a thread. The slug stays stable so existing links
// keep resolving. A missing id is a silent miss: nil thread, nil error.
func (s *service) UpdateThread(ctx context.Context, actorID, threadID uuid.UUID, req dto.UpdateThreadRequest) (*entity.Thread, error) {
	thread, err := s.threadRepo.FindByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, nil
	}

	thread.Title = req.Title
	if err := s.threadRepo.Update(ctx, thread); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, entity.TableThreads); err != nil {
		return nil, err
	}

	s.events.Publish(event.ThreadUpdated{ThreadID: thread.ID, ActorID: actorID})
	s.syncSearch(ctx, actorID, thread.ID)

	return thread, nil
}

// SetState moves a thread between published, draft and hidden. Any
// transition between the three is allowed. Returns false when the id does
// not match a live thread.
func (s *service) SetState(ctx context.Context, actorID, threadID uuid.UUID, state string) (bool, error) {
	updated, err := s.threadRepo.UpdateState(ctx, threadID, state)
	if err != nil {
		return false, err
	}
	if !updated {
		return false, nil
	}

	if err := s.cache.Invalidate(ctx, entity.TableThreads); err != nil {
		return false, err
	}

	s.events.Publish(event.ThreadUpdated{ThreadID: threadID, ActorID: actorID})
	if state == entity.StatePublished {
		s.syncSearch(ctx, actorID, threadID)
	} else {
		s.dropFromSearch(ctx, threadID)
	}
	return true, nil
}

func (s *service) DestroyThread(ctx context.Context, actorID, threadID uuid.UUID) (bool, error) {
	deleted, err := s.threadRepo.SoftDelete(ctx, threadID)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}

	if err := s.cache.Invalidate(ctx, entity.TableThreads, entity.TablePosts); err != nil {
		return false, err
	}

	s.events.Publish(event.ThreadDeleted{ThreadID: threadID, ActorID: actorID})
	s.dropFromSearch(ctx, threadID)
	return true, nil
}

// MarkRead records that the reader has seen the thread up to readOn. The
// second mark for the same reader and thread overwrites the first; there is
// never more than one row per pair.
func (s *service) MarkRead(ctx context.Context, threadID, readerID uuid.UUID, readOn *time.Time) error {
	thread, err := s.threadRepo.FindByID(ctx, threadID)
	if err != nil {
		return err
	}
	if thread == nil {
		return fmt.Errorf("thread not found: %w", apperror.ErrNotFound)
	}

	at := time.Now().UTC()
	if readOn != nil {
		at = readOn.UTC()
	}
	if err := s.threadRepo.UpsertRead(ctx, threadID, readerID, at); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, entity.TableThreads)
}

func (s *service) Follow(ctx context.Context, threadID, followerID uuid.UUID) error {
	thread, err := s.threadRepo.FindByID(ctx, threadID)
	if err != nil {
		return err
	}
	if thread == nil {
		return fmt.Errorf("thread not found: %w", apperror.ErrNotFound)
	}

	if err := s.threadRepo.Follow(ctx, threadID, followerID); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, entity.TableThreads)
}

// Unfollow is a no-op when the follow row does not exist.
func (s *service) Unfollow(ctx context.Context, threadID, followerID uuid.UUID) error {
	deleted, err := s.threadRepo.Unfollow(ctx, threadID, followerID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return nil
	}
	return s.cache.Invalidate(ctx, entity.TableThreads)
}

// syncSearch pushes the decorated thread to the search engine. Best effort,
// the database stays the source of truth.
func (s *service) syncSearch(ctx context.Context, viewerID, threadID uuid.UUID) {
	if s.meili == nil {
		return
	}
	threads, err := s.threadRepo.FindDecoratedByIDs(ctx, viewerID, []uuid.UUID{threadID})
	if err != nil || len(threads) == 0 {
		return
	}
	if err := s.decorator.Decorate(ctx, threads); err != nil {
		log.Printf("Failed to decorate thread %s for indexing: %v", threadID, err)
		return
	}
	if err := s.meili.IndexThread(threads[0]); err != nil {
		log.Printf("Failed to index thread: %v", err)
	}
}

// dropFromSearch removes the thread from both the search engine and the
// relational index. Best effort, like syncSearch.
func (s *service) dropFromSearch(ctx context.Context, threadID uuid.UUID) {
	if s.meili != nil {
		if err := s.meili.DeleteThread(threadID.String()); err != nil {
			log.Printf("Failed to remove thread %s from search engine: %v", threadID, err)
		}
	}
	if s.indexer != nil {
		if _, err := s.indexer.RemoveThread(ctx, threadID); err != nil {
			log.Printf("Failed to remove thread %s from search index: %v", threadID, err)
		}
	}
}
