package repository

import (
	"context"
	"strconv"

	"forumcore/internal/cache"
	"forumcore/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostRepository interface {
	FindAllDecorated(ctx context.Context, viewerID, threadID uuid.UUID, page, pageSize int) ([]entity.DecoratedPost, error)
	CountByThread(ctx context.Context, threadID uuid.UUID) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error)
	Create(ctx context.Context, post *entity.Post) error
	Update(ctx context.Context, post *entity.Post) error
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
}

type postRepository struct {
	db    *gorm.DB
	cache cache.QueryCache
}

func NewPostRepository(db *gorm.DB, queryCache cache.QueryCache) PostRepository {
	return &postRepository{db: db, cache: queryCache}
}

// FindAllDecorated returns one page of a thread's published posts in reading
// order, with the viewer-scoped like columns attached by correlated
// subqueries.
func (r *postRepository) FindAllDecorated(ctx context.Context, viewerID, threadID uuid.UUID, page, pageSize int) ([]entity.DecoratedPost, error) {
	if page < 1 {
		page = 1
	}

	sig := cache.Signature{
		Table:  entity.TablePosts,
		Viewer: viewerID.String(),
		Parts: []string{
			"list",
			"thread=" + threadID.String(),
			"page=" + strconv.Itoa(page),
			"size=" + strconv.Itoa(pageSize),
		},
	}

	p := entity.TablePosts
	sel := p + ".*, " +
		"(SELECT COUNT(*) FROM " + entity.TablePostLikes + " pl" +
		" WHERE pl.post_id = " + p + ".id) AS like_count, " +
		"EXISTS(SELECT 1 FROM " + entity.TablePostLikes + " pl" +
		" WHERE pl.post_id = " + p + ".id AND pl.liker_id = ?) AS is_liked_by_viewer"

	posts := []entity.DecoratedPost{}
	err := r.cache.Fetch(ctx, sig, &posts, func() error {
		return r.db.WithContext(ctx).
			Table(p).
			Select(sel, viewerID).
			Where(p+".thread_id = ?", threadID).
			Where(p+".deleted_at IS NULL").
			Where(p+".state IN ?", entity.AccessibleStates).
			Order(p + ".published_on ASC, " + p + ".id ASC").
			Limit(pageSize).
			Offset(pageSize * (page - 1)).
			Scan(&posts).Error
	})
	return posts, err
}

func (r *postRepository) CountByThread(ctx context.Context, threadID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table(entity.TablePosts).
		Where("thread_id = ? AND deleted_at IS NULL AND state IN ?", threadID, entity.AccessibleStates).
		Count(&count).Error
	return count, err
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	var posts []entity.Post
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		Limit(1).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0], nil
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) Update(ctx context.Context, post *entity.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	return entity.SoftDelete(ctx, r.db, entity.TablePosts, id)
}
