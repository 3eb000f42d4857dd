package repository

import (
	"context"
	"time"

	"forumcore/internal/cache"
	"forumcore/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChunkSize bounds memory during full-table scans (search index rebuilds).
const ChunkSize = 100

// Filter narrows a decorated thread listing. Followed is tri-state: nil means
// no follow filtering, true/false select threads the viewer does or does not
// follow.
type Filter struct {
	CategoryIDs []uuid.UUID
	Pinned      bool
	Followed    *bool
	Page        int
	PageSize    int
}

type ThreadRepository interface {
	FindAllDecorated(ctx context.Context, viewerID uuid.UUID, f Filter) ([]entity.DecoratedThread, error)
	CountAll(ctx context.Context, viewerID uuid.UUID, f Filter) (int64, error)
	FindDecoratedByIDs(ctx context.Context, viewerID uuid.UUID, ids []uuid.UUID) ([]entity.DecoratedThread, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Thread, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Thread, error)
	Create(ctx context.Context, thread *entity.Thread) error
	Update(ctx context.Context, thread *entity.Thread) error
	UpdateState(ctx context.Context, id uuid.UUID, state string) (bool, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	UpsertRead(ctx context.Context, threadID, readerID uuid.UUID, readOn time.Time) error
	Follow(ctx context.Context, threadID, followerID uuid.UUID) error
	Unfollow(ctx context.Context, threadID, followerID uuid.UUID) (int64, error)
	EachBatch(ctx context.Context, batchSize int, fn func(threads []entity.Thread) error) error
}

type threadRepository struct {
	db    *gorm.DB
	cache cache.QueryCache
}

func NewThreadRepository(db *gorm.DB, queryCache cache.QueryCache) ThreadRepository {
	return &threadRepository{db: db, cache: queryCache}
}

func (r *threadRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Thread, error) {
	// Find with a slice avoids gorm's "record not found" noise; a missing id
	// is a nil result, not an error.
	var threads []entity.Thread
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		Limit(1).
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	if len(threads) == 0 {
		return nil, nil
	}
	return &threads[0], nil
}

func (r *threadRepository) FindBySlug(ctx context.Context, slug string) (*entity.Thread, error) {
	var threads []entity.Thread
	err := r.db.WithContext(ctx).
		Where("slug = ? AND deleted_at IS NULL", slug).
		Limit(1).
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	if len(threads) == 0 {
		return nil, nil
	}
	return &threads[0], nil
}

func (r *threadRepository) Create(ctx context.Context, thread *entity.Thread) error {
	return r.db.WithContext(ctx).Create(thread).Error
}

func (r *threadRepository) Update(ctx context.Context, thread *entity.Thread) error {
	return r.db.WithContext(ctx).Save(thread).Error
}

func (r *threadRepository) UpdateState(ctx context.Context, id uuid.UUID, state string) (bool, error) {
	res := r.db.WithContext(ctx).
		Table(entity.TableThreads).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]any{"state": state, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *threadRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	return entity.SoftDelete(ctx, r.db, entity.TableThreads, id)
}

func (r *threadRepository) UpsertRead(ctx context.Context, threadID, readerID uuid.UUID, readOn time.Time) error {
	read := entity.ThreadRead{
		ThreadID: threadID,
		ReaderID: readerID,
		ReadOn:   readOn,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "thread_id"}, {Name: "reader_id"}},
			DoUpdates: clause.Assignments(map[string]any{"read_on": readOn}),
		}).
		Create(&read).Error
}

func (r *threadRepository) Follow(ctx context.Context, threadID, followerID uuid.UUID) error {
	var existing []entity.ThreadFollow
	err := r.db.WithContext(ctx).
		Where("thread_id = ? AND follower_id = ?", threadID, followerID).
		Limit(1).
		Find(&existing).Error
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	follow := entity.ThreadFollow{
		ThreadID:   threadID,
		FollowerID: followerID,
	}
	return r.db.WithContext(ctx).Create(&follow).Error
}

func (r *threadRepository) Unfollow(ctx context.Context, threadID, followerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("thread_id = ? AND follower_id = ?", threadID, followerID).
		Delete(&entity.ThreadFollow{})
	return res.RowsAffected, res.Error
}

// EachBatch scans all live threads ordered by id ascending and hands them to
// fn in batches. The stable ordering guarantees no row is skipped or
// duplicated across the underlying round trips.
func (r *threadRepository) EachBatch(ctx context.Context, batchSize int, fn func(threads []entity.Thread) error) error {
	var batch []entity.Thread
	res := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order(entity.TableThreads + ".id ASC").
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		})
	return res.Error
}
