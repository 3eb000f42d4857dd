package repository

import (
	"context"
	"strconv"
	"strings"

	"forumcore/internal/cache"
	"forumcore/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// The decorated listing is one query: the thread columns plus five derived
// scalar columns, each computed by a correlated subquery against the post,
// read and follow tables. The single-row last-post subqueries share the same
// ORDER BY ... LIMIT 1 shape so they always describe the same post.

// lastPostColumn builds a correlated scalar subquery selecting one column of
// the thread's most recent non-deleted post. Ties on published_on break by
// post id descending, which keeps the result deterministic.
func lastPostColumn(col string) string {
	return "(SELECT p." + col + " FROM " + entity.TablePosts + " p" +
		" WHERE p.thread_id = " + entity.TableThreads + ".id" +
		" AND p.deleted_at IS NULL" +
		" ORDER BY p.published_on DESC, p.id DESC LIMIT 1)"
}

// listOrder sorts by last post activity, newest first. Threads without posts
// fall back to their creation time so the ordering stays total across
// databases; id descending breaks exact timestamp ties.
func listOrder() string {
	return "COALESCE(" + lastPostColumn("published_on") + ", " +
		entity.TableThreads + ".created_at) DESC, " + entity.TableThreads + ".id DESC"
}

func (r *threadRepository) decoratedQuery(ctx context.Context, viewerID uuid.UUID) *gorm.DB {
	t := entity.TableThreads

	sel := t + ".*, " +
		"(SELECT COUNT(*) FROM " + entity.TablePosts + " p" +
		" WHERE p.thread_id = " + t + ".id AND p.deleted_at IS NULL) AS post_count, " +
		lastPostColumn("published_on") + " AS last_post_published_on, " +
		lastPostColumn("id") + " AS last_post_id, " +
		lastPostColumn("author_id") + " AS last_post_user_id, " +
		// A thread is read when the viewer's read marker is at or past the
		// latest post; a marker alone is not enough once a newer reply lands.
		"EXISTS(SELECT 1 FROM " + entity.TableThreadReads + " tr" +
		" WHERE tr.thread_id = " + t + ".id AND tr.reader_id = ?" +
		" AND tr.read_on >= COALESCE(" + lastPostColumn("published_on") + ", " + t + ".created_at)) AS is_read, " +
		"EXISTS(SELECT 1 FROM " + entity.TableThreadFollows + " tf" +
		" WHERE tf.thread_id = " + t + ".id AND tf.follower_id = ?) AS is_followed"

	return r.db.WithContext(ctx).
		Table(t).
		Select(sel, viewerID, viewerID).
		Where(t+".deleted_at IS NULL").
		Where(t+".state IN ?", entity.AccessibleStates)
}

func applyFilter(q *gorm.DB, viewerID uuid.UUID, f Filter) *gorm.DB {
	t := entity.TableThreads

	if len(f.CategoryIDs) > 0 {
		q = q.Where(t+".category_id IN ?", f.CategoryIDs)
	}

	q = q.Where(t+".pinned = ?", f.Pinned)

	if f.Followed != nil {
		followsExist := "EXISTS(SELECT 1 FROM " + entity.TableThreadFollows + " ff" +
			" WHERE ff.thread_id = " + t + ".id AND ff.follower_id = ?)"
		if *f.Followed {
			q = q.Where(followsExist, viewerID)
		} else {
			q = q.Where("NOT "+followsExist, viewerID)
		}
	}

	return q
}

// signatureParts describes the filter alone. Pagination is appended only by
// the listing signature, so the count for a filter is cached once, not once
// per page visited.
func (f Filter) signatureParts(kind string) []string {
	cats := make([]string, len(f.CategoryIDs))
	for i, id := range f.CategoryIDs {
		cats[i] = id.String()
	}

	followed := "unset"
	if f.Followed != nil {
		followed = strconv.FormatBool(*f.Followed)
	}

	return []string{
		kind,
		"cats=" + strings.Join(cats, ","),
		"pinned=" + strconv.FormatBool(f.Pinned),
		"followed=" + followed,
	}
}

func (r *threadRepository) FindAllDecorated(ctx context.Context, viewerID uuid.UUID, f Filter) ([]entity.DecoratedThread, error) {
	if f.Page < 1 {
		f.Page = 1
	}

	sig := cache.Signature{
		Table:  entity.TableThreads,
		Viewer: viewerID.String(),
		Parts: append(f.signatureParts("list"),
			"page="+strconv.Itoa(f.Page),
			"size="+strconv.Itoa(f.PageSize)),
	}

	threads := []entity.DecoratedThread{}
	err := r.cache.Fetch(ctx, sig, &threads, func() error {
		q := applyFilter(r.decoratedQuery(ctx, viewerID), viewerID, f)
		return q.
			Order(listOrder()).
			Limit(f.PageSize).
			Offset(f.PageSize * (f.Page - 1)).
			Scan(&threads).Error
	})
	return threads, err
}

func (r *threadRepository) CountAll(ctx context.Context, viewerID uuid.UUID, f Filter) (int64, error) {
	sig := cache.Signature{
		Table:  entity.TableThreads,
		Viewer: viewerID.String(),
		Parts:  f.signatureParts("count"),
	}

	var count int64
	err := r.cache.Fetch(ctx, sig, &count, func() error {
		t := entity.TableThreads
		q := r.db.WithContext(ctx).
			Table(t).
			Where(t+".deleted_at IS NULL").
			Where(t+".state IN ?", entity.AccessibleStates)
		return applyFilter(q, viewerID, f).Count(&count).Error
	})
	return count, err
}

func (r *threadRepository) FindDecoratedByIDs(ctx context.Context, viewerID uuid.UUID, ids []uuid.UUID) ([]entity.DecoratedThread, error) {
	if len(ids) == 0 {
		return []entity.DecoratedThread{}, nil
	}

	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}
	sig := cache.Signature{
		Table:  entity.TableThreads,
		Viewer: viewerID.String(),
		Parts:  []string{"byids", strings.Join(idStrs, ",")},
	}

	threads := []entity.DecoratedThread{}
	err := r.cache.Fetch(ctx, sig, &threads, func() error {
		return r.decoratedQuery(ctx, viewerID).
			Where(entity.TableThreads+".id IN ?", ids).
			Order(listOrder()).
			Scan(&threads).Error
	})
	return threads, err
}
