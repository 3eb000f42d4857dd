package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Table names, one table per entity. Referenced by the query composer's
// correlated subqueries and by the cache layer's table-scoped invalidation.
const (
	TableCategories     = "forum_categories"
	TableThreads        = "forum_threads"
	TablePosts          = "forum_posts"
	TableThreadReads    = "forum_thread_reads"
	TableThreadFollows  = "forum_thread_follows"
	TablePostLikes      = "forum_post_likes"
	TableSearchIndexes  = "forum_search_indexes"
	TableUserSignatures = "forum_user_signatures"
)

// NotDeleted scopes a query to rows that have not been soft deleted.
func NotDeleted(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table + ".deleted_at IS NULL")
	}
}

// SoftDelete marks a single row as deleted by stamping deleted_at. It is the
// shared delete policy for every repository that keeps history: rows are never
// physically removed. Returns false when no live row matched the id.
func SoftDelete(ctx context.Context, db *gorm.DB, table string, id uuid.UUID) (bool, error) {
	res := db.WithContext(ctx).
		Table(table).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", time.Now().UTC())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
