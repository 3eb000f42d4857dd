package repository

import (
	"context"
	"testing"
	"time"

	"forumcore/internal/cache"
	"forumcore/internal/entity"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A single connection keeps the in-memory database alive for the whole
	// test.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(
		&entity.Category{},
		&entity.Thread{},
		&entity.Post{},
		&entity.ThreadRead{},
		&entity.ThreadFollow{},
		&entity.PostLike{},
		&entity.SearchIndex{},
		&entity.UserSignature{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedCategory(t *testing.T, db *gorm.DB) *entity.Category {
	t.Helper()
	cat := &entity.Category{Title: "General", Slug: "general"}
	if err := db.Create(cat).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	return cat
}

func seedThread(t *testing.T, db *gorm.DB, categoryID, authorID uuid.UUID, createdAt time.Time) *entity.Thread {
	t.Helper()
	th := &entity.Thread{
		CategoryID: categoryID,
		AuthorID:   authorID,
		Title:      "thread",
		State:      entity.StatePublished,
		CreatedAt:  createdAt,
	}
	if err := db.Create(th).Error; err != nil {
		t.Fatalf("failed to seed thread: %v", err)
	}
	return th
}

func seedPost(t *testing.T, db *gorm.DB, threadID, authorID uuid.UUID, publishedOn time.Time) *entity.Post {
	t.Helper()
	p := &entity.Post{
		ThreadID:    threadID,
		AuthorID:    authorID,
		Content:     "content",
		State:       entity.StatePublished,
		PublishedOn: publishedOn,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	return p
}

func TestFindAllDecoratedDerivedColumns(t *testing.T) {
	db := setupDB(t)
	repo := NewThreadRepository(db, cache.NewMemoryCache())
	ctx := context.Background()

	cat := seedCategory(t, db)
	author := uuid.New()
	replier := uuid.New()
	viewer := uuid.New()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	active := seedThread(t, db, cat.ID, author, base)
	_ = seedThread(t, db, cat.ID, author, base.Add(time.Minute))

	seedPost(t, db, active.ID, author, base.Add(1*time.Hour))
	p2 := seedPost(t, db, active.ID, replier, base.Add(2*time.Hour))
	deleted := seedPost(t, db, active.ID, replier, base.Add(3*time.Hour))
	if _, err := entity.SoftDelete(ctx, db, entity.TablePosts, deleted.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	threads, err := repo.FindAllDecorated(ctx, viewer, Filter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("FindAllDecorated: %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(threads))
	}

	// Post activity outranks creation time, so the active thread leads even
	// though the quiet one is newer.
	if threads[0].ID != active.ID {
		t.Fatalf("expected active thread first, got %v", threads[0].ID)
	}

	got := threads[0]
	if got.PostCount != 2 {
		t.Errorf("post_count = %d, want 2 (deleted post excluded)", got.PostCount)
	}
	if got.LastPostID == nil || *got.LastPostID != p2.ID {
		t.Errorf("last_post_id = %v, want %v", got.LastPostID, p2.ID)
	}
	if got.LastPostUserID == nil || *got.LastPostUserID != replier {
		t.Errorf("last_post_user_id = %v, want %v", got.LastPostUserID, replier)
	}
	if got.LastPostPublishedOn == nil || !got.LastPostPublishedOn.Equal(base.Add(2*time.Hour)) {
		t.Errorf("last_post_published_on = %v, want %v", got.LastPostPublishedOn, base.Add(2*time.Hour))
	}
	if got.IsRead || got.IsFollowed {
		t.Errorf("expected unread and unfollowed for a fresh viewer, got %+v", got)
	}

	postless := threads[1]
	if postless.PostCount != 0 {
		t.Errorf("post_count = %d, want 0", postless.PostCount)
	}
	if postless.LastPostID != nil {
		t.Errorf("expected nil last_post_id for postless thread, got %v", postless.LastPostID)
	}
}

func TestFindAllDecoratedExcludesDeletedAndNonPublished(t *testing.T) {
	db := setupDB(t)
	repo := NewThreadRepository(db, cache.NewMemoryCache())
	ctx := context.Background()

	cat := seedCategory(t, db)
	author := uuid.New()
	now := time.Now().UTC()

	visible := seedThread(t, db, cat.ID, author, now)

	draft := seedThread(t, db, cat.ID, author, now)
	if err := db.Model(&entity.Thread{}).Where("id = ?", draft.ID).Update("state", entity.StateDraft).Error; err != nil {
		t.Fatal(err)
	}
	hidden := seedThread(t, db, cat.ID, author, now)
	if err := db.Model(&entity.Thread{}).Where("id = ?", hidden.ID).Update("state", entity.StateHidden).Error; err != nil {
		t.Fatal(err)
	}
	gone := seedThread(t, db, cat.ID, author, now)
	if _, err := repo.SoftDelete(ctx, gone.ID); err != nil {
		t.Fatal(err)
	}

	threads, err := repo.FindAllDecorated(ctx, uuid.New(), Filter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("FindAllDecorated: %v", err)
	}
	if len(threads) != 1 || threads[0].ID != visible.ID {
		t.Fatalf("expected only the published thread, got %d rows", len(threads))
	}

	count, err := repo.CountAll(ctx, uuid.New(), Filter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestFindAllDecoratedPaginationBoundary(t *testing.T) {
	db := setupDB(t)
	repo := NewThreadRepository(db, cache.NewMemoryCache())
	ctx := context.Background()

	cat := seedCategory(t, db)
	author := uuid.New()
	viewer := uuid.New()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		seedThread(t, db, cat.ID, author, base.Add(time.Duration(i)*time.Minute))
	}

	seen := make(map[uuid.UUID]bool)
	sizes := []int{5, 5, 2}
	for page := 1; page <= 3; page++ {
		threads, err := repo.FindAllDecorated(ctx, viewer, Filter{Page: page, PageSize: 5})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if len(threads) != sizes[page-1] {
			t.Fatalf("page %d: got %d rows, want %d", page, len(threads), sizes[page-1])
		}
		for _, th := range threads {
			if seen[th.ID] {
				t.Fatalf("thread %v appeared on two pages", th.ID)
			}
			seen[th.ID] = true
		}
	}
	if len(seen) != 12 {
		t.Fatalf("expected 12 distinct threads across pages, got %d", len(seen))
	}

	empty, err := repo.FindAllDecorated(ctx, viewer, Filter{Page: 4, PageSize: 5})
	if err != nil {
		t.Fatalf("page 4: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page past the end, got %d rows", len(empty))
	}
}

func TestIsReadTracksLatestPost(t *testing.T) {
	db := setupDB(t)
	memCache := cache.NewMemoryCache()
	repo := NewThreadRepository(db, memCache)
	ctx := context.Background()

	cat := seedCategory(t, db)
	author := uuid.New()
	viewer := uuid.New()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	th := seedThread(t, db, cat.ID, author, base)
	seedPost(t, db, th.ID, author, base.Add(time.Hour))

	// Marker older than the latest post: still unread.
	if err := repo.UpsertRead(ctx, th.ID, viewer, base.Add(30*time.Minute)); err != nil {
		t.Fatalf("UpsertRead: %v", err)
	}
	threads, err := repo.FindAllDecorated(ctx, viewer, Filter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if threads[0].IsRead {
		t.Fatal("expected unread when marker predates the latest post")
	}

	// Re-mark at the latest post; the upsert overwrites the old marker.
	if err := repo.UpsertRead(ctx, th.ID, viewer, base.Add(time.Hour)); err != nil {
		t.Fatalf("UpsertRead: %v", err)
	}
	if err := memCache.Invalidate(ctx, entity.TableThreads); err != nil {
		t.Fatal(err)
	}
	threads, err = repo.FindAllDecorated(ctx, viewer, Filter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if !threads[0].IsRead {
		t.Fatal("expected read after marking at the latest post")
	}

	var reads []entity.ThreadRead
	if err := db.Where("thread_id = ? AND reader_id = ?", th.ID, viewer).Find(&reads).Error; err != nil {
		t.Fatal(err)
	}
	if len(reads) != 1 {
		t.Fatalf("expected a single read row per reader, got %d", len(reads))
	}

	// A newer reply flips the thread back to unread.
	seedPost(t, db, th.ID, author, base.Add(2*time.Hour))
	if err := memCache.Invalidate(ctx, entity.TableThreads); err != nil {
		t.Fatal(err)
	}
	threads, err = repo.FindAllDecorated(ctx, viewer, Filter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if threads[0].IsRead {
		t.Fatal("expected unread after a newer reply")
	}
}

func TestFollowedFilter(t *testing.T) {
	db := setupDB(t)
	memCache := cache.NewMemoryCache()
	repo := NewThreadRepository(db, memCache)
	ctx := context.Background()

	cat := seedCategory(t, db)
	author := uuid.New()
	viewer := uuid.New()
	now := time.Now().UTC()

	followed := seedThread(t, db, cat.ID, author, now)
	other := seedThread(t, db, cat.ID, author, now.Add(time.Minute))

	if err := repo.Follow(ctx, followed.ID, viewer); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	// Following twice never creates a second row.
	if err := repo.Follow(ctx, followed.ID, viewer); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	var follows []entity.ThreadFollow
	if err := db.Where("thread_id = ?", followed.ID).Find(&follows).Error; err != nil {
		t.Fatal(err)
	}
	if len(follows) != 1 {
		t.Fatalf("expected 1 follow row, got %d", len(follows))
	}

	yes, no := true, false
	onlyFollowed, err := repo.FindAllDecorated(ctx, viewer, Filter{Followed: &yes, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(onlyFollowed) != 1 || onlyFollowed[0].ID != followed.ID {
		t.Fatalf("followed=true: got %d rows", len(onlyFollowed))
	}
	if !onlyFollowed[0].IsFollowed {
		t.Fatal("expected is_followed on the followed thread")
	}

	notFollowed, err := repo.FindAllDecorated(ctx, viewer, Filter{Followed: &no, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(notFollowed) != 1 || notFollowed[0].ID != other.ID {
		t.Fatalf("followed=false: got %d rows", len(notFollowed))
	}

	deleted, err := repo.Unfollow(ctx, followed.ID, viewer)
	if err != nil {
		t.Fatalf("Unfollow: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted follow, got %d", deleted)
	}
	deleted, err = repo.Unfollow(ctx, followed.ID, viewer)
	if err != nil {
		t.Fatalf("Unfollow again: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected no-op second unfollow, got %d", deleted)
	}
}

func TestLastPostPicksNewestReply(t *testing.T) {
	db := setupDB(t)
	repo := NewThreadRepository(db, cache.NewMemoryCache())
	ctx := context.Background()

	cat := seedCategory(t, db)
	author := uuid.New()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	th := seedThread(t, db, cat.ID, author, base)
	seedPost(t, db, th.ID, author, base.Add(time.Hour))
	p2 := seedPost(t, db, th.ID, uuid.New(), base.Add(2*time.Hour))

	threads, err := repo.FindDecoratedByIDs(ctx, uuid.New(), []uuid.UUID{th.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(threads) != 1 {
		t.Fatalf("expected 1 thread, got %d", len(threads))
	}
	if threads[0].LastPostID == nil || *threads[0].LastPostID != p2.ID {
		t.Fatalf("last_post_id = %v, want %v", threads[0].LastPostID, p2.ID)
	}

	// Equal timestamps break by post id; v7 ids order by creation, so the
	// later insert wins.
	p3 := seedPost(t, db, th.ID, uuid.New(), base.Add(2*time.Hour))
	threads, err = repo.FindDecoratedByIDs(ctx, uuid.New(), []uuid.UUID{th.ID})
	if err != nil {
		t.Fatal(err)
	}
	if threads[0].LastPostID == nil || *threads[0].LastPostID != p3.ID {
		t.Fatalf("tie break: last_post_id = %v, want %v", threads[0].LastPostID, p3.ID)
	}
}

func TestEachBatchCoversAllRows(t *testing.T) {
	db := setupDB(t)
	repo := NewThreadRepository(db, cache.NewMemoryCache())
	ctx := context.Background()

	cat := seedCategory(t, db)
	author := uuid.New()
	now := time.Now().UTC()
	for i := 0; i < 7; i++ {
		seedThread(t, db, cat.ID, author, now)
	}

	seen := make(map[uuid.UUID]bool)
	batches := 0
	err := repo.EachBatch(ctx, 3, func(threads []entity.Thread) error {
		batches++
		for _, th := range threads {
			if seen[th.ID] {
				t.Fatalf("thread %v delivered twice", th.ID)
			}
			seen[th.ID] = true
		}
		return nil
	})
	if err != nil {
		t.Fatalf("EachBatch: %v", err)
	}
	if len(seen) != 7 {
		t.Fatalf("expected 7 threads across batches, got %d", len(seen))
	}
	if batches != 3 {
		t.Fatalf("expected 3 batches of size 3, got %d", batches)
	}
}

func TestCountAllCachedOnceAcrossPages(t *testing.T) {
	db := setupDB(t)
	memCache := cache.NewMemoryCache()
	repo := NewThreadRepository(db, memCache)
	ctx := context.Background()

	cat := seedCategory(t, db)
	author := uuid.New()
	viewer := uuid.New()
	now := time.Now().UTC()
	for i := 0; i < 12; i++ {
		seedThread(t, db, cat.ID, author, now)
	}

	count, err := repo.CountAll(ctx, viewer, Filter{Page: 1, PageSize: 5})
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if count != 12 {
		t.Fatalf("expected 12, got %d", count)
	}

	// The count ignores pagination, so a page-2 visit hits the same cache
	// entry: a row added without invalidation is not observed yet.
	seedThread(t, db, cat.ID, author, now)
	count, err = repo.CountAll(ctx, viewer, Filter{Page: 2, PageSize: 5})
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if count != 12 {
		t.Fatalf("expected cached count 12 across pages, got %d", count)
	}

	if err := memCache.Invalidate(ctx, entity.TableThreads); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	count, err = repo.CountAll(ctx, viewer, Filter{Page: 3, PageSize: 5})
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if count != 13 {
		t.Fatalf("expected fresh count 13 after invalidation, got %d", count)
	}
}
