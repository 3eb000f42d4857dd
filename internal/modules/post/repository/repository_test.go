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
		&entity.PostLike{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedThread(t *testing.T, db *gorm.DB) *entity.Thread {
	t.Helper()
	th := &entity.Thread{
		CategoryID: uuid.New(),
		AuthorID:   uuid.New(),
		Title:      "thread",
		State:      entity.StatePublished,
	}
	if err := db.Create(th).Error; err != nil {
		t.Fatalf("failed to seed thread: %v", err)
	}
	return th
}

func seedPost(t *testing.T, db *gorm.DB, threadID uuid.UUID, publishedOn time.Time) *entity.Post {
	t.Helper()
	p := &entity.Post{
		ThreadID:    threadID,
		AuthorID:    uuid.New(),
		Content:     "content",
		State:       entity.StatePublished,
		PublishedOn: publishedOn,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	return p
}

func seedLike(t *testing.T, db *gorm.DB, postID, likerID uuid.UUID) {
	t.Helper()
	like := &entity.PostLike{PostID: postID, LikerID: likerID, LikedOn: time.Now().UTC()}
	if err := db.Create(like).Error; err != nil {
		t.Fatalf("failed to seed like: %v", err)
	}
}

func TestFindAllDecoratedLikeColumns(t *testing.T) {
	db := setupDB(t)
	repo := NewPostRepository(db, cache.NewMemoryCache())
	ctx := context.Background()

	th := seedThread(t, db)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	viewer := uuid.New()

	p1 := seedPost(t, db, th.ID, base)
	p2 := seedPost(t, db, th.ID, base.Add(time.Hour))

	seedLike(t, db, p1.ID, viewer)
	seedLike(t, db, p1.ID, uuid.New())
	seedLike(t, db, p2.ID, uuid.New())

	posts, err := repo.FindAllDecorated(ctx, viewer, th.ID, 1, 10)
	if err != nil {
		t.Fatalf("FindAllDecorated: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}

	// Reading order: oldest first.
	if posts[0].ID != p1.ID || posts[1].ID != p2.ID {
		t.Fatalf("unexpected order: %v then %v", posts[0].ID, posts[1].ID)
	}

	if posts[0].LikeCount != 2 {
		t.Errorf("p1 like_count = %d, want 2", posts[0].LikeCount)
	}
	if !posts[0].IsLikedByViewer {
		t.Error("expected p1 liked by viewer")
	}
	if posts[1].LikeCount != 1 {
		t.Errorf("p2 like_count = %d, want 1", posts[1].LikeCount)
	}
	if posts[1].IsLikedByViewer {
		t.Error("expected p2 not liked by viewer")
	}
}

func TestFindAllDecoratedExcludesDeleted(t *testing.T) {
	db := setupDB(t)
	repo := NewPostRepository(db, cache.NewMemoryCache())
	ctx := context.Background()

	th := seedThread(t, db)
	base := time.Now().UTC()
	keep := seedPost(t, db, th.ID, base)
	gone := seedPost(t, db, th.ID, base.Add(time.Minute))

	if _, err := repo.SoftDelete(ctx, gone.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	posts, err := repo.FindAllDecorated(ctx, uuid.New(), th.ID, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 || posts[0].ID != keep.ID {
		t.Fatalf("expected only the live post, got %d rows", len(posts))
	}

	count, err := repo.CountByThread(ctx, th.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	// Soft-deleting twice reports no rows the second time.
	deleted, err := repo.SoftDelete(ctx, gone.ID)
	if err != nil {
		t.Fatal(err)
	}
	if deleted {
		t.Fatal("expected second soft delete to be a no-op")
	}
}

func TestFindByIDNilOnMiss(t *testing.T) {
	db := setupDB(t)
	repo := NewPostRepository(db, cache.NewMemoryCache())
	ctx := context.Background()

	post, err := repo.FindByID(ctx, uuid.New())
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if post != nil {
		t.Fatalf("expected nil for unknown id, got %+v", post)
	}
}
