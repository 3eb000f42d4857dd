package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"forumcore/internal/cache"
	"forumcore/internal/decorator"
	"forumcore/internal/entity"
	"forumcore/internal/identity"
	repo "forumcore/internal/modules/category/repository"
	"forumcore/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubProvider struct {
	names map[uuid.UUID]string
}

func (p stubProvider) GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return nil, nil
}

func (p stubProvider) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]identity.User, error) {
	out := make(map[uuid.UUID]identity.User)
	for _, id := range ids {
		if name, ok := p.names[id]; ok {
			out[id] = identity.User{ID: id, DisplayName: name}
		}
	}
	return out, nil
}

func (p stubProvider) GetUserAccessLevel(ctx context.Context, id uuid.UUID) (string, error) {
	return "", nil
}

func (p stubProvider) GetUsersAccessLevel(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return map[uuid.UUID]string{}, nil
}

func (p stubProvider) GetUsersXPAndRank(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]identity.XPRank, error) {
	return map[uuid.UUID]identity.XPRank{}, nil
}

func setupService(t *testing.T, provider identity.Provider) (CategoryService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&entity.Category{}, &entity.Thread{}, &entity.Post{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	memCache := cache.NewMemoryCache()
	categories := repo.NewCategoryRepository(db, memCache)
	categoryDecorator := decorator.NewCategoryDecorator(db, provider, "")
	return NewCategoryService(categories, categoryDecorator, memCache), db
}

func TestGetCategoriesOrderAndAggregates(t *testing.T) {
	author := uuid.New()
	svc, db := setupService(t, stubProvider{names: map[uuid.UUID]string{author: "Ada"}})
	ctx := context.Background()

	heavy, err := svc.CreateCategory(ctx, "Announcements", "announcements", "", 1)
	if err != nil {
		t.Fatal(err)
	}
	light, err := svc.CreateCategory(ctx, "Off Topic", "off-topic", "", 2)
	if err != nil {
		t.Fatal(err)
	}

	th := &entity.Thread{CategoryID: heavy.ID, AuthorID: author, Title: "news", State: entity.StatePublished}
	if err := db.Create(th).Error; err != nil {
		t.Fatal(err)
	}
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		p := &entity.Post{
			ThreadID:    th.ID,
			AuthorID:    author,
			Content:     "post",
			State:       entity.StatePublished,
			PublishedOn: base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.Create(p).Error; err != nil {
			t.Fatal(err)
		}
	}

	categories, err := svc.GetCategories(ctx)
	if err != nil {
		t.Fatalf("GetCategories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}

	// Weight ascending.
	if categories[0].ID != heavy.ID || categories[1].ID != light.ID {
		t.Fatalf("unexpected order: %q then %q", categories[0].Title, categories[1].Title)
	}

	if categories[0].PostCount != 3 {
		t.Errorf("post_count = %d, want 3", categories[0].PostCount)
	}
	lp := categories[0].LatestPost
	if lp == nil {
		t.Fatal("expected latest post info")
	}
	if lp.ThreadTitle != "news" {
		t.Errorf("thread title = %q, want news", lp.ThreadTitle)
	}
	if lp.AuthorDisplayName != "Ada" {
		t.Errorf("author = %q, want Ada", lp.AuthorDisplayName)
	}
	if !lp.CreatedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("latest post time = %v, want %v", lp.CreatedAt, base.Add(2*time.Hour))
	}

	if categories[1].PostCount != 0 {
		t.Errorf("empty category post_count = %d, want 0", categories[1].PostCount)
	}
	if categories[1].LatestPost != nil {
		t.Error("expected no latest post for empty category")
	}
}

func TestCreateCategoryRequiresTitle(t *testing.T) {
	svc, _ := setupService(t, stubProvider{})

	_, err := svc.CreateCategory(context.Background(), "", "slug", "", 0)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteCategoryHidesFromListing(t *testing.T) {
	svc, _ := setupService(t, stubProvider{})
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, "Temp", "temp", "", 0)
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteCategory(ctx, created.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	categories, err := svc.GetCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(categories) != 0 {
		t.Fatalf("expected empty listing after delete, got %d", len(categories))
	}

	// Deleting an unknown id is a no-op.
	if err := svc.DeleteCategory(ctx, uuid.New()); err != nil {
		t.Fatalf("expected no-op delete, got %v", err)
	}
}
