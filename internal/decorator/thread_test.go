package decorator

import (
	"context"
	"testing"

	"forumcore/internal/entity"
	"forumcore/internal/identity"
	"github.com/google/uuid"
)

// fakeProvider serves canned users and counts batch calls, so tests can
// assert the decorator stays at a constant number of round trips.
type fakeProvider struct {
	users       map[uuid.UUID]identity.User
	levels      map[uuid.UUID]string
	batchCalls  int
	singleCalls int
}

func (f *fakeProvider) GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	f.singleCalls++
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeProvider) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]identity.User, error) {
	f.batchCalls++
	out := make(map[uuid.UUID]identity.User)
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (f *fakeProvider) GetUserAccessLevel(ctx context.Context, id uuid.UUID) (string, error) {
	f.singleCalls++
	return f.levels[id], nil
}

func (f *fakeProvider) GetUsersAccessLevel(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	f.batchCalls++
	out := make(map[uuid.UUID]string)
	for _, id := range ids {
		if lvl, ok := f.levels[id]; ok {
			out[id] = lvl
		}
	}
	return out, nil
}

func (f *fakeProvider) GetUsersXPAndRank(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]identity.XPRank, error) {
	f.batchCalls++
	return map[uuid.UUID]identity.XPRank{}, nil
}

func TestThreadDecoratorConstantBatchCalls(t *testing.T) {
	author := uuid.New()
	replier := uuid.New()
	avatar := "https://cdn.example.com/a.png"

	provider := &fakeProvider{
		users: map[uuid.UUID]identity.User{
			author:  {ID: author, DisplayName: "Ada", ProfilePictureURL: &avatar},
			replier: {ID: replier, DisplayName: "Grace"},
		},
		levels: map[uuid.UUID]string{author: "member", replier: "moderator"},
	}
	d := NewThreadDecorator(provider, "https://forum.example.com", "https://cdn.example.com/default.png")

	threads := make([]entity.DecoratedThread, 10)
	for i := range threads {
		threads[i].ID = uuid.New()
		threads[i].AuthorID = author
		threads[i].LastPostUserID = &replier
	}

	if err := d.Decorate(context.Background(), threads); err != nil {
		t.Fatalf("Decorate: %v", err)
	}

	if provider.batchCalls != 2 {
		t.Fatalf("expected exactly 2 batch calls for 10 threads, got %d", provider.batchCalls)
	}
	if provider.singleCalls != 0 {
		t.Fatalf("expected no single-id calls, got %d", provider.singleCalls)
	}

	got := threads[3]
	if got.AuthorDisplayName != "Ada" {
		t.Errorf("author display name = %q, want Ada", got.AuthorDisplayName)
	}
	if got.AuthorAvatarURL != avatar {
		t.Errorf("author avatar = %q, want %q", got.AuthorAvatarURL, avatar)
	}
	if got.AuthorAccessLevel != "member" {
		t.Errorf("author access level = %q, want member", got.AuthorAccessLevel)
	}
	if got.LastPostAuthorDisplayName != "Grace" {
		t.Errorf("last post author = %q, want Grace", got.LastPostAuthorDisplayName)
	}
	if got.LastPostAuthorAvatarURL != "https://cdn.example.com/default.png" {
		t.Errorf("last post avatar = %q, want fallback", got.LastPostAuthorAvatarURL)
	}
	if got.LastPostAuthorAccessLevel != "moderator" {
		t.Errorf("last post author access level = %q, want moderator", got.LastPostAuthorAccessLevel)
	}
	if got.URL != "https://forum.example.com/threads/"+got.ID.String() {
		t.Errorf("unexpected url %q", got.URL)
	}
}

func TestThreadDecoratorUnknownAuthor(t *testing.T) {
	provider := &fakeProvider{users: map[uuid.UUID]identity.User{}, levels: map[uuid.UUID]string{}}
	d := NewThreadDecorator(provider, "https://forum.example.com", "")

	threads := []entity.DecoratedThread{{}}
	threads[0].ID = uuid.New()
	threads[0].AuthorID = uuid.New()

	if err := d.Decorate(context.Background(), threads); err != nil {
		t.Fatalf("Decorate: %v", err)
	}

	// Unknown ids decorate to zero values, never an error.
	if threads[0].AuthorDisplayName != "" || threads[0].AuthorAccessLevel != "" {
		t.Errorf("expected empty decoration for unknown author, got %+v", threads[0])
	}
}

func TestDedupeSkipsNilAndDuplicates(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	in := []uuid.UUID{a, uuid.Nil, b, a, b}

	out := dedupe(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(out))
	}
	if out[0] != a || out[1] != b {
		t.Fatalf("unexpected order: %v", out)
	}
}
