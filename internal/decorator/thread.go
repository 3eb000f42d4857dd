package decorator

import (
	"context"
	"fmt"

	"forumcore/internal/entity"
	"forumcore/internal/identity"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ThreadDecorator attaches identity data to decorated thread rows: author and
// last-post-author display fields plus a direct-linkable URL. Threads expose
// the flat field set (author_display_name etc.); the nested author block
// belongs to posts only.
//
// The provider is hit with exactly two batch calls per collection regardless
// of row count.
type ThreadDecorator struct {
	provider         identity.Provider
	baseURL          string
	defaultAvatarURL string
}

func NewThreadDecorator(provider identity.Provider, baseURL, defaultAvatarURL string) *ThreadDecorator {
	return &ThreadDecorator{
		provider:         provider,
		baseURL:          baseURL,
		defaultAvatarURL: defaultAvatarURL,
	}
}

func (d *ThreadDecorator) Decorate(ctx context.Context, threads []entity.DecoratedThread) error {
	if len(threads) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(threads)*2)
	for _, t := range threads {
		ids = append(ids, t.AuthorID)
		if t.LastPostUserID != nil {
			ids = append(ids, *t.LastPostUserID)
		}
	}
	ids = dedupe(ids)

	var (
		users        map[uuid.UUID]identity.User
		accessLevels map[uuid.UUID]string
	)

	// The two batch calls are independent reads, issued concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = d.provider.GetUsersByIDs(gctx, ids)
		return
	})
	g.Go(func() (err error) {
		accessLevels, err = d.provider.GetUsersAccessLevel(gctx, ids)
		return
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range threads {
		t := &threads[i]
		t.URL = fmt.Sprintf("%s/threads/%s", d.baseURL, t.ID)

		if author, ok := users[t.AuthorID]; ok {
			t.AuthorDisplayName = author.DisplayName
			t.AuthorAvatarURL = author.AvatarURLOr(d.defaultAvatarURL)
		}
		t.AuthorAccessLevel = accessLevels[t.AuthorID]

		if t.LastPostUserID != nil {
			if lastAuthor, ok := users[*t.LastPostUserID]; ok {
				t.LastPostAuthorDisplayName = lastAuthor.DisplayName
				t.LastPostAuthorAvatarURL = lastAuthor.AvatarURLOr(d.defaultAvatarURL)
			}
			t.LastPostAuthorAccessLevel = accessLevels[*t.LastPostUserID]
		}
	}

	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
